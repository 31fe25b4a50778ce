package query

import (
	"errors"
	"reflect"
	"testing"

	"github.com/krishanki/PhonePixie/internal/catalog"
	"github.com/krishanki/PhonePixie/internal/catalog/catalogtest"
	"github.com/krishanki/PhonePixie/internal/models"
)

func budget(v float64) *float64 { return &v }

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(catalogtest.Store(t), Options{CandidateCap: 3, AdditionalCap: 2, MaxCompare: 3})
}

func modelNames(phones []*models.Phone) []string {
	var out []string
	for _, p := range phones {
		out = append(out, p.Model)
	}
	return out
}

func TestQueryBudgetRanking(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(models.IntentParameters{Budget: budget(30000)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := []string{"Samsung Galaxy A54 5G", "OnePlus Nord 3 5G", "Samsung Galaxy M35 5G"}
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
	wantMore := []string{"Xiaomi Redmi Note 13 5G", "Samsung Galaxy F14 5G"}
	if got := modelNames(res.Additional); !reflect.DeepEqual(got, wantMore) {
		t.Errorf("additional = %v, want %v", got, wantMore)
	}
}

func TestQueryEveryResultWithinBudget(t *testing.T) {
	e := NewEngine(catalogtest.Store(t), Options{CandidateCap: 20})
	for _, b := range []float64{9999, 12500, 20000, 35000, 60000} {
		res, err := e.Query(models.IntentParameters{Budget: budget(b)})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if res.Candidates.Len() == 0 {
			t.Errorf("budget %v: no candidates", b)
		}
		for _, p := range res.Candidates.Phones() {
			if p.Price > b {
				t.Errorf("budget %v: %s costs %v", b, p.Model, p.Price)
			}
		}
	}
}

func TestQueryBrandFilter(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(models.IntentParameters{Budget: budget(25000), Brands: []string{"SAMSUNG"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := []string{"Samsung Galaxy M35 5G", "Samsung Galaxy F14 5G", "Samsung Galaxy A05"}
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
	if len(res.Additional) != 0 {
		t.Errorf("additional = %v, want none", modelNames(res.Additional))
	}
}

func TestQueryHardFeatures(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(models.IntentParameters{Budget: budget(25000), Features: []string{"5G", "120Hz display"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := []string{"Samsung Galaxy M35 5G", "Xiaomi Redmi Note 13 5G", "Realme Narzo 60x 5G"}
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
	for _, p := range res.Candidates.Phones() {
		if !p.Has5G || p.RefreshRate < 120 {
			t.Errorf("%s fails a hard filter", p.Model)
		}
	}

	res, _ = e.Query(models.IntentParameters{Features: []string{"ir blaster"}})
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, []string{"Xiaomi Redmi Note 13 5G"}) {
		t.Errorf("ir blaster = %v", got)
	}

	res, _ = e.Query(models.IntentParameters{Features: []string{"ios"}})
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, []string{"Apple iPhone 13"}) {
		t.Errorf("ios = %v", got)
	}
}

func TestQueryNoResults(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(models.IntentParameters{Budget: budget(5000), Features: []string{"200mp"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Candidates.Len() != 0 || res.Candidates.Phones() != nil || res.Additional != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestQueryDeterministic(t *testing.T) {
	e := newEngine(t)
	params := models.IntentParameters{Features: []string{"camera", "battery"}}
	first, _ := e.Query(params)
	for i := 0; i < 20; i++ {
		again, _ := e.Query(params)
		if !reflect.DeepEqual(modelNames(first.Candidates.Phones()), modelNames(again.Candidates.Phones())) {
			t.Fatal("ranking changed between identical queries")
		}
	}
}

func TestFeatureMatchBreaksPriceTie(t *testing.T) {
	s, err := catalog.NewStore([]models.Phone{
		{BrandName: "acme", Model: "Acme Alpha 1", Price: 20000, Rating: 80, PrimaryCameraRear: 12},
		{BrandName: "acme", Model: "Acme Beta 1", Price: 20000, Rating: 80, PrimaryCameraRear: 108},
		{BrandName: "acme", Model: "Acme Gamma 1", Price: 19000, Rating: 80, PrimaryCameraRear: 12},
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	e := NewEngine(s, Options{CandidateCap: 3})

	res, _ := e.Query(models.IntentParameters{})
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, []string{"Acme Gamma 1", "Acme Alpha 1", "Acme Beta 1"}) {
		t.Errorf("no features = %v", got)
	}
	res, _ = e.Query(models.IntentParameters{Features: []string{"camera"}})
	if got := modelNames(res.Candidates.Phones()); !reflect.DeepEqual(got, []string{"Acme Gamma 1", "Acme Beta 1", "Acme Alpha 1"}) {
		t.Errorf("camera = %v", got)
	}
	if res.Candidates.Candidates[1].FeatureMatches != 1 {
		t.Errorf("feature matches = %d, want 1", res.Candidates.Candidates[1].FeatureMatches)
	}
}

func TestResolve(t *testing.T) {
	e := newEngine(t)
	set, unresolved, err := e.Resolve([]string{"Pixel 8a", "OnePlus 12R", "Samsung S21"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"Google Pixel 8a", "OnePlus 12R", "Samsung Galaxy S21 FE 5G"}
	if got := modelNames(set.Phones()); !reflect.DeepEqual(got, want) {
		t.Errorf("resolved = %v, want %v", got, want)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v", unresolved)
	}

	set, unresolved, _ = e.Resolve([]string{"iPhone 13", "iPhone 999", "Samsung Z999", "Pixel 8", "Samsung"})
	if got := modelNames(set.Phones()); !reflect.DeepEqual(got, []string{"Apple iPhone 13"}) {
		t.Errorf("resolved = %v", got)
	}
	if want := []string{"iPhone 999", "Samsung Z999", "Pixel 8", "Samsung"}; !reflect.DeepEqual(unresolved, want) {
		t.Errorf("unresolved = %v, want %v", unresolved, want)
	}

	set, _, _ = e.Resolve([]string{"m35", "samsung galaxy a05", "M35 phone"})
	if got := modelNames(set.Phones()); !reflect.DeepEqual(got, []string{"Samsung Galaxy M35 5G", "Samsung Galaxy A05"}) {
		t.Errorf("resolved = %v", got)
	}
}

func TestResolveCapsAtMaxCompare(t *testing.T) {
	e := newEngine(t)
	set, _, _ := e.Resolve([]string{"Pixel 8a", "Pixel 7a", "OnePlus 12R", "iPhone 13"})
	if set.Len() != 3 {
		t.Errorf("resolved %d, want 3", set.Len())
	}
}

func TestUnavailableCatalog(t *testing.T) {
	var s *catalog.Store
	e := NewEngine(s, Options{})
	if _, err := e.Query(models.IntentParameters{}); !errors.Is(err, catalog.ErrUnavailable) {
		t.Errorf("Query err = %v", err)
	}
	if _, _, err := e.Resolve([]string{"x"}); !errors.Is(err, catalog.ErrUnavailable) {
		t.Errorf("Resolve err = %v", err)
	}
}
