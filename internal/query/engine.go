// Package query filters and ranks catalog entries.
package query

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/krishanki/PhonePixie/internal/catalog"
	"github.com/krishanki/PhonePixie/internal/models"
)

// Source is a read-only view of the catalog
type Source interface {
	Snapshot() ([]*models.Phone, error)
}

// Options bound the size of result sets
type Options struct {
	CandidateCap  int
	AdditionalCap int
	MaxCompare    int
}

// Result is a ranked candidate set plus the next-ranked entries beyond
// the cap
type Result struct {
	Candidates models.CandidateSet
	Additional []*models.Phone
}

// Engine is stateless apart from its immutable source and is safe for
// concurrent use.
type Engine struct {
	source Source
	opts   Options
}

// fillerTokens never take part in model-name matching
var fillerTokens = map[string]bool{
	"phone": true, "phones": true, "mobile": true, "smartphone": true,
	"the": true, "new": true, "model": true, "a": true,
}

// NewEngine creates an engine over source
func NewEngine(source Source, opts Options) *Engine {
	if opts.CandidateCap <= 0 {
		opts.CandidateCap = 3
	}
	if opts.AdditionalCap < 0 {
		opts.AdditionalCap = 0
	}
	if opts.MaxCompare < 2 {
		opts.MaxCompare = 3
	}
	return &Engine{source: source, opts: opts}
}

// Query applies the hard filters, ranks what is left and truncates to the
// candidate cap. An empty result is not an error.
func (e *Engine) Query(params models.IntentParameters) (Result, error) {
	phones, err := e.source.Snapshot()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read catalog: %w", err)
	}

	hard, soft := parseFeatures(params.Features)
	brands := lowerAll(params.Brands)

	var matched []models.Candidate
	for _, p := range phones {
		if !passes(p, params.Budget, brands, hard) {
			continue
		}
		matched = append(matched, models.Candidate{
			Phone:          p,
			Score:          p.Rating,
			FeatureMatches: countMatches(p, soft),
		})
	}

	rank(matched)
	matched = dedupe(matched)

	res := Result{}
	if len(matched) == 0 {
		return res, nil
	}
	n := min(len(matched), e.opts.CandidateCap)
	res.Candidates = models.CandidateSet{Candidates: matched[:n:n]}
	for _, c := range matched[n:min(len(matched), n+e.opts.AdditionalCap)] {
		res.Additional = append(res.Additional, c.Phone)
	}
	return res, nil
}

// passes reports whether p satisfies every hard filter
func passes(p *models.Phone, budget *float64, brands []string, hard []requirement) bool {
	if budget != nil && p.Price > *budget {
		return false
	}
	if len(brands) > 0 {
		brand := strings.ToLower(p.BrandName)
		ok := false
		for _, b := range brands {
			if strings.Contains(brand, b) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, r := range hard {
		if !r.match(p) {
			return false
		}
	}
	return true
}

func countMatches(p *models.Phone, soft []requirement) int {
	n := 0
	for _, r := range soft {
		if r.match(p) {
			n++
		}
	}
	return n
}

// rank orders by rating (desc), then price (asc), then feature matches
// (desc). Model name breaks any remaining tie so the order is total.
func rank(c []models.Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		a, b := c[i], c[j]
		if a.Phone.Rating != b.Phone.Rating {
			return a.Phone.Rating > b.Phone.Rating
		}
		if a.Phone.Price != b.Phone.Price {
			return a.Phone.Price < b.Phone.Price
		}
		if a.FeatureMatches != b.FeatureMatches {
			return a.FeatureMatches > b.FeatureMatches
		}
		return a.Phone.Model < b.Phone.Model
	})
}

func dedupe(c []models.Candidate) []models.Candidate {
	seen := make(map[string]bool, len(c))
	out := c[:0]
	for _, cand := range c {
		key := catalog.Normalize(cand.Phone.Model)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cand)
	}
	return out
}

// Resolve maps requested model names to catalog entries in request order,
// up to the compare limit. A name resolves by exact normalized match, or
// else to the entry whose name contains every requested token, one of which
// must carry a digit ("s21", "8a", "13"). Unresolved names are returned
// separately and never fail the call.
func (e *Engine) Resolve(names []string) (models.CandidateSet, []string, error) {
	phones, err := e.source.Snapshot()
	if err != nil {
		return models.CandidateSet{}, nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	index := make([]indexed, len(phones))
	for i, p := range phones {
		norm := catalog.Normalize(p.Model)
		index[i] = indexed{phone: p, norm: norm, tokens: tokenSet(norm)}
	}

	var set models.CandidateSet
	var unresolved []string
	seen := make(map[string]bool)
	for _, name := range names {
		if set.Len() >= e.opts.MaxCompare {
			break
		}
		p := resolveOne(index, name)
		if p == nil {
			unresolved = append(unresolved, name)
			continue
		}
		if seen[p.Model] {
			continue
		}
		seen[p.Model] = true
		set.Candidates = append(set.Candidates, models.Candidate{Phone: p, Score: p.Rating})
	}
	return set, unresolved, nil
}

type indexed struct {
	phone  *models.Phone
	norm   string
	tokens map[string]bool
}

func resolveOne(index []indexed, name string) *models.Phone {
	norm := catalog.Normalize(name)
	if norm == "" {
		return nil
	}
	for _, ix := range index {
		if ix.norm == norm {
			return ix.phone
		}
	}

	var want []string
	hasDigit := false
	for _, tok := range strings.Fields(norm) {
		if fillerTokens[tok] {
			continue
		}
		want = append(want, tok)
		if strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
			hasDigit = true
		}
	}
	if !hasDigit {
		return nil
	}

	var best *indexed
	bestExtra := 0
	for i := range index {
		ix := &index[i]
		if !containsAll(ix.tokens, want) {
			continue
		}
		extra := len(ix.tokens) - len(want)
		if best == nil || extra < bestExtra ||
			(extra == bestExtra && betterTie(ix.phone, best.phone)) {
			best, bestExtra = ix, extra
		}
	}
	if best == nil {
		return nil
	}
	return best.phone
}

func betterTie(a, b *models.Phone) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.Model < b.Model
}

func tokenSet(norm string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(norm) {
		set[tok] = true
	}
	return set
}

func containsAll(set map[string]bool, tokens []string) bool {
	for _, t := range tokens {
		if !set[t] {
			return false
		}
	}
	return true
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
