// Package catalog holds the immutable, in-memory phone catalog.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/krishanki/PhonePixie/internal/models"
)

// ErrUnavailable is returned when the store was never loaded
var ErrUnavailable = errors.New("catalog unavailable")

// Store is a read-only index over a validated snapshot. It is built once
// before serving and never mutated, so concurrent reads need no locking.
type Store struct {
	phones  []*models.Phone
	byModel map[string]*models.Phone
	brands  []string
}

// Load decodes a snapshot: a JSON array of catalog entries, in catalog order
func Load(r io.Reader) ([]models.Phone, error) {
	var phones []models.Phone
	dec := json.NewDecoder(r)
	if err := dec.Decode(&phones); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return phones, nil
}

// LoadFile reads a snapshot from disk
func LoadFile(path string) ([]models.Phone, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// NewStore indexes phones. Model names must be unique.
func NewStore(phones []models.Phone) (*Store, error) {
	s := &Store{
		phones:  make([]*models.Phone, 0, len(phones)),
		byModel: make(map[string]*models.Phone, len(phones)),
	}
	brandSet := make(map[string]bool)

	for i := range phones {
		p := phones[i]
		key := Normalize(p.Model)
		if key == "" {
			return nil, fmt.Errorf("catalog entry %d has no model name", i)
		}
		if _, dup := s.byModel[key]; dup {
			return nil, fmt.Errorf("duplicate model in catalog: %s", p.Model)
		}
		s.phones = append(s.phones, &p)
		s.byModel[key] = &p
		if b := strings.ToLower(strings.TrimSpace(p.BrandName)); b != "" {
			brandSet[b] = true
		}
	}

	for b := range brandSet {
		s.brands = append(s.brands, b)
	}
	sort.Strings(s.brands)
	return s, nil
}

// Open loads and indexes the snapshot at path
func Open(path string) (*Store, error) {
	phones, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStore(phones)
}

// Snapshot returns the entries in catalog order. The slice is a copy, the
// entries are shared and must not be modified.
func (s *Store) Snapshot() ([]*models.Phone, error) {
	if s == nil || s.phones == nil {
		return nil, ErrUnavailable
	}
	out := make([]*models.Phone, len(s.phones))
	copy(out, s.phones)
	return out, nil
}

// Len returns the number of entries
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.phones)
}

// FindModel looks a model up by normalized name
func (s *Store) FindModel(name string) (*models.Phone, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.byModel[Normalize(name)]
	return p, ok
}

// Brands returns the distinct lowercase brand names, sorted
func (s *Store) Brands() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.brands))
	copy(out, s.brands)
	return out
}

// Normalize lowercases name and collapses everything that is not a letter
// or digit into single spaces.
func Normalize(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
