// Package catalog holds the immutable tables of datasets, models, explainers and
// metrics served by the tools. A Store is built once at startup and never mutated.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"

	xerrors "github.com/golovatskygroup/mcp-xai/internal/errors"
)

//go:embed catalog.yaml
var embedded []byte

// Category is the closed set of entity kinds
type Category string

const (
	Dataset   Category = "dataset"
	Model     Category = "model"
	Explainer Category = "explainer"
	Metric    Category = "metric"

	// All is the sentinel accepted by ListByCategory for the union of every category
	All Category = "all"
)

// Categories returns the closed enumeration in listing order
func Categories() []Category {
	return []Category{Dataset, Model, Explainer, Metric}
}

// Valid reports whether c is one of the closed categories (All excluded)
func (c Category) Valid() bool {
	switch c {
	case Dataset, Model, Explainer, Metric:
		return true
	}
	return false
}

// Entry is one dataset, model type, explainer or metric.
// Entries are shared read-only; callers must not mutate Tags, Related or Attributes.
type Entry struct {
	ID          string         `json:"id"`
	Category    Category       `json:"category"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Related     []string       `json:"related,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// HasTag reports whether the entry carries tag
func (e Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// InfoSection is one block of static framework documentation
type InfoSection struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Leaderboard is the static leaderboard description
type Leaderboard struct {
	URL  string `yaml:"url" json:"url"`
	Text string `yaml:"text" json:"text"`
}

type fileEntry struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Related     []string       `yaml:"related"`
	Attributes  map[string]any `yaml:"attributes"`
}

type fileCategory struct {
	Groups  []string    `yaml:"groups"`
	Entries []fileEntry `yaml:"entries"`
}

type file struct {
	Categories  map[Category]fileCategory `yaml:"categories"`
	Leaderboard Leaderboard               `yaml:"leaderboard"`
	Info        []InfoSection             `yaml:"info"`
}

// Store is the immutable catalog
type Store struct {
	entries     map[Category][]Entry
	index       map[Category]map[string]int
	groups      map[Category][]string
	leaderboard Leaderboard
	info        []InfoSection
}

// Default loads the catalog embedded in the binary
func Default() (*Store, error) {
	return Load(embedded)
}

// LoadFile loads a catalog from a YAML file on disk
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(data)
}

// Load decodes and validates a YAML catalog
func Load(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	s := &Store{
		entries:     make(map[Category][]Entry),
		index:       make(map[Category]map[string]int),
		groups:      make(map[Category][]string),
		leaderboard: f.Leaderboard,
		info:        f.Info,
	}

	for name := range f.Categories {
		if !name.Valid() {
			return nil, fmt.Errorf("catalog: unknown category %q", name)
		}
	}

	for _, cat := range Categories() {
		fc := f.Categories[cat]
		s.groups[cat] = slices.Clone(fc.Groups)
		s.index[cat] = make(map[string]int, len(fc.Entries))

		for _, fe := range fc.Entries {
			if fe.ID == "" {
				return nil, fmt.Errorf("catalog: %s entry without id", cat)
			}
			if _, dup := s.index[cat][fe.ID]; dup {
				return nil, fmt.Errorf("catalog: duplicate %s id %q", cat, fe.ID)
			}
			for _, tag := range fe.Tags {
				if !slices.Contains(fc.Groups, tag) {
					return nil, fmt.Errorf("catalog: %s %q has undeclared tag %q", cat, fe.ID, tag)
				}
			}
			for k, v := range fe.Attributes {
				if !isScalar(v) {
					return nil, fmt.Errorf("catalog: %s %q attribute %q is not a scalar", cat, fe.ID, k)
				}
			}

			s.index[cat][fe.ID] = len(s.entries[cat])
			s.entries[cat] = append(s.entries[cat], Entry{
				ID:          fe.ID,
				Category:    cat,
				Name:        fe.Name,
				Description: strings.TrimSpace(fe.Description),
				Tags:        fe.Tags,
				Related:     fe.Related,
				Attributes:  fe.Attributes,
			})
		}
	}

	// Related ids of a model point at datasets with pretrained weights.
	for _, m := range s.entries[Model] {
		for _, ds := range m.Related {
			if _, ok := s.index[Dataset][ds]; !ok {
				return nil, fmt.Errorf("catalog: model %q references unknown dataset %q", m.ID, ds)
			}
		}
	}

	seen := make(map[string]struct{}, len(s.info))
	for _, sec := range s.info {
		if _, dup := seen[sec.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate info section %q", sec.Key)
		}
		seen[sec.Key] = struct{}{}
	}

	return s, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return true
	}
	return false
}

// ListByCategory returns every entry of category in declaration order, or the
// union of all categories for All.
func (s *Store) ListByCategory(category Category) ([]Entry, error) {
	if category == All {
		out := make([]Entry, 0, s.Count(All))
		for _, cat := range Categories() {
			out = append(out, s.entries[cat]...)
		}
		return out, nil
	}
	if !category.Valid() {
		return nil, unknownCategory(category)
	}
	return append(make([]Entry, 0, len(s.entries[category])), s.entries[category]...), nil
}

// Get returns a single entry
func (s *Store) Get(category Category, id string) (Entry, error) {
	if !category.Valid() {
		return Entry{}, unknownCategory(category)
	}
	i, ok := s.index[category][id]
	if !ok {
		msg := fmt.Sprintf("%s %q not found", category, id)
		if hint := Suggest(id, s.IDs(category)); len(hint) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(hint, ", "))
		}
		return Entry{}, xerrors.New(xerrors.NotFound, msg)
	}
	return s.entries[category][i], nil
}

// Filter returns the entries of category tagged with group. An empty group or
// "all" returns the whole category. Groups outside the declared set fail with
// UnknownCategory rather than silently matching nothing.
func (s *Store) Filter(category Category, group string) ([]Entry, error) {
	if group == "" || group == string(All) {
		return s.ListByCategory(category)
	}
	if !category.Valid() {
		return nil, unknownCategory(category)
	}
	if !slices.Contains(s.groups[category], group) {
		return nil, xerrors.Newf(xerrors.UnknownCategory, "unknown %s filter %q (expected one of: %s)",
			category, group, strings.Join(s.groups[category], ", "))
	}
	out := make([]Entry, 0)
	for _, e := range s.entries[category] {
		if e.HasTag(group) {
			out = append(out, e)
		}
	}
	return out, nil
}

// IDs returns the identifiers of category in declaration order
func (s *Store) IDs(category Category) []string {
	entries := s.entries[category]
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// Groups returns the declared filter groups of category
func (s *Store) Groups(category Category) []string {
	return slices.Clone(s.groups[category])
}

// Count returns the number of entries in category (all categories for All)
func (s *Store) Count(category Category) int {
	if category == All {
		n := 0
		for _, cat := range Categories() {
			n += len(s.entries[cat])
		}
		return n
	}
	return len(s.entries[category])
}

// Leaderboard returns the static leaderboard description
func (s *Store) Leaderboard() Leaderboard {
	return s.leaderboard
}

// Info returns the framework documentation sections in declaration order
func (s *Store) Info() []InfoSection {
	return slices.Clone(s.info)
}

// InfoSection returns one documentation section by key
func (s *Store) InfoSection(key string) (InfoSection, error) {
	for _, sec := range s.info {
		if sec.Key == key {
			return sec, nil
		}
	}
	return InfoSection{}, xerrors.Newf(xerrors.NotFound, "info section %q not found", key)
}

// Suggest returns up to three candidates close to term, best match first
func Suggest(term string, candidates []string) []string {
	if term == "" {
		return nil
	}
	ranks := fuzzy.RankFindFold(term, candidates)
	if len(ranks) == 0 {
		// Transpositions and typos ("germna") are not subsequence matches.
		lt := strings.ToLower(term)
		for _, c := range candidates {
			d := fuzzy.LevenshteinDistance(lt, strings.ToLower(c))
			if d <= max(2, len(c)/3) {
				ranks = append(ranks, fuzzy.Rank{Source: term, Target: c, Distance: d})
			}
		}
	}
	sort.Sort(ranks)
	out := make([]string, 0, 3)
	for _, r := range ranks {
		if len(out) == 3 {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

func unknownCategory(c Category) error {
	names := make([]string, 0, 5)
	for _, cat := range Categories() {
		names = append(names, string(cat))
	}
	names = append(names, string(All))
	return xerrors.Newf(xerrors.UnknownCategory, "unknown category %q (expected one of: %s)", c, strings.Join(names, ", "))
}
