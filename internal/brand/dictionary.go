package brand

import (
	"log/slog"
	"strings"

	"bizpulse/internal/dataset"
)

// dictionarySchema tags the two upload formats the brand list arrives in.
// The schema is decided once at load time so the per-row handling does not
// re-branch on column counts.
type dictionarySchema int

const (
	// schemaLegacy: a single column of bare brand names.
	schemaLegacy dictionarySchema = iota
	// schemaAliased: canonical local name, canonical foreign name, and an
	// optional comma-separated list of similar spellings.
	schemaAliased
)

// Dictionary maps canonical brand names to their alias sets. Canonical
// order follows the upload; every canonical name is a member of its own
// alias list.
type Dictionary struct {
	canonical []string
	aliases   map[string][]string
}

// orderedSet is an insertion-order-preserving string set, used to build
// alias lists without depending on map iteration order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

// LoadDictionary builds a brand dictionary from an uploaded brand list
// table. A table with zero usable rows yields an empty dictionary rather
// than an error, so a bad upload degrades to "everything uncategorized".
func LoadDictionary(t *dataset.Table, logger *slog.Logger) *Dictionary {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dictionary{aliases: make(map[string][]string)}
	if t == nil || len(t.Columns) == 0 {
		logger.Warn("brand list has no columns, dictionary is empty")
		return d
	}

	schema := schemaLegacy
	if len(t.Columns) >= 2 {
		schema = schemaAliased
	}

	for i := range t.Rows {
		canonical := strings.TrimSpace(t.Value(i, t.Columns[0]).Text())
		if canonical == "" {
			continue
		}
		set := newOrderedSet()
		set.add(canonical)
		if schema == schemaAliased {
			set.add(t.Value(i, t.Columns[1]).Text())
			if len(t.Columns) >= 3 {
				for _, token := range strings.Split(t.Value(i, t.Columns[2]).Text(), ",") {
					set.add(token)
				}
			}
		}
		if _, exists := d.aliases[canonical]; !exists {
			d.canonical = append(d.canonical, canonical)
		}
		d.aliases[canonical] = set.items
	}

	logger.Info("loaded brand dictionary",
		slog.Int("brands", len(d.canonical)),
		slog.Bool("aliased_schema", schema == schemaAliased))
	return d
}

// Brands returns the canonical brand names in upload order.
func (d *Dictionary) Brands() []string {
	return append([]string(nil), d.canonical...)
}

// Aliases returns the alias list for a canonical brand.
func (d *Dictionary) Aliases(canonical string) []string {
	return append([]string(nil), d.aliases[canonical]...)
}

// Len returns the number of canonical brands.
func (d *Dictionary) Len() int { return len(d.canonical) }
