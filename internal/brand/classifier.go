package brand

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"bizpulse/internal/dataset"
)

// Uncategorized is the sentinel brand for descriptions no alias matches.
// The Korean label ("Other") is what the reports display.
const Uncategorized = "기타"

// aliasEntry is one (alias, canonical brand) pair of the match index.
type aliasEntry struct {
	alias      string
	aliasUpper string
	canonical  string
	pattern    *regexp.Regexp // word-boundary fallback, nil when uncompilable
}

// Classifier resolves free-text product descriptions to canonical brands.
// The alias index is computed once per dictionary; classification itself is
// a pure function and safe for concurrent use.
type Classifier struct {
	entries []aliasEntry
	// byAlias supports the bracketed-prefix fast path: exact alias
	// (case-insensitive) to canonical brand.
	byAlias map[string]string
}

// NewClassifier builds the match index. Aliases are ordered longest first
// so that a long alias wins over a short alias it contains ("ProPresenter"
// must beat "Pro"); equal lengths fall back to alias then brand order so
// repeated runs agree.
func NewClassifier(d *Dictionary) *Classifier {
	c := &Classifier{byAlias: make(map[string]string)}
	if d == nil {
		return c
	}
	for _, canonical := range d.canonical {
		for _, alias := range d.aliases[canonical] {
			upper := strings.ToUpper(alias)
			if _, exists := c.byAlias[upper]; !exists {
				c.byAlias[upper] = canonical
			}
			c.entries = append(c.entries, aliasEntry{
				alias:      alias,
				aliasUpper: upper,
				canonical:  canonical,
				pattern:    compileBoundary(alias),
			})
		}
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		if len(c.entries[i].alias) != len(c.entries[j].alias) {
			return len(c.entries[i].alias) > len(c.entries[j].alias)
		}
		if c.entries[i].alias != c.entries[j].alias {
			return c.entries[i].alias < c.entries[j].alias
		}
		return c.entries[i].canonical < c.entries[j].canonical
	})
	return c
}

// compileBoundary builds the case-insensitive word-boundary pattern for an
// alias. A pathological alias that fails to compile is matched by the
// substring check only.
func compileBoundary(alias string) *regexp.Regexp {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
	if err != nil {
		return nil
	}
	return re
}

// Classify maps one product description to a canonical brand.
//
// The description convention is "[brand][name][spec]", so a bracketed prefix
// is tried first as an exact alias match. Failing that, aliases are scanned
// longest first and the first case-insensitive substring or word-boundary
// match wins. No match returns Uncategorized.
func (c *Classifier) Classify(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return Uncategorized
	}

	if token, ok := bracketPrefix(description); ok {
		if canonical, found := c.byAlias[strings.ToUpper(token)]; found {
			return canonical
		}
	}

	upper := strings.ToUpper(description)
	for _, e := range c.entries {
		if strings.Contains(upper, e.aliasUpper) {
			return e.canonical
		}
		if e.pattern != nil && e.pattern.MatchString(description) {
			return e.canonical
		}
	}
	return Uncategorized
}

// bracketPrefix extracts the token of a leading "[...]", if any.
func bracketPrefix(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") {
		return "", false
	}
	end := strings.Index(s, "]")
	if end <= 1 {
		return "", false
	}
	return strings.TrimSpace(s[1:end]), true
}

// Annotate writes the brand column onto a sales table by classifying the
// resolved product column of every row. When no product column exists every
// row is marked Uncategorized, mirroring how a missing description behaves.
func Annotate(t *dataset.Table, c *Classifier, logger *slog.Logger) *dataset.Table {
	if logger == nil {
		logger = slog.Default()
	}
	out := t.Clone()
	brandIdx := out.EnsureColumn(dataset.BrandColumn)

	productCol, ok := dataset.Resolve(out, dataset.ProductCandidates)
	if !ok {
		logger.Warn("no product column found, marking all rows uncategorized",
			slog.Any("columns", out.Columns))
		for i := range out.Rows {
			out.Rows[i][brandIdx] = dataset.String(Uncategorized)
		}
		return out
	}

	for i := range out.Rows {
		desc := out.Value(i, productCol).Text()
		out.Rows[i][brandIdx] = dataset.String(c.Classify(desc))
	}
	logger.Info("annotated brand column",
		slog.String("product_column", productCol),
		slog.Int("rows", out.Len()))
	return out
}
