// Package brand implements brand attribution for free-text product
// descriptions.
//
// A Dictionary is loaded from an uploaded brand list, which arrives in one
// of two schemas: a legacy single column of bare names, or the canonical
// three-column form (local name, foreign name, comma-separated similar
// spellings). The Classifier resolves each description deterministically:
// a bracketed "[brand]" prefix is matched exactly first, then aliases are
// scanned longest first so a long alias always beats a short alias it
// contains. Descriptions nothing matches fall into the Uncategorized
// sentinel.
package brand
