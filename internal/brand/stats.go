package brand

import (
	"bizpulse/internal/dataset"
)

// Stats summarizes the outcome of brand annotation over a sales table.
type Stats struct {
	TotalBrands      int            `json:"total_brands"`
	CategorizedCount int            `json:"categorized_brands"` // excludes the sentinel
	RowsPerBrand     map[string]int `json:"rows_per_brand"`
	MostFrequent     string         `json:"most_frequent,omitempty"`
}

// ComputeStats counts rows per annotated brand. A table without a brand
// column yields zero stats rather than an error.
func ComputeStats(t *dataset.Table) Stats {
	stats := Stats{RowsPerBrand: make(map[string]int)}
	if !t.HasColumn(dataset.BrandColumn) {
		return stats
	}

	best := 0
	for i := range t.Rows {
		name := t.Value(i, dataset.BrandColumn).Text()
		if name == "" {
			continue
		}
		stats.RowsPerBrand[name]++
		if stats.RowsPerBrand[name] > best ||
			(stats.RowsPerBrand[name] == best && name < stats.MostFrequent) {
			best = stats.RowsPerBrand[name]
			stats.MostFrequent = name
		}
	}
	stats.TotalBrands = len(stats.RowsPerBrand)
	for name := range stats.RowsPerBrand {
		if name != Uncategorized {
			stats.CategorizedCount++
		}
	}
	return stats
}
