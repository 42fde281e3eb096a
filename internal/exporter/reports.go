package exporter

import (
	"bizpulse/internal/analytics"
)

// ReportTable is a rendered report ready for CSV or workbook export.
type ReportTable struct {
	Name    string
	Headers []string
	Records [][]string
}

// PeriodReport renders period aggregation buckets.
func PeriodReport(buckets []analytics.PeriodBucket) ReportTable {
	records := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, []string{
			b.Label,
			formatFloat(b.TotalSales),
			formatInt(b.Count),
			formatFloat(b.Mean),
		})
	}
	return ReportTable{
		Name:    "period",
		Headers: []string{"period", "total_sales", "count", "mean"},
		Records: records,
	}
}

// EntityReport renders a client or brand ranking.
func EntityReport(name string, buckets []analytics.EntityBucket) ReportTable {
	records := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, []string{
			b.Name,
			formatFloat(b.TotalSales),
			formatInt(b.Count),
			formatFloat(b.Mean),
			formatFloat(b.Max),
			formatFloat(b.Min),
			formatFloat(b.SharePercent),
			formatFloat(b.CumulativeSharePercent),
		})
	}
	return ReportTable{
		Name:    name,
		Headers: []string{"name", "total_sales", "count", "mean", "max", "min", "share_percent", "cumulative_share_percent"},
		Records: records,
	}
}

// ProductReport renders a product ranking.
func ProductReport(name string, buckets []analytics.ProductBucket) ReportTable {
	records := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, []string{
			b.Name,
			formatFloat(b.TotalSales),
			formatInt(b.Count),
			formatFloat(b.Mean),
			formatFloat(b.SharePercent),
		})
	}
	return ReportTable{
		Name:    name,
		Headers: []string{"name", "total_sales", "count", "mean", "share_percent"},
		Records: records,
	}
}

// GrowthReport renders period-over-period growth points.
func GrowthReport(points []analytics.GrowthPoint) ReportTable {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{
			p.Label,
			formatFloat(p.TotalSales),
			formatOptFloat(p.PrevSales),
			formatOptFloat(p.GrowthPercent),
			formatOptFloat(p.YoYGrowthPercent),
		})
	}
	return ReportTable{
		Name:    "growth",
		Headers: []string{"period", "total_sales", "prev_sales", "growth_percent", "yoy_growth_percent"},
		Records: records,
	}
}

// RollingGrowthReport renders rolling window growth entries.
func RollingGrowthReport(entries []analytics.RollingGrowthEntry) ReportTable {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{
			e.Name,
			formatFloat(e.RecentSales),
			formatFloat(e.PriorSales),
			formatFloat(e.Delta),
			formatOptFloat(e.GrowthPercent),
			formatBool(e.NewEntity),
		})
	}
	return ReportTable{
		Name:    "rolling_growth",
		Headers: []string{"name", "recent_sales", "prior_sales", "delta", "growth_percent", "new_entity"},
		Records: records,
	}
}

// ForecastReport renders a sales forecast.
func ForecastReport(fc *analytics.Forecast) ReportTable {
	records := make([][]string, 0, len(fc.Points))
	for _, p := range fc.Points {
		records = append(records, []string{
			p.Label,
			formatFloat(p.Predicted),
		})
	}
	return ReportTable{
		Name:    "forecast",
		Headers: []string{"month", "predicted_sales"},
		Records: records,
	}
}
