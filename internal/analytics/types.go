package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInsufficientData is returned when an analysis needs more history than
// the dataset holds (e.g. the trend fit requires two monthly points).
var ErrInsufficientData = errors.New("insufficient data for analysis")

// PeriodUnit selects the calendar granularity of period aggregations.
type PeriodUnit string

const (
	Daily     PeriodUnit = "day"
	Weekly    PeriodUnit = "week"
	Monthly   PeriodUnit = "month"
	Quarterly PeriodUnit = "quarter"
	Yearly    PeriodUnit = "year"
)

// ParsePeriodUnit validates a caller-supplied unit string.
func ParsePeriodUnit(s string) (PeriodUnit, error) {
	switch PeriodUnit(s) {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return PeriodUnit(s), nil
	case "":
		return Monthly, nil
	default:
		return "", fmt.Errorf("invalid period unit %q (use day, week, month, quarter or year)", s)
	}
}

// Truncate maps a date to the start of its bucket. Weeks are ISO weeks
// starting on Monday.
func (u PeriodUnit) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch u {
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Weekly:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the preceding Monday
		}
		d := t.AddDate(0, 0, -(weekday - 1))
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Label renders a bucket start for display.
func (u PeriodUnit) Label(start time.Time) string {
	switch u {
	case Daily, Weekly:
		return start.Format("2006-01-02")
	case Monthly:
		return start.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	case Yearly:
		return start.Format("2006")
	default:
		return start.Format("2006-01-02")
	}
}

// PeriodBucket is one row of the by-period report (매출액 / 거래건수 /
// 평균거래액 in the source reports).
type PeriodBucket struct {
	Period     time.Time `json:"period"`
	Label      string    `json:"label"`
	TotalSales float64   `json:"total_sales"`
	Count      int       `json:"count"`
	Mean       float64   `json:"mean"`
}

// EntityBucket is one row of the by-client or by-brand report: 총매출액,
// 거래건수, 평균거래액, 최대/최소, 매출비중(%) and 누적비중(%).
type EntityBucket struct {
	Name                   string  `json:"name"`
	TotalSales             float64 `json:"total_sales"`
	Count                  int     `json:"count"`
	Mean                   float64 `json:"mean"`
	Max                    float64 `json:"max"`
	Min                    float64 `json:"min"`
	SharePercent           float64 `json:"share_percent"`
	CumulativeSharePercent float64 `json:"cumulative_share_percent"`
}

// ProductBucket is one row of the by-product report; products carry no
// extrema or cumulative share.
type ProductBucket struct {
	Name         string  `json:"name"`
	TotalSales   float64 `json:"total_sales"`
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	SharePercent float64 `json:"share_percent"`
}

// BrandTrendPoint is one (period, brand) cell of the brand trend report.
type BrandTrendPoint struct {
	Period     time.Time `json:"period"`
	Label      string    `json:"label"`
	Brand      string    `json:"brand"`
	TotalSales float64   `json:"total_sales"`
}

// GrowthPoint is one row of the period-over-period growth report. Percent
// fields are nil when the comparison base is zero or absent.
type GrowthPoint struct {
	Period           time.Time `json:"period"`
	Label            string    `json:"label"`
	TotalSales       float64   `json:"total_sales"`
	PrevSales        *float64  `json:"prev_sales,omitempty"`
	GrowthPercent    *float64  `json:"growth_percent,omitempty"`
	YoYSales         *float64  `json:"yoy_sales,omitempty"`
	YoYGrowthPercent *float64  `json:"yoy_growth_percent,omitempty"`
}

// EntityKind selects the grouping key of a rolling-window growth report.
type EntityKind string

const (
	EntityClient EntityKind = "client"
	EntityBrand  EntityKind = "brand"
)

// ParseEntityKind validates a caller-supplied entity kind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityClient, EntityBrand:
		return EntityKind(s), nil
	case "":
		return EntityClient, nil
	default:
		return "", fmt.Errorf("invalid entity kind %q (use client or brand)", s)
	}
}

// RollingGrowthEntry compares one entity's sales over two equal trailing
// windows. GrowthPercent is nil when the prior window is zero; NewEntity
// marks entities that only appear in the recent window, so the undefined
// ratio is reported explicitly instead of propagating a non-finite value.
type RollingGrowthEntry struct {
	Name          string   `json:"name"`
	RecentSales   float64  `json:"recent_sales"`
	PriorSales    float64  `json:"prior_sales"`
	Delta         float64  `json:"delta"`
	GrowthPercent *float64 `json:"growth_percent,omitempty"`
	NewEntity     bool     `json:"new_entity,omitempty"`
}

// ForecastPoint is one predicted future month.
type ForecastPoint struct {
	Month     time.Time `json:"month"`
	Label     string    `json:"label"`
	Predicted float64   `json:"predicted"`
}

// Forecast is the linear-trend extrapolation result with trailing means
// over the last 3/6/12 available months.
type Forecast struct {
	TrendSlope  float64         `json:"trend_slope"`
	Avg3Months  float64         `json:"avg_3m"`
	Avg6Months  float64         `json:"avg_6m"`
	Avg12Months float64         `json:"avg_12m"`
	Points      []ForecastPoint `json:"points"`
}

// round2 rounds to two decimals, the precision of every percentage column.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func ptr(f float64) *float64 { return &f }
