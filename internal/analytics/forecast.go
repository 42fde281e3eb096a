package analytics

import (
	"bizpulse/internal/dataset"
)

// PredictSales fits an ordinary-least-squares line over the monthly sales
// totals (amount vs. sequential month index) and extrapolates monthsAhead
// predictions from the last observed month's actual total. Predictions are
// floored at zero. Fewer than two monthly points make the fit impossible
// and return ErrInsufficientData.
//
// Trailing means over the last 3, 6 and 12 available months are reported
// alongside; unlike the fit, a shorter history just means the mean covers
// fewer months.
func PredictSales(t *dataset.Table, monthsAhead int) (*Forecast, error) {
	monthly, err := ByPeriod(t, Monthly)
	if err != nil {
		return nil, err
	}
	if len(monthly) < 2 {
		return nil, ErrInsufficientData
	}
	if monthsAhead <= 0 {
		monthsAhead = 6
	}

	totals := make([]float64, len(monthly))
	for i, m := range monthly {
		totals[i] = m.TotalSales
	}

	fc := &Forecast{
		TrendSlope:  olsSlope(totals),
		Avg3Months:  trailingMean(totals, 3),
		Avg6Months:  trailingMean(totals, 6),
		Avg12Months: trailingMean(totals, 12),
	}

	last := monthly[len(monthly)-1]
	for i := 1; i <= monthsAhead; i++ {
		month := last.Period.AddDate(0, i, 0)
		predicted := last.TotalSales + fc.TrendSlope*float64(i)
		if predicted < 0 {
			predicted = 0
		}
		fc.Points = append(fc.Points, ForecastPoint{
			Month:     month,
			Label:     Monthly.Label(month),
			Predicted: predicted,
		})
	}
	return fc, nil
}

// olsSlope computes the least-squares slope of y against the index 0..n-1.
func olsSlope(y []float64) float64 {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// trailingMean averages the last n values, or all of them when fewer exist.
func trailingMean(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	if n > len(values) {
		n = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
