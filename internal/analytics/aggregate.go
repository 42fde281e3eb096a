package analytics

import (
	"sort"
	"time"

	"bizpulse/internal/dataset"
)

// brandCandidates resolves the annotated brand column. Kept as a list so
// brand aggregation reports a MissingColumnError like every other view.
var brandCandidates = []string{dataset.BrandColumn}

// ByPeriod groups the table by calendar period and reports sum, count and
// mean of amount per period. Rows whose date or amount is unresolved are
// excluded; periods with no records are omitted entirely (no zero-fill).
func ByPeriod(t *dataset.Table, unit PeriodUnit) ([]PeriodBucket, error) {
	dateCol, err := dataset.DateColumn(t)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Time]*PeriodBucket)
	for i := range t.Rows {
		d := t.Value(i, dateCol)
		a := t.Value(i, amountCol)
		if d.Kind != dataset.KindDate || a.Kind != dataset.KindNumber {
			continue
		}
		start := unit.Truncate(d.Date)
		b, ok := sums[start]
		if !ok {
			b = &PeriodBucket{Period: start, Label: unit.Label(start)}
			sums[start] = b
		}
		b.TotalSales += a.Num
		b.Count++
	}

	out := make([]PeriodBucket, 0, len(sums))
	for _, b := range sums {
		b.Mean = b.TotalSales / float64(b.Count)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

// entityAccumulator collects the running aggregate for one grouping key.
type entityAccumulator struct {
	sum   float64
	count int
	max   float64
	min   float64
}

// aggregateByKey groups amount by the values of keyCol. Rows with a blank
// key or an unresolved amount are excluded.
func aggregateByKey(t *dataset.Table, keyCol, amountCol string) map[string]*entityAccumulator {
	acc := make(map[string]*entityAccumulator)
	for i := range t.Rows {
		key := t.Value(i, keyCol).Text()
		a := t.Value(i, amountCol)
		if key == "" || a.Kind != dataset.KindNumber {
			continue
		}
		e, ok := acc[key]
		if !ok {
			e = &entityAccumulator{max: a.Num, min: a.Num}
			acc[key] = e
		}
		e.sum += a.Num
		e.count++
		if a.Num > e.max {
			e.max = a.Num
		}
		if a.Num < e.min {
			e.min = a.Num
		}
	}
	return acc
}

// buildEntityBuckets turns accumulators into the sorted, share-annotated
// report. Shares divide by the grand total of the full set, so a top-N
// truncation does not make the displayed shares sum to 100.
func buildEntityBuckets(acc map[string]*entityAccumulator, topN int) []EntityBucket {
	grandTotal := 0.0
	for _, e := range acc {
		grandTotal += e.sum
	}

	out := make([]EntityBucket, 0, len(acc))
	for name, e := range acc {
		b := EntityBucket{
			Name:       name,
			TotalSales: e.sum,
			Count:      e.count,
			Mean:       e.sum / float64(e.count),
			Max:        e.max,
			Min:        e.min,
		}
		if grandTotal != 0 {
			b.SharePercent = round2(e.sum / grandTotal * 100)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].Name < out[j].Name
	})

	cumulative := 0.0
	for i := range out {
		cumulative += out[i].SharePercent
		out[i].CumulativeSharePercent = round2(cumulative)
	}

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// ByClient aggregates amount per client with share-of-total and cumulative
// share, truncated to the top N clients by total sales.
func ByClient(t *dataset.Table, topN int) ([]EntityBucket, error) {
	clientCol, err := dataset.ClientColumn(t)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}
	return buildEntityBuckets(aggregateByKey(t, clientCol, amountCol), topN), nil
}

// ByBrand aggregates amount per annotated brand, same shape as ByClient.
func ByBrand(t *dataset.Table, topN int) ([]EntityBucket, error) {
	brandCol, err := dataset.ResolveField(t, "brand", brandCandidates)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}
	return buildEntityBuckets(aggregateByKey(t, brandCol, amountCol), topN), nil
}

// ByProduct aggregates amount per product description with share-of-total,
// truncated to the top N products. Products carry no extrema or cumulative
// share.
func ByProduct(t *dataset.Table, topN int) ([]ProductBucket, error) {
	productCol, err := dataset.ProductColumn(t)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}

	entities := buildEntityBuckets(aggregateByKey(t, productCol, amountCol), topN)
	out := make([]ProductBucket, len(entities))
	for i, e := range entities {
		out[i] = ProductBucket{
			Name:         e.Name,
			TotalSales:   e.TotalSales,
			Count:        e.Count,
			Mean:         e.Mean,
			SharePercent: e.SharePercent,
		}
	}
	return out, nil
}

// BrandTrend reports per-period sales for each of the given brands. An
// empty brand list includes every annotated brand.
func BrandTrend(t *dataset.Table, unit PeriodUnit, brands []string) ([]BrandTrendPoint, error) {
	brandCol, err := dataset.ResolveField(t, "brand", brandCandidates)
	if err != nil {
		return nil, err
	}
	dateCol, err := dataset.DateColumn(t)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}

	var wanted map[string]struct{}
	if len(brands) > 0 {
		wanted = make(map[string]struct{}, len(brands))
		for _, b := range brands {
			wanted[b] = struct{}{}
		}
	}

	type cellKey struct {
		period time.Time
		brand  string
	}
	sums := make(map[cellKey]float64)
	for i := range t.Rows {
		d := t.Value(i, dateCol)
		a := t.Value(i, amountCol)
		b := t.Value(i, brandCol).Text()
		if d.Kind != dataset.KindDate || a.Kind != dataset.KindNumber || b == "" {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[b]; !ok {
				continue
			}
		}
		sums[cellKey{unit.Truncate(d.Date), b}] += a.Num
	}

	out := make([]BrandTrendPoint, 0, len(sums))
	for k, sum := range sums {
		out = append(out, BrandTrendPoint{
			Period:     k.period,
			Label:      unit.Label(k.period),
			Brand:      k.brand,
			TotalSales: sum,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Period.Equal(out[j].Period) {
			return out[i].Period.Before(out[j].Period)
		}
		return out[i].Brand < out[j].Brand
	})
	return out, nil
}

// BrandProductDetail breaks one brand down by product, with each product's
// share of the brand's own total rather than the grand total.
func BrandProductDetail(t *dataset.Table, brandName string, topN int) ([]ProductBucket, error) {
	brandCol, err := dataset.ResolveField(t, "brand", brandCandidates)
	if err != nil {
		return nil, err
	}
	productCol, err := dataset.ProductColumn(t)
	if err != nil {
		return nil, err
	}
	amountCol, err := dataset.AmountColumn(t)
	if err != nil {
		return nil, err
	}

	subset := dataset.NewTable(t.Columns...)
	for i := range t.Rows {
		if t.Value(i, brandCol).Text() == brandName {
			subset.Rows = append(subset.Rows, t.Rows[i])
		}
	}

	entities := buildEntityBuckets(aggregateByKey(subset, productCol, amountCol), topN)
	out := make([]ProductBucket, len(entities))
	for i, e := range entities {
		out[i] = ProductBucket{
			Name:         e.Name,
			TotalSales:   e.TotalSales,
			Count:        e.Count,
			Mean:         e.Mean,
			SharePercent: e.SharePercent,
		}
	}
	return out, nil
}
