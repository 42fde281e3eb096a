package analytics

import (
	"sort"
	"time"

	"bizpulse/internal/dataset"
)

// yoyLag is the period offset used for year-over-year comparison at
// monthly granularity.
const yoyLag = 12

// GrowthByPeriod reports each period's percent change against the
// immediately preceding observed period. At monthly granularity the
// 12-period lag additionally yields year-over-year change. A zero or
// absent comparison base leaves the percent nil.
func GrowthByPeriod(t *dataset.Table, unit PeriodUnit) ([]GrowthPoint, error) {
	periods, err := ByPeriod(t, unit)
	if err != nil {
		return nil, err
	}

	out := make([]GrowthPoint, len(periods))
	for i, p := range periods {
		gp := GrowthPoint{
			Period:     p.Period,
			Label:      p.Label,
			TotalSales: p.TotalSales,
		}
		if i > 0 {
			prev := periods[i-1].TotalSales
			gp.PrevSales = ptr(prev)
			if prev != 0 {
				gp.GrowthPercent = ptr(round2((p.TotalSales - prev) / prev * 100))
			}
		}
		if unit == Monthly && i >= yoyLag {
			yoy := periods[i-yoyLag].TotalSales
			gp.YoYSales = ptr(yoy)
			if yoy != 0 {
				gp.YoYGrowthPercent = ptr(round2((p.TotalSales - yoy) / yoy * 100))
			}
		}
		out[i] = gp
	}
	return out, nil
}

// RollingGrowth compares each entity's sales over two equal trailing
// windows: recent = [latest - W months, latest], prior = [latest - 2W,
// latest - W). Entities absent from a window contribute zero there; a zero
// prior window makes the growth percentage undefined and is reported via
// the NewEntity flag instead of a non-finite number. Output is sorted
// descending by growth percent with undefined entries last.
func RollingGrowth(t *dataset.Table, kind EntityKind, windowMonths, topN int) ([]RollingGrowthEntry, error) {
	var keyCol string
	var err error
	switch kind {
	case EntityBrand:
		keyCol, err = dataset.ResolveField(t, "brand", brandCandidates)
	default:
		keyCol, err = dataset.ClientColumn(t)
	}
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
	if windowMonths <= 0 {
		windowMonths = 6
	}

	latest := latestDate(t, dateCol)
	if latest.IsZero() {
		return nil, ErrInsufficientData
	}
	recentStart := latest.AddDate(0, -windowMonths, 0)
	priorStart := latest.AddDate(0, -2*windowMonths, 0)

	recent := make(map[string]float64)
	prior := make(map[string]float64)
	for i := range t.Rows {
		d := t.Value(i, dateCol)
		a := t.Value(i, amountCol)
		key := t.Value(i, keyCol).Text()
		if d.Kind != dataset.KindDate || a.Kind != dataset.KindNumber || key == "" {
			continue
		}
		switch {
		case !d.Date.Before(recentStart):
			recent[key] += a.Num
		case !d.Date.Before(priorStart):
			prior[key] += a.Num
		}
	}

	names := make(map[string]struct{}, len(recent)+len(prior))
	for k := range recent {
		names[k] = struct{}{}
	}
	for k := range prior {
		names[k] = struct{}{}
	}

	out := make([]RollingGrowthEntry, 0, len(names))
	for name := range names {
		e := RollingGrowthEntry{
			Name:        name,
			RecentSales: recent[name],
			PriorSales:  prior[name],
		}
		e.Delta = e.RecentSales - e.PriorSales
		if e.PriorSales != 0 {
			e.GrowthPercent = ptr(round2(e.Delta / e.PriorSales * 100))
		} else if e.RecentSales > 0 {
			e.NewEntity = true
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].GrowthPercent, out[j].GrowthPercent
		switch {
		case gi != nil && gj != nil && *gi != *gj:
			return *gi > *gj
		case gi != nil && gj == nil:
			return true
		case gi == nil && gj != nil:
			return false
		}
		if out[i].RecentSales != out[j].RecentSales {
			return out[i].RecentSales > out[j].RecentSales
		}
		return out[i].Name < out[j].Name
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func latestDate(t *dataset.Table, dateCol string) time.Time {
	var latest time.Time
	for i := range t.Rows {
		if v := t.Value(i, dateCol); v.Kind == dataset.KindDate {
			if latest.IsZero() || v.Date.After(latest) {
				latest = v.Date
			}
		}
	}
	return latest
}
