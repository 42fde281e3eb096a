package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Summary holds the scalar overview of a prepared sales table that the
// presentation layer shows above every report.
type Summary struct {
	TotalRows     int        `json:"total_rows"`
	Columns       []string   `json:"columns"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
	UniqueClients *int       `json:"unique_clients,omitempty"`
}

// Summarize computes the overview. Fields whose column cannot be resolved
// are simply left unset; a summary never fails.
func Summarize(t *Table) Summary {
	s := Summary{
		TotalRows: t.Len(),
		Columns:   append([]string(nil), t.Columns...),
	}

	if col, ok := Resolve(t, DateCandidates); ok {
		var lo, hi time.Time
		for i := range t.Rows {
			v := t.Value(i, col)
			if v.Kind != KindDate {
				continue
			}
			if lo.IsZero() || v.Date.Before(lo) {
				lo = v.Date
			}
			if hi.IsZero() || v.Date.After(hi) {
				hi = v.Date
			}
		}
		if !lo.IsZero() {
			s.DateFrom, s.DateTo = &lo, &hi
		}
	}

	if col, ok := Resolve(t, AmountCandidates); ok {
		total := 0.0
		seen := false
		for i := range t.Rows {
			if v := t.Value(i, col); v.Kind == KindNumber {
				total += v.Num
				seen = true
			}
		}
		if seen {
			s.TotalAmount = &total
		}
	}

	if col, ok := Resolve(t, ClientCandidates); ok {
		clients := make(map[string]struct{})
		for i := range t.Rows {
			if name := t.Value(i, col).Text(); name != "" {
				clients[name] = struct{}{}
			}
		}
		n := len(clients)
		s.UniqueClients = &n
	}

	return s
}

// RenderText emits the bounded textual dataset summary consumed by the Q&A
// delegate: row count, column names, date range and the first sampleRows
// records. The output size is bounded by the column count and sampleRows,
// never by the dataset size.
func RenderText(t *Table, sampleRows int) string {
	s := Summarize(t)

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset summary:\n")
	fmt.Fprintf(&b, "- total rows: %d\n", s.TotalRows)
	fmt.Fprintf(&b, "- columns: %s\n", strings.Join(s.Columns, ", "))
	if s.DateFrom != nil {
		fmt.Fprintf(&b, "- date range: %s ~ %s\n",
			s.DateFrom.Format("2006-01-02"), s.DateTo.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "- date range: N/A\n")
	}

	fmt.Fprintf(&b, "\nSample rows (first %d):\n", sampleRows)
	b.WriteString(strings.Join(t.Columns, "\t"))
	b.WriteByte('\n')
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		cells := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cells[j] = t.Value(i, c).Text()
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
