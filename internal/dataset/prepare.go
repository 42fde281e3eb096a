package dataset

import (
	"log/slog"
)

// Normalize applies the standard preparation pass to a merged sales table:
//
//  1. Rename the alternate seller-name column to the canonical client column
//     when the canonical one is absent.
//  2. Coerce every present date candidate column to dates; unparseable cells
//     become null, never an error.
//  3. Coerce every present amount candidate column to numbers; same rule.
//  4. Drop rows that are null across all columns.
//
// The pass is idempotent: already-typed cells are left untouched, so running
// it over an already-prepared table is a no-op.
func Normalize(t *Table, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	out := t.Clone()

	if idx := out.ColumnIndex(sellerColumn); idx >= 0 && !out.HasColumn(ClientCandidates[0]) {
		out.Columns[idx] = ClientCandidates[0]
		logger.Info("renamed seller column to canonical client column",
			slog.String("from", sellerColumn),
			slog.String("to", ClientCandidates[0]))
	}

	for _, col := range DateCandidates {
		coerceColumn(out, col, coerceDate)
	}
	for _, col := range AmountCandidates {
		coerceColumn(out, col, coerceAmount)
	}

	kept := out.Rows[:0]
	dropped := 0
	for _, row := range out.Rows {
		if allNull(row) {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	out.Rows = kept
	if dropped > 0 {
		logger.Info("dropped empty rows", slog.Int("count", dropped))
	}
	return out
}

func coerceColumn(t *Table, column string, coerce func(Value) Value) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return
	}
	for i := range t.Rows {
		if idx < len(t.Rows[i]) {
			t.Rows[i][idx] = coerce(t.Rows[i][idx])
		}
	}
}

func coerceDate(v Value) Value {
	if v.Kind != KindString {
		return v // already typed or null
	}
	d, err := ParseDate(v.Str)
	if err != nil {
		return Null()
	}
	return DateValue(d)
}

func coerceAmount(v Value) Value {
	if v.Kind != KindString {
		return v
	}
	f, err := ParseAmount(v.Str)
	if err != nil {
		return Null()
	}
	return Number(f)
}

func allNull(row Row) bool {
	for _, v := range row {
		if !v.IsNull() {
			return false
		}
	}
	return true
}

// JoinClientInfo left-joins client metadata onto the sales table by exact
// client-name equality. When no name column can be resolved on either side
// the join is skipped with a warning and the sales table is returned
// unchanged; missing metadata is never fatal.
func JoinClientInfo(sales, clients *Table, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	if clients == nil || clients.Len() == 0 {
		return sales
	}

	salesCol, ok := Resolve(sales, ClientCandidates)
	if !ok {
		logger.Warn("no client column in sales table, skipping metadata join",
			slog.Any("columns", sales.Columns))
		return sales
	}
	infoCol, ok := Resolve(clients, ClientInfoCandidates)
	if !ok {
		logger.Warn("no client column in metadata table, skipping join",
			slog.Any("columns", clients.Columns))
		return sales
	}

	// Index metadata by client name; first row wins on duplicates.
	byName := make(map[string]int, clients.Len())
	for i := range clients.Rows {
		name := clients.Value(i, infoCol).Text()
		if name == "" {
			continue
		}
		if _, exists := byName[name]; !exists {
			byName[name] = i
		}
	}

	out := sales.Clone()
	var extra []string
	for _, c := range clients.Columns {
		if c == infoCol || out.HasColumn(c) {
			continue
		}
		extra = append(extra, c)
		out.EnsureColumn(c)
	}
	for i := range out.Rows {
		name := out.Value(i, salesCol).Text()
		src, ok := byName[name]
		if !ok {
			continue
		}
		for _, c := range extra {
			out.Rows[i][out.ColumnIndex(c)] = clients.Value(src, c)
		}
	}

	logger.Info("joined client metadata",
		slog.Int("clients", len(byName)),
		slog.Int("added_columns", len(extra)))
	return out
}
