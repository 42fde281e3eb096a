package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is stripped from CSV input; the ledgers are commonly exported as
// UTF-8 with BOM ("utf-8-sig").
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load parses a single tabular upload into a Table. The format is chosen by
// file extension: .csv is read with encoding/csv, everything else is treated
// as an Excel workbook. The first row is the header; rows shorter than the
// header are padded with nulls.
func Load(r io.Reader, filename string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return loadCSV(r)
	}
	return loadExcel(r)
}

// LoadFile opens and parses a tabular file from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Load(f, path)
}

// LoadFiles loads every path, merging the results row-wise with an outer
// union of columns. An unreadable file is logged and skipped; the batch only
// fails when no file could be loaded at all.
func LoadFiles(logger *slog.Logger, paths ...string) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var tables []*Table
	for _, path := range paths {
		t, err := LoadFile(path)
		if err != nil {
			logger.Error("failed to load sales file, skipping",
				slog.String("file", filepath.Base(path)),
				slog.String("error", err.Error()))
			continue
		}
		logger.Info("loaded sales file",
			slog.String("file", filepath.Base(path)),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.Columns)))
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no loadable files among %d uploads", len(paths))
	}
	return Merge(tables...), nil
}

func loadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read CSV input: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}
	return fromRows(records)
}

func loadExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	// Use the first sheet that yields any rows.
	var rows [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil || len(sheetRows) == 0 {
			continue
		}
		rows = sheetRows
		break
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook contains no data")
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("input contains no rows")
	}
	header := rows[0]
	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		columns[i] = h
	}

	t := NewTable(columns...)
	for _, raw := range rows[1:] {
		row := make(Row, len(columns))
		for i := range columns {
			if i < len(raw) {
				row[i] = String(strings.TrimSpace(raw[i]))
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// dateFormats covers the layouts seen in exported ledgers, ISO first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"20060102",
}

// ParseDate attempts each supported layout in order.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

// ParseAmount parses a monetary cell, tolerating thousands separators,
// currency suffixes and surrounding whitespace.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "원")
	s = strings.TrimPrefix(s, "₩")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
