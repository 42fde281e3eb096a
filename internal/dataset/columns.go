package dataset

import (
	"fmt"
	"strings"
)

// Semantic field names used in error reporting.
const (
	FieldDate    = "date"
	FieldAmount  = "amount"
	FieldClient  = "client"
	FieldProduct = "product"
)

// BrandColumn is the column written by brand annotation. The Korean label
// matches the headers of the uploaded sales files.
const BrandColumn = "브랜드"

// sellerColumn is the alternate client-name header normalized away during
// preparation (판매처명 = 거래처명 in the source ledgers).
const sellerColumn = "판매처명"

// Candidate column names per semantic field, in priority order. These lists
// are the single source of truth for column resolution across preparation,
// classification and every aggregation. Korean headers come first because
// that is what the ledgers carry; English fallbacks cover exported files.
var (
	DateCandidates   = []string{"날짜", "일자", "전표일자", "판매일자", "거래일자", "Date"}
	AmountCandidates = []string{"공급가액", "금액", "합계금액", "매출금액", "판매금액", "Amount"}
	ClientCandidates = []string{"거래처명", "판매처명", "거래처", "고객명", "Client"}
	// ClientInfoCandidates resolves the name column of the client metadata
	// file, which uses company-style headers.
	ClientInfoCandidates = []string{"거래처명", "회사명", "업체명", "고객명", "Client"}
	ProductCandidates    = []string{"품명 및 규격", "품목명", "제품명", "상품명", "품명", "품목", "제품", "상품", "아이템", "물품", "Product", "Item"}
)

// MissingColumnError reports that none of a field's candidate columns exist
// in a table. It carries the columns actually present so the failure can be
// surfaced to the user with enough context to fix the file.
type MissingColumnError struct {
	Field      string
	Candidates []string
	Present    []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no %s column found: tried [%s], table has [%s]",
		e.Field, strings.Join(e.Candidates, ", "), strings.Join(e.Present, ", "))
}

// Resolve returns the first candidate column present in the table.
func Resolve(t *Table, candidates []string) (string, bool) {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// ResolveField resolves a semantic field or returns a MissingColumnError.
func ResolveField(t *Table, field string, candidates []string) (string, error) {
	if col, ok := Resolve(t, candidates); ok {
		return col, nil
	}
	return "", &MissingColumnError{
		Field:      field,
		Candidates: append([]string(nil), candidates...),
		Present:    append([]string(nil), t.Columns...),
	}
}

// DateColumn resolves the transaction date column.
func DateColumn(t *Table) (string, error) { return ResolveField(t, FieldDate, DateCandidates) }

// AmountColumn resolves the monetary amount column.
func AmountColumn(t *Table) (string, error) { return ResolveField(t, FieldAmount, AmountCandidates) }

// ClientColumn resolves the client name column.
func ClientColumn(t *Table) (string, error) { return ResolveField(t, FieldClient, ClientCandidates) }

// ProductColumn resolves the product description column.
func ProductColumn(t *Table) (string, error) {
	return ResolveField(t, FieldProduct, ProductCandidates)
}
