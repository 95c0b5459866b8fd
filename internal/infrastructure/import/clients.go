package csvimport

import (
	"strconv"
	"strings"

	"github.com/fieldops/backend/internal/domain/finance"
)

// Client file columns. name and tax_status are required; the rest are
// optional. Unknown columns are ignored.
const (
	ColumnName        = "name"
	ColumnCompanyName = "company_name"
	ColumnEmail       = "email"
	ColumnTaxStatus   = "tax_status"
	ColumnRefCode     = "ref_code"
)

// Limits on accepted uploads
const (
	MaxFileSize = 5 << 20
	MaxRows     = 5000
)

// ClientRow is one validated row ready for client creation
type ClientRow struct {
	Line        int
	Name        string
	CompanyName string
	Email       string
	TaxStatus   finance.TaxStatus
	RefCode     string
}

// ClientRowsResult is the outcome of validating a whole file. Valid and
// invalid rows are reported together; the caller decides whether a
// partially valid file proceeds.
type ClientRowsResult struct {
	Rows      []ClientRow
	Errors    []RowError
	TotalRows int
}

// IsClean reports whether every row validated
func (r *ClientRowsResult) IsClean() bool {
	return len(r.Errors) == 0
}

// ParseClientRows parses and validates a client CSV payload. File-level
// problems (encoding, size, missing columns) return an error; row-level
// problems are collected into the result.
func ParseClientRows(data []byte) (*ClientRowsResult, error) {
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	parser, err := NewParserFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders([]string{ColumnName, ColumnTaxStatus}); len(missing) > 0 {
		return nil, RowError{Line: 1, Field: strings.Join(missing, ", "), Message: "required column missing"}
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	if len(rows) > MaxRows {
		return nil, ErrTooManyRows
	}

	result := &ClientRowsResult{TotalRows: len(rows)}
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		clientRow, rowErrs := validateClientRow(row)
		if key := strings.ToLower(clientRow.Name); key != "" {
			if prev, dup := seen[key]; dup {
				rowErrs = append(rowErrs, RowError{
					Line:    row.LineNumber,
					Field:   ColumnName,
					Message: "duplicate of line " + strconv.Itoa(prev),
				})
			} else {
				seen[key] = row.LineNumber
			}
		}
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		result.Rows = append(result.Rows, clientRow)
	}

	return result, nil
}

func validateClientRow(row *Row) (ClientRow, []RowError) {
	var errs []RowError

	out := ClientRow{
		Line:        row.LineNumber,
		Name:        row.Get(ColumnName),
		CompanyName: row.Get(ColumnCompanyName),
		Email:       row.Get(ColumnEmail),
		RefCode:     strings.ToUpper(row.Get(ColumnRefCode)),
	}

	if out.Name == "" {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnName, Message: "must not be empty"})
	} else if len(out.Name) > 200 {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnName, Message: "must not exceed 200 characters"})
	}

	if len(out.CompanyName) > 200 {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnCompanyName, Message: "must not exceed 200 characters"})
	}

	if out.Email != "" && (len(out.Email) > 200 || !strings.Contains(out.Email, "@")) {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnEmail, Message: "is not a valid email address"})
	}

	status, err := finance.ParseTaxStatus(row.Get(ColumnTaxStatus))
	if err != nil {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnTaxStatus, Message: "must be one of unverified, verified_net, verified_gross"})
	} else {
		out.TaxStatus = status
	}

	if out.RefCode != "" && len(out.RefCode) != 3 {
		errs = append(errs, RowError{Line: row.LineNumber, Field: ColumnRefCode, Message: "must be exactly 3 letters"})
	}

	return out, errs
}
