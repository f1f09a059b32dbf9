// =============================================================================
// Funding Autofiller - Source Record Validation
// =============================================================================
//
// Diagnostics over the parsed source records, run before indexing. No record
// is ever rejected - duplicate keys, odd values and partial rows all still
// index, matching the matching engine's contract - but problems are
// collected row-locally so the operator can fix the export.
//
// CHECKS:
//   - identifier and period-end present (the composite key fields)
//   - period-end and period-start parse as DD/MM/YYYY when present
//   - every weekly-total candidate is numeric
//   - hour rate survives currency stripping when present
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/funding-autofiller/internal/annotator"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

// Error describes one problem on one source row. Rows are 1-indexed in data
// order (the header does not count).
type Error struct {
	// Row is the 1-indexed data row number.
	Row int

	// Field is the logical field the problem is on.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// ValidateRecords checks every record and returns the collected problems.
func ValidateRecords(records []*source.Record) []*Error {
	var errors []*Error

	for i, record := range records {
		row := i + 1

		if record.Identifier() == "" {
			errors = append(errors, &Error{Row: row, Field: "identifier",
				Message: "missing identifier code"})
		}
		if record.PeriodEnd() == "" {
			errors = append(errors, &Error{Row: row, Field: "period end",
				Message: "missing period end date"})
		} else if _, err := annotator.ParseDate(record.PeriodEnd()); err != nil {
			errors = append(errors, &Error{Row: row, Field: "period end",
				Message: fmt.Sprintf("unparseable date %q", record.PeriodEnd())})
		}

		if start := record.PeriodStart(); start != "" {
			if _, err := annotator.ParseDate(start); err != nil {
				errors = append(errors, &Error{Row: row, Field: "period start",
					Message: fmt.Sprintf("unparseable date %q", start)})
			}
		}

		for _, candidate := range annotator.Candidates(record.WeeklyTotal()) {
			if _, err := strconv.ParseFloat(candidate, 64); err != nil {
				errors = append(errors, &Error{Row: row, Field: "weekly total",
					Message: fmt.Sprintf("non-numeric candidate %q", candidate)})
			}
		}

		if rate := record.HourRate(); rate != "" && annotator.NormalizeRate(rate) == "" {
			errors = append(errors, &Error{Row: row, Field: "hour rate",
				Message: fmt.Sprintf("no digits in rate %q", rate)})
		}
	}

	return errors
}

// FormatErrors renders the problems as one block for logs and reports.
func FormatErrors(errors []*Error) string {
	if len(errors) == 0 {
		return "no validation errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s):\n", len(errors))
	for _, err := range errors {
		fmt.Fprintf(&b, "  - %s\n", err.Error())
	}
	return b.String()
}
