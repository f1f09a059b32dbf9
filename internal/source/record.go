// =============================================================================
// Funding Autofiller - Source Records
// =============================================================================
//
// This package models the rows of the funding summary CSV as typed records.
// Each record describes one claim period for one child:
//   - CHICK identifier code
//   - Claim-until (period end) date
//   - Period start date
//   - Weekly total hours (a single value, or several candidates joined by "/")
//   - Hourly rate (possibly currency-formatted, e.g. "€2.79")
//   - Optional free-text note
//   - Display name
//
// Records are immutable once parsed. The column headers that back each
// logical field are configurable because upstream exports have drifted over
// time; the defaults match the current extraction pipeline output.
//
// =============================================================================

package source

import "strings"

// FieldNames maps the logical record fields to the CSV column headers that
// carry them. All lookups are exact header matches.
type FieldNames struct {
	// Identifier is the header of the identifier code column.
	// Default: "CHICK"
	Identifier string `yaml:"identifier"`

	// PeriodEnd is the header of the claim/period end date column.
	// Default: "Claim Until"
	PeriodEnd string `yaml:"period_end"`

	// PeriodStart is the header of the period start date column.
	// Default: "Start date"
	PeriodStart string `yaml:"period_start"`

	// WeeklyTotal is the header of the weekly total hours column.
	// Default: "Weekly Total"
	WeeklyTotal string `yaml:"weekly_total"`

	// HourRate is the header of the hourly rate column.
	// Default: "Hour rate"
	HourRate string `yaml:"hour_rate"`

	// Note is the header of the free-text note column.
	// Default: "Note"
	Note string `yaml:"note"`

	// DisplayName is the header of the display name column.
	// Default: "Child name"
	DisplayName string `yaml:"display_name"`
}

// DefaultFieldNames returns the header names produced by the current
// extraction pipeline.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Identifier:  "CHICK",
		PeriodEnd:   "Claim Until",
		PeriodStart: "Start date",
		WeeklyTotal: "Weekly Total",
		HourRate:    "Hour rate",
		Note:        "Note",
		DisplayName: "Child name",
	}
}

// applyDefaults fills any unset header names with the defaults.
func (n *FieldNames) applyDefaults() {
	defaults := DefaultFieldNames()
	if n.Identifier == "" {
		n.Identifier = defaults.Identifier
	}
	if n.PeriodEnd == "" {
		n.PeriodEnd = defaults.PeriodEnd
	}
	if n.PeriodStart == "" {
		n.PeriodStart = defaults.PeriodStart
	}
	if n.WeeklyTotal == "" {
		n.WeeklyTotal = defaults.WeeklyTotal
	}
	if n.HourRate == "" {
		n.HourRate = defaults.HourRate
	}
	if n.Note == "" {
		n.Note = defaults.Note
	}
	if n.DisplayName == "" {
		n.DisplayName = defaults.DisplayName
	}
}

// =============================================================================
// RECORD
// =============================================================================

// Record is a single parsed source row. Field values are kept verbatim;
// trimming happens in the accessors so key comparison is consistent
// everywhere.
type Record struct {
	fields map[string]string
	names  FieldNames
}

// NewRecord wraps one parsed CSV row. The map is not copied; records own
// their rows exclusively after indexing.
func NewRecord(fields map[string]string, names FieldNames) *Record {
	names.applyDefaults()
	return &Record{fields: fields, names: names}
}

// Get returns the raw value of an arbitrary column, untrimmed.
func (r *Record) Get(header string) string {
	return r.fields[header]
}

// Identifier returns the trimmed identifier code.
func (r *Record) Identifier() string {
	return strings.TrimSpace(r.fields[r.names.Identifier])
}

// PeriodEnd returns the trimmed claim/period end date string.
func (r *Record) PeriodEnd() string {
	return strings.TrimSpace(r.fields[r.names.PeriodEnd])
}

// PeriodStart returns the trimmed period start date string.
func (r *Record) PeriodStart() string {
	return strings.TrimSpace(r.fields[r.names.PeriodStart])
}

// WeeklyTotal returns the trimmed weekly total hours value. It may contain
// several candidate values joined by "/".
func (r *Record) WeeklyTotal() string {
	return strings.TrimSpace(r.fields[r.names.WeeklyTotal])
}

// HourRate returns the trimmed hourly rate, possibly currency-formatted.
func (r *Record) HourRate() string {
	return strings.TrimSpace(r.fields[r.names.HourRate])
}

// Note returns the trimmed free-text note.
func (r *Record) Note() string {
	return strings.TrimSpace(r.fields[r.names.Note])
}

// DisplayName returns the trimmed display name.
func (r *Record) DisplayName() string {
	return strings.TrimSpace(r.fields[r.names.DisplayName])
}

// FromRows wraps a parsed row set into records, preserving order.
func FromRows(rows []map[string]string, names FieldNames) []*Record {
	records := make([]*Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(row, names)
	}
	return records
}
