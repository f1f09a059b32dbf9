// =============================================================================
// Funding Autofiller - Destination Form Abstraction
// =============================================================================
//
// The matching engine never talks to a workbook directly. Destination rows
// are opaque handles behind a small capability interface so the resolver and
// annotator can be exercised against an in-memory fake. The engine only
// reads and overwrites field values, appends badges, and changes row styling;
// it never creates or destroys rows.
//
// =============================================================================

package form

import "errors"

// ErrNoRows is returned by a Locator when the destination table holds no
// rows. This is one of the two up-front precondition failures; the engine
// reports it once and performs no further work.
var ErrNoRows = errors.New("no destination rows found")

// FieldName identifies one logical field of a destination row.
type FieldName string

const (
	// FieldIdentifier is the CHICK identifier code field.
	FieldIdentifier FieldName = "identifier"

	// FieldPeriodEnd is the claim/period end date field.
	FieldPeriodEnd FieldName = "period_end"

	// FieldPeriodStart is the period start date field.
	FieldPeriodStart FieldName = "period_start"

	// FieldWeeklyTotal is the weekly total hours field.
	FieldWeeklyTotal FieldName = "weekly_total"

	// FieldHourRate is the hourly rate field.
	FieldHourRate FieldName = "hour_rate"
)

// Class is the mutually exclusive visual classification of a filled row.
// Priority: base > stale > fresh.
type Class int

const (
	// ClassNone means the row has not been classified.
	ClassNone Class = iota

	// ClassFresh marks a matched row with a current period end.
	ClassFresh

	// ClassStale marks a row whose period end lies too far in the past.
	ClassStale

	// ClassBase marks a row filled from a base-period record.
	ClassBase
)

// String returns the lowercase class name.
func (c Class) String() string {
	switch c {
	case ClassFresh:
		return "fresh"
	case ClassStale:
		return "stale"
	case ClassBase:
		return "base"
	default:
		return "none"
	}
}

// BadgeKind distinguishes the badge sources.
type BadgeKind int

const (
	// BadgeNote carries the secondary note segment of a record.
	BadgeNote BadgeKind = iota

	// BadgeHoliday carries a holiday period name.
	BadgeHoliday
)

// Badge is a small label appended to a row's trailing cell.
type Badge struct {
	Kind  BadgeKind
	Label string
}

// =============================================================================
// CAPABILITY INTERFACES
// =============================================================================

// Row is the capability interface of one destination row.
type Row interface {
	// Field returns the current value of a field, or "" if the field does
	// not exist on this row.
	Field(name FieldName) string

	// SetField overwrites a field value. A failure is row-local: the engine
	// marks the row and continues with the next one.
	SetField(name FieldName, value string) error

	// AppendBadge adds a badge to the row's trailing cell.
	AppendBadge(badge Badge)

	// SetClass applies the row's visual classification.
	SetClass(class Class)

	// SetSeparator draws a group boundary above the row.
	SetSeparator()

	// MarkError flags the row with an error indicator.
	MarkError(reason string)

	// NotifyChanged tells the host that a field changed, so its own logic
	// (totals, validation) reacts as if a person typed the value.
	NotifyChanged(name FieldName)

	// ScrollIntoView brings the row into the operator's view.
	ScrollIntoView()
}

// Locator returns the ordered destination rows currently present.
type Locator interface {
	Rows() ([]Row, error)
}
