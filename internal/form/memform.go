// =============================================================================
// Funding Autofiller - In-Memory Form
// =============================================================================
//
// MemForm is a destination form backed by plain maps. It records every write,
// badge, notification and style change so the resolver, annotator and engine
// can be tested without a workbook.
//
// =============================================================================

package form

import "fmt"

// MemRow is an in-memory destination row.
type MemRow struct {
	// Values holds the current field values.
	Values map[FieldName]string

	// Badges holds appended badges in order.
	Badges []Badge

	// Class is the last applied classification.
	Class Class

	// Separator records whether a group boundary was drawn.
	Separator bool

	// ErrorReasons records MarkError calls.
	ErrorReasons []string

	// Notified records NotifyChanged calls in order.
	Notified []FieldName

	// Scrolled counts ScrollIntoView calls.
	Scrolled int

	// FailWrites makes SetField fail for the named fields, for testing the
	// row-local write failure path.
	FailWrites map[FieldName]bool
}

// NewMemRow creates a row with the given initial field values.
func NewMemRow(values map[FieldName]string) *MemRow {
	copied := make(map[FieldName]string, len(values))
	for name, value := range values {
		copied[name] = value
	}
	return &MemRow{Values: copied}
}

// Field returns the current value of a field.
func (r *MemRow) Field(name FieldName) string {
	return r.Values[name]
}

// SetField overwrites a field value, or fails if the field is listed in
// FailWrites.
func (r *MemRow) SetField(name FieldName, value string) error {
	if r.FailWrites[name] {
		return fmt.Errorf("field %s not found on row", name)
	}
	r.Values[name] = value
	return nil
}

// AppendBadge records a badge.
func (r *MemRow) AppendBadge(badge Badge) {
	r.Badges = append(r.Badges, badge)
}

// SetClass records the classification.
func (r *MemRow) SetClass(class Class) {
	r.Class = class
}

// SetSeparator records the group boundary.
func (r *MemRow) SetSeparator() {
	r.Separator = true
}

// MarkError records an error indicator.
func (r *MemRow) MarkError(reason string) {
	r.ErrorReasons = append(r.ErrorReasons, reason)
}

// NotifyChanged records the change notification.
func (r *MemRow) NotifyChanged(name FieldName) {
	r.Notified = append(r.Notified, name)
}

// ScrollIntoView records the scroll.
func (r *MemRow) ScrollIntoView() {
	r.Scrolled++
}

// MemForm is an ordered set of in-memory rows.
type MemForm struct {
	MemRows []*MemRow
}

// NewMemForm creates a form over the given rows.
func NewMemForm(rows ...*MemRow) *MemForm {
	return &MemForm{MemRows: rows}
}

// Rows returns the rows in order, or ErrNoRows when empty.
func (f *MemForm) Rows() ([]Row, error) {
	if len(f.MemRows) == 0 {
		return nil, ErrNoRows
	}
	rows := make([]Row, len(f.MemRows))
	for i, row := range f.MemRows {
		rows[i] = row
	}
	return rows, nil
}
