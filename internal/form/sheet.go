// =============================================================================
// Funding Autofiller - Workbook Form
// =============================================================================
//
// SheetForm adapts one worksheet of a claim form workbook to the Row/Locator
// interfaces. The destination table is located structurally: a configured
// sheet name, one column letter per field, a trailing badge column, and the
// first data row. Rows are read top to bottom until the last row that has
// content in any mapped column.
//
// Visual semantics:
//   - Classification (base/stale/fresh) and error marks become cell styles
//     across the mapped columns.
//   - The group separator becomes a top border; it survives a later
//     classification because every class style has a bordered variant.
//   - Badges are joined into the trailing badge cell.
//   - ScrollIntoView moves the sheet view to the row.
//   - NotifyChanged marks the workbook dirty; on save, cached formula values
//     are dropped so the host workbook recalculates totals on open.
//
// =============================================================================

package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Layout describes where the destination table lives in the workbook.
type Layout struct {
	// Sheet is the worksheet name.
	// Default: "Claims"
	Sheet string `yaml:"sheet"`

	// FirstDataRow is the 1-indexed row where claim rows start.
	// Default: 2 (one header row)
	FirstDataRow int `yaml:"first_data_row"`

	// Column letters for each field.
	IdentifierColumn  string `yaml:"identifier_column"`
	PeriodEndColumn   string `yaml:"period_end_column"`
	PeriodStartColumn string `yaml:"period_start_column"`
	WeeklyTotalColumn string `yaml:"weekly_total_column"`
	HourRateColumn    string `yaml:"hour_rate_column"`

	// BadgeColumn is the trailing cell badges are appended to.
	BadgeColumn string `yaml:"badge_column"`
}

// DefaultLayout returns the layout of the standard claim form template.
func DefaultLayout() Layout {
	return Layout{
		Sheet:             "Claims",
		FirstDataRow:      2,
		IdentifierColumn:  "A",
		PeriodEndColumn:   "B",
		PeriodStartColumn: "C",
		WeeklyTotalColumn: "D",
		HourRateColumn:    "E",
		BadgeColumn:       "F",
	}
}

// ApplyDefaults fills unset layout values with the standard template layout.
func (l *Layout) ApplyDefaults() {
	defaults := DefaultLayout()
	if l.Sheet == "" {
		l.Sheet = defaults.Sheet
	}
	if l.FirstDataRow == 0 {
		l.FirstDataRow = defaults.FirstDataRow
	}
	if l.IdentifierColumn == "" {
		l.IdentifierColumn = defaults.IdentifierColumn
	}
	if l.PeriodEndColumn == "" {
		l.PeriodEndColumn = defaults.PeriodEndColumn
	}
	if l.PeriodStartColumn == "" {
		l.PeriodStartColumn = defaults.PeriodStartColumn
	}
	if l.WeeklyTotalColumn == "" {
		l.WeeklyTotalColumn = defaults.WeeklyTotalColumn
	}
	if l.HourRateColumn == "" {
		l.HourRateColumn = defaults.HourRateColumn
	}
	if l.BadgeColumn == "" {
		l.BadgeColumn = defaults.BadgeColumn
	}
}

// Validate checks the layout is usable.
func (l Layout) Validate() error {
	if l.Sheet == "" {
		return fmt.Errorf("form layout: sheet name is required")
	}
	if l.FirstDataRow < 1 {
		return fmt.Errorf("form layout: first_data_row must be at least 1")
	}
	for name, column := range l.columns() {
		if column == "" {
			return fmt.Errorf("form layout: missing column letter for %s", name)
		}
		if _, err := excelize.ColumnNameToNumber(column); err != nil {
			return fmt.Errorf("form layout: invalid column %q for %s: %w", column, name, err)
		}
	}
	return nil
}

// column returns the column letter for a field.
func (l Layout) column(name FieldName) string {
	switch name {
	case FieldIdentifier:
		return l.IdentifierColumn
	case FieldPeriodEnd:
		return l.PeriodEndColumn
	case FieldPeriodStart:
		return l.PeriodStartColumn
	case FieldWeeklyTotal:
		return l.WeeklyTotalColumn
	case FieldHourRate:
		return l.HourRateColumn
	default:
		return ""
	}
}

// columns lists every mapped column, badge cell included.
func (l Layout) columns() map[FieldName]string {
	return map[FieldName]string{
		FieldIdentifier:  l.IdentifierColumn,
		FieldPeriodEnd:   l.PeriodEndColumn,
		FieldPeriodStart: l.PeriodStartColumn,
		FieldWeeklyTotal: l.WeeklyTotalColumn,
		FieldHourRate:    l.HourRateColumn,
		"badge":          l.BadgeColumn,
	}
}

// =============================================================================
// SHEET FORM
// =============================================================================

// SheetForm is an excelize-backed destination form.
type SheetForm struct {
	file    *excelize.File
	layout  Layout
	styles  styleSet
	log     zerolog.Logger
	changed bool

	// onChange, when set, observes every change notification. The fill
	// command uses it to count host-visible writes.
	onChange func(cell string, name FieldName)
}

// styleSet holds the precomputed style IDs. Every class has a variant with a
// top border so a group separator survives a later classification.
type styleSet struct {
	class         map[Class]int
	classBordered map[Class]int
	errStyle      int
	errBordered   int
	border        int
}

// Open loads a claim form workbook and prepares the styles.
func Open(path string, layout Layout, logger zerolog.Logger) (*SheetForm, error) {
	layout.ApplyDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open form workbook: %w", err)
	}
	return NewSheetForm(file, layout, logger)
}

// NewSheetForm wraps an already-open workbook. The caller keeps ownership of
// closing the file.
func NewSheetForm(file *excelize.File, layout Layout, logger zerolog.Logger) (*SheetForm, error) {
	layout.ApplyDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if idx, err := file.GetSheetIndex(layout.Sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in form workbook", layout.Sheet)
	}

	styles, err := buildStyles(file)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare form styles: %w", err)
	}

	return &SheetForm{
		file:   file,
		layout: layout,
		styles: styles,
		log:    logger.With().Str("component", "form").Logger(),
	}, nil
}

// SetOnChange registers an observer for change notifications.
func (f *SheetForm) SetOnChange(fn func(cell string, name FieldName)) {
	f.onChange = fn
}

// Rows locates the destination rows currently present on the sheet.
func (f *SheetForm) Rows() ([]Row, error) {
	all, err := f.file.GetRows(f.layout.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", f.layout.Sheet, err)
	}

	// Last row with content in any mapped column.
	last := 0
	for number := f.layout.FirstDataRow; number <= len(all); number++ {
		if f.rowHasContent(all[number-1]) {
			last = number
		}
	}
	if last < f.layout.FirstDataRow {
		return nil, ErrNoRows
	}

	rows := make([]Row, 0, last-f.layout.FirstDataRow+1)
	for number := f.layout.FirstDataRow; number <= last; number++ {
		rows = append(rows, &sheetRow{form: f, number: number})
	}
	return rows, nil
}

// rowHasContent reports whether any mapped column of a raw sheet row holds a
// non-blank value.
func (f *SheetForm) rowHasContent(raw []string) bool {
	for _, column := range f.layout.columns() {
		index, err := excelize.ColumnNameToNumber(column)
		if err != nil {
			continue
		}
		if index <= len(raw) && strings.TrimSpace(raw[index-1]) != "" {
			return true
		}
	}
	return false
}

// Save writes the workbook back to its origin, dropping cached formula
// values when any field changed so the host recalculates on open.
func (f *SheetForm) Save() error {
	if f.changed {
		if err := f.file.UpdateLinkedValue(); err != nil {
			f.log.Warn().Err(err).Msg("failed to clear cached formula values")
		}
	}
	if err := f.file.Save(); err != nil {
		return fmt.Errorf("failed to save form workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to a new path.
func (f *SheetForm) SaveAs(path string) error {
	if f.changed {
		if err := f.file.UpdateLinkedValue(); err != nil {
			f.log.Warn().Err(err).Msg("failed to clear cached formula values")
		}
	}
	if err := f.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save form workbook: %w", err)
	}
	return nil
}

// Close releases the underlying workbook.
func (f *SheetForm) Close() error {
	return f.file.Close()
}

// =============================================================================
// SHEET ROW
// =============================================================================

// sheetRow is one destination row on the sheet.
type sheetRow struct {
	form      *SheetForm
	number    int
	badges    []string
	separator bool
	errored   bool
}

// cell returns the cell reference of a field on this row.
func (r *sheetRow) cell(column string) string {
	return column + strconv.Itoa(r.number)
}

// Field reads a field value; unknown fields read as empty.
func (r *sheetRow) Field(name FieldName) string {
	column := r.form.layout.column(name)
	if column == "" {
		return ""
	}
	value, err := r.form.file.GetCellValue(r.form.layout.Sheet, r.cell(column))
	if err != nil {
		r.form.log.Debug().Err(err).Int("row", r.number).Str("field", string(name)).
			Msg("field read failed")
		return ""
	}
	return value
}

// SetField overwrites a field value.
func (r *sheetRow) SetField(name FieldName, value string) error {
	column := r.form.layout.column(name)
	if column == "" {
		return fmt.Errorf("field %s not mapped on row %d", name, r.number)
	}
	if err := r.form.file.SetCellStr(r.form.layout.Sheet, r.cell(column), value); err != nil {
		return fmt.Errorf("failed to write %s on row %d: %w", name, r.number, err)
	}
	return nil
}

// AppendBadge joins the badge into the trailing cell.
func (r *sheetRow) AppendBadge(badge Badge) {
	r.badges = append(r.badges, badge.Label)
	r.writeBadgeCell()
}

// SetClass styles the mapped cells for the classification, preserving the
// separator border.
func (r *sheetRow) SetClass(class Class) {
	styles := r.form.styles
	styleID, ok := styles.class[class]
	if r.separator {
		styleID, ok = styles.classBordered[class]
	}
	if !ok {
		return
	}
	r.applyStyle(styleID)
}

// SetSeparator draws a top border across the row.
func (r *sheetRow) SetSeparator() {
	r.separator = true
	r.applyStyle(r.form.styles.border)
}

// MarkError flags the row and records the reason in the badge cell.
func (r *sheetRow) MarkError(reason string) {
	r.errored = true
	styleID := r.form.styles.errStyle
	if r.separator {
		styleID = r.form.styles.errBordered
	}
	r.applyStyle(styleID)
	r.badges = append(r.badges, "! "+reason)
	r.writeBadgeCell()
}

// NotifyChanged marks the workbook dirty and feeds the observer.
func (r *sheetRow) NotifyChanged(name FieldName) {
	r.form.changed = true
	if r.form.onChange != nil {
		column := r.form.layout.column(name)
		r.form.onChange(r.cell(column), name)
	}
}

// ScrollIntoView moves the sheet view so the row is visible.
func (r *sheetRow) ScrollIntoView() {
	topLeft := r.cell(r.form.layout.IdentifierColumn)
	err := r.form.file.SetSheetView(r.form.layout.Sheet, 0, &excelize.ViewOptions{
		TopLeftCell: &topLeft,
	})
	if err != nil {
		r.form.log.Debug().Err(err).Int("row", r.number).Msg("scroll failed")
	}
}

// applyStyle styles every mapped cell of the row.
func (r *sheetRow) applyStyle(styleID int) {
	for _, column := range r.form.layout.columns() {
		cell := r.cell(column)
		if err := r.form.file.SetCellStyle(r.form.layout.Sheet, cell, cell, styleID); err != nil {
			r.form.log.Debug().Err(err).Str("cell", cell).Msg("style failed")
		}
	}
}

// writeBadgeCell rewrites the trailing cell with the joined badges.
func (r *sheetRow) writeBadgeCell() {
	cell := r.cell(r.form.layout.BadgeColumn)
	err := r.form.file.SetCellStr(r.form.layout.Sheet, cell, strings.Join(r.badges, ", "))
	if err != nil {
		r.form.log.Debug().Err(err).Str("cell", cell).Msg("badge write failed")
	}
}

// =============================================================================
// STYLES
// =============================================================================

// buildStyles registers the style palette once per workbook.
func buildStyles(file *excelize.File) (styleSet, error) {
	topBorder := []excelize.Border{{Type: "top", Color: "404040", Style: 2}}

	definitions := map[Class]excelize.Style{
		ClassFresh: {
			Font: &excelize.Font{Color: "006100"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		},
		ClassStale: {
			Font: &excelize.Font{Color: "9C6500"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1},
		},
		ClassBase: {
			Font: &excelize.Font{Bold: true, Color: "1F4E79"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		},
	}

	styles := styleSet{
		class:         make(map[Class]int, len(definitions)),
		classBordered: make(map[Class]int, len(definitions)),
	}

	for class, definition := range definitions {
		plain := definition
		id, err := file.NewStyle(&plain)
		if err != nil {
			return styleSet{}, err
		}
		styles.class[class] = id

		bordered := definition
		bordered.Border = topBorder
		id, err = file.NewStyle(&bordered)
		if err != nil {
			return styleSet{}, err
		}
		styles.classBordered[class] = id
	}

	errDefinition := excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	}
	id, err := file.NewStyle(&errDefinition)
	if err != nil {
		return styleSet{}, err
	}
	styles.errStyle = id

	errBordered := errDefinition
	errBordered.Border = topBorder
	id, err = file.NewStyle(&errBordered)
	if err != nil {
		return styleSet{}, err
	}
	styles.errBordered = id

	id, err = file.NewStyle(&excelize.Style{Border: topBorder})
	if err != nil {
		return styleSet{}, err
	}
	styles.border = id

	return styles, nil
}
