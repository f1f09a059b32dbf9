package form

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetName("Sheet1", "Claims"))

	headers := []string{"CHICK", "Claim Until", "Start", "Weekly", "Rate", "Notes"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, file.SetCellStr("Claims", cell, header))
	}

	require.NoError(t, file.SetCellStr("Claims", "A2", "A12"))
	require.NoError(t, file.SetCellStr("Claims", "B2", "31/12/2025"))
	require.NoError(t, file.SetCellStr("Claims", "A3", "B34"))
	require.NoError(t, file.SetCellStr("Claims", "B3", "30/06/2025"))

	t.Cleanup(func() { _ = file.Close() })
	return file
}

func TestSheetFormRows(t *testing.T) {
	sheet, err := NewSheetForm(testWorkbook(t), Layout{}, zerolog.Nop())
	require.NoError(t, err)

	rows, err := sheet.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "A12", rows[0].Field(FieldIdentifier))
	assert.Equal(t, "31/12/2025", rows[0].Field(FieldPeriodEnd))
	assert.Equal(t, "B34", rows[1].Field(FieldIdentifier))
}

func TestSheetFormRowsStopAtLastContent(t *testing.T) {
	file := testWorkbook(t)
	// Content outside the mapped columns does not extend the table.
	require.NoError(t, file.SetCellStr("Claims", "H7", "stray"))

	sheet, err := NewSheetForm(file, Layout{}, zerolog.Nop())
	require.NoError(t, err)

	rows, err := sheet.Rows()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSheetFormNoRows(t *testing.T) {
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetName("Sheet1", "Claims"))
	t.Cleanup(func() { _ = file.Close() })

	sheet, err := NewSheetForm(file, Layout{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = sheet.Rows()
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestSheetFormMissingSheet(t *testing.T) {
	file := excelize.NewFile()
	t.Cleanup(func() { _ = file.Close() })

	_, err := NewSheetForm(file, Layout{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSheetRowWriteAndReadBack(t *testing.T) {
	sheet, err := NewSheetForm(testWorkbook(t), Layout{}, zerolog.Nop())
	require.NoError(t, err)

	rows, err := sheet.Rows()
	require.NoError(t, err)

	require.NoError(t, rows[0].SetField(FieldWeeklyTotal, "20"))
	assert.Equal(t, "20", rows[0].Field(FieldWeeklyTotal))
}

func TestSheetRowBadgesJoinInBadgeCell(t *testing.T) {
	file := testWorkbook(t)
	sheet, err := NewSheetForm(file, Layout{}, zerolog.Nop())
	require.NoError(t, err)

	rows, err := sheet.Rows()
	require.NoError(t, err)

	rows[0].AppendBadge(Badge{Kind: BadgeNote, Label: "switches rooms"})
	rows[0].AppendBadge(Badge{Kind: BadgeHoliday, Label: "Summer Holidays"})

	value, err := file.GetCellValue("Claims", "F2")
	require.NoError(t, err)
	assert.Equal(t, "switches rooms, Summer Holidays", value)
}

func TestSheetRowMarkErrorRecordsReason(t *testing.T) {
	file := testWorkbook(t)
	sheet, err := NewSheetForm(file, Layout{}, zerolog.Nop())
	require.NoError(t, err)

	rows, err := sheet.Rows()
	require.NoError(t, err)
	rows[1].MarkError("write failed")

	value, err := file.GetCellValue("Claims", "F3")
	require.NoError(t, err)
	assert.Equal(t, "! write failed", value)
}

func TestSheetFormChangeObserver(t *testing.T) {
	sheet, err := NewSheetForm(testWorkbook(t), Layout{}, zerolog.Nop())
	require.NoError(t, err)

	var cells []string
	sheet.SetOnChange(func(cell string, name FieldName) {
		cells = append(cells, cell)
	})

	rows, err := sheet.Rows()
	require.NoError(t, err)
	require.NoError(t, rows[0].SetField(FieldWeeklyTotal, "20"))
	rows[0].NotifyChanged(FieldWeeklyTotal)

	assert.Equal(t, []string{"D2"}, cells)
}

func TestLayoutValidate(t *testing.T) {
	layout := DefaultLayout()
	assert.NoError(t, layout.Validate())

	layout.WeeklyTotalColumn = "4"
	assert.Error(t, layout.Validate())

	layout = DefaultLayout()
	layout.Sheet = ""
	assert.Error(t, layout.Validate())
}

func TestLayoutApplyDefaults(t *testing.T) {
	layout := Layout{Sheet: "Custom", IdentifierColumn: "B"}
	layout.ApplyDefaults()

	assert.Equal(t, "Custom", layout.Sheet)
	assert.Equal(t, "B", layout.IdentifierColumn)
	assert.Equal(t, 2, layout.FirstDataRow)
	assert.Equal(t, "F", layout.BadgeColumn)
}
