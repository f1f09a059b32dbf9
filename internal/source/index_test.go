package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(identifier, periodEnd, periodStart string) *Record {
	names := DefaultFieldNames()
	return NewRecord(map[string]string{
		names.Identifier:  identifier,
		names.PeriodEnd:   periodEnd,
		names.PeriodStart: periodStart,
	}, names)
}

func TestKeyModes(t *testing.T) {
	assert.Equal(t, "A12|31/12/2025", Key(KeyIdentifierPeriodEnd, "A12", "31/12/2025"))
	assert.Equal(t, "A12", Key(KeyIdentifierOnly, "A12", "31/12/2025"))
}

func TestRecordKeyTrims(t *testing.T) {
	r := record(" A12 ", " 31/12/2025 ", "")
	assert.Equal(t, "A12|31/12/2025", r.Key(KeyIdentifierPeriodEnd))
}

func TestBuildPreservesInputOrder(t *testing.T) {
	first := record("A12", "31/12/2025", "01/09/2025")
	second := record("A12", "31/12/2025", "01/10/2025")
	index := Build([]*Record{first, second}, KeyIdentifierPeriodEnd)

	candidates := index.Candidates("A12|31/12/2025")
	require.Len(t, candidates, 2)
	assert.Same(t, first, candidates[0])
	assert.Same(t, second, candidates[1])
}

func TestConsumeRemovesOnlyTheChosenRecord(t *testing.T) {
	first := record("A12", "31/12/2025", "01/09/2025")
	second := record("A12", "31/12/2025", "01/10/2025")
	index := Build([]*Record{first, second}, KeyIdentifierPeriodEnd)

	require.True(t, index.Consume("A12|31/12/2025", second))

	candidates := index.Candidates("A12|31/12/2025")
	require.Len(t, candidates, 1)
	assert.Same(t, first, candidates[0])
	assert.Equal(t, 1, index.Remaining())
}

func TestConsumeExhaustsBucket(t *testing.T) {
	only := record("B34", "30/06/2025", "")
	index := Build([]*Record{only}, KeyIdentifierPeriodEnd)

	require.True(t, index.Consume("B34|30/06/2025", only))
	assert.Empty(t, index.Candidates("B34|30/06/2025"))
	assert.Equal(t, 0, index.BucketCount())

	// A second consume of the same record is a no-op.
	assert.False(t, index.Consume("B34|30/06/2025", only))
}

func TestIdentifierOnlyModeMergesPeriods(t *testing.T) {
	first := record("A12", "31/12/2025", "")
	second := record("A12", "30/06/2026", "")
	index := Build([]*Record{first, second}, KeyIdentifierOnly)

	assert.Len(t, index.Candidates("A12"), 2)
	assert.Equal(t, 1, index.BucketCount())
}

func TestFromRowsKeepsOrderAndDefaults(t *testing.T) {
	rows := []map[string]string{
		{"CHICK": "A12", "Claim Until": "31/12/2025"},
		{"CHICK": "B34", "Claim Until": "30/06/2025"},
	}

	records := FromRows(rows, FieldNames{})
	require.Len(t, records, 2)
	assert.Equal(t, "A12", records[0].Identifier())
	assert.Equal(t, "B34", records[1].Identifier())
}

func TestRecordAccessorsTrim(t *testing.T) {
	names := DefaultFieldNames()
	r := NewRecord(map[string]string{
		names.Identifier:  " A12 ",
		names.WeeklyTotal: " 20/25 ",
		names.HourRate:    " €2.79 ",
		names.Note:        " base // holiday pay ",
	}, names)

	assert.Equal(t, "A12", r.Identifier())
	assert.Equal(t, "20/25", r.WeeklyTotal())
	assert.Equal(t, "€2.79", r.HourRate())
	assert.Equal(t, "base // holiday pay", r.Note())
	assert.Equal(t, " A12 ", r.Get(names.Identifier))
}
