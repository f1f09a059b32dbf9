package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestSummerRange2025(t *testing.T) {
	start, end := SummerRange(2025)

	// 1 July 2025 is a Tuesday; the Monday before is 30 June.
	assert.Equal(t, day("30/06/2025"), start)
	// 1 September 2025 is itself a Monday.
	assert.Equal(t, day("01/09/2025"), end)
}

func TestLookupSummerBounds(t *testing.T) {
	cal := Default()

	name, ok := cal.Lookup(day("30/06/2025"))
	require.True(t, ok)
	assert.Equal(t, SummerName, name)

	name, ok = cal.Lookup(day("01/07/2025"))
	require.True(t, ok)
	assert.Equal(t, SummerName, name)

	name, ok = cal.Lookup(day("31/08/2025"))
	require.True(t, ok)
	assert.Equal(t, SummerName, name)

	// Day before the computed start is not summer.
	_, ok = cal.Lookup(day("29/06/2025"))
	assert.False(t, ok)

	// The end bound is exclusive.
	_, ok = cal.Lookup(day("01/09/2025"))
	assert.False(t, ok)
}

func TestLookupNamedRangeInclusive(t *testing.T) {
	cal := Default()

	name, ok := cal.Lookup(day("28/10/2024"))
	require.True(t, ok)
	assert.Equal(t, "October Half Term", name)

	name, ok = cal.Lookup(day("01/11/2024"))
	require.True(t, ok)
	assert.Equal(t, "October Half Term", name)

	_, ok = cal.Lookup(day("02/11/2024"))
	assert.False(t, ok)
}

func TestLookupSpansSchoolYears(t *testing.T) {
	cal := Default()

	name, ok := cal.Lookup(day("02/01/2026"))
	require.True(t, ok)
	assert.Equal(t, "Christmas Holidays", name)

	name, ok = cal.Lookup(day("17/02/2025"))
	require.True(t, ok)
	assert.Equal(t, "February Half Term", name)
}

func TestLookupFirstMatchWins(t *testing.T) {
	cal, err := FromYears([]SchoolYear{{
		Label: "override",
		Holidays: []NamedRange{
			{Name: "First", Start: "10/11/2025", End: "14/11/2025"},
			{Name: "Second", Start: "12/11/2025", End: "18/11/2025"},
		},
	}})
	require.NoError(t, err)

	name, ok := cal.Lookup(day("13/11/2025"))
	require.True(t, ok)
	assert.Equal(t, "First", name)
}

func TestFromYearsRejectsBadTable(t *testing.T) {
	_, err := FromYears([]SchoolYear{{
		Label:    "bad",
		Holidays: []NamedRange{{Name: "X", Start: "2025-11-10", End: "14/11/2025"}},
	}})
	assert.Error(t, err)

	_, err = FromYears([]SchoolYear{{
		Label:    "bad",
		Holidays: []NamedRange{{Name: "X", Start: "14/11/2025", End: "10/11/2025"}},
	}})
	assert.Error(t, err)
}

func TestDefaultTableIsValid(t *testing.T) {
	_, err := FromYears(DefaultTable())
	assert.NoError(t, err)
}
