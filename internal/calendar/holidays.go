// =============================================================================
// Funding Autofiller - Holiday Calendar
// =============================================================================
//
// A static reference table of named school holiday ranges per school year,
// plus a derived summer rule. The calendar answers one question: which named
// period, if any, contains a given date.
//
// Summer is not stored in the table. For any query date, the summer range of
// that date's calendar year is computed as the Monday on-or-before 1 July
// (inclusive) through the Monday on-or-before 1 September (exclusive).
//
// Lookup order: the summer rule first, then every school year's named ranges
// in table order, first containing match wins. Ranges are assumed
// non-overlapping, but the first-match policy keeps the answer well-defined
// if a table override introduces an overlap.
//
// =============================================================================

package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the day-precision date format used throughout the claim
// data: DD/MM/YYYY.
const DateLayout = "02/01/2006"

// SummerName is the period name returned for dates inside the derived
// summer range.
const SummerName = "Summer Holidays"

// =============================================================================
// TABLE STRUCTURES
// =============================================================================

// NamedRange is one named holiday with an inclusive day-precision date range.
type NamedRange struct {
	// Name is the holiday name shown on badges, e.g. "February Half Term".
	Name string `yaml:"name"`

	// Start is the first day of the range, DD/MM/YYYY.
	Start string `yaml:"start"`

	// End is the last day of the range, DD/MM/YYYY (inclusive).
	End string `yaml:"end"`
}

// SchoolYear groups named ranges under a school-year label.
type SchoolYear struct {
	// Label identifies the school year, e.g. "2025/2026".
	Label string `yaml:"label"`

	// Holidays lists the named ranges in lookup order.
	Holidays []NamedRange `yaml:"holidays"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// parsedRange is a NamedRange with its bounds parsed once at load time.
type parsedRange struct {
	name  string
	start time.Time
	end   time.Time
}

// Calendar answers containment queries against the holiday table.
// It is read-only after construction.
type Calendar struct {
	ranges []parsedRange
}

// FromYears builds a calendar from a holiday table, validating every date.
func FromYears(years []SchoolYear) (*Calendar, error) {
	var ranges []parsedRange
	for _, year := range years {
		for _, holiday := range year.Holidays {
			start, err := time.Parse(DateLayout, holiday.Start)
			if err != nil {
				return nil, fmt.Errorf("holiday table %s/%s: bad start date %q: %w",
					year.Label, holiday.Name, holiday.Start, err)
			}
			end, err := time.Parse(DateLayout, holiday.End)
			if err != nil {
				return nil, fmt.Errorf("holiday table %s/%s: bad end date %q: %w",
					year.Label, holiday.Name, holiday.End, err)
			}
			if end.Before(start) {
				return nil, fmt.Errorf("holiday table %s/%s: end %s before start %s",
					year.Label, holiday.Name, holiday.End, holiday.Start)
			}
			ranges = append(ranges, parsedRange{name: holiday.Name, start: start, end: end})
		}
	}
	return &Calendar{ranges: ranges}, nil
}

// Default returns the calendar built from the built-in holiday table.
func Default() *Calendar {
	cal, err := FromYears(DefaultTable())
	if err != nil {
		// The built-in table is validated by tests.
		panic(fmt.Sprintf("built-in holiday table invalid: %v", err))
	}
	return cal
}

// DefaultTable returns the built-in school holiday table.
func DefaultTable() []SchoolYear {
	return []SchoolYear{
		{
			Label: "2024/2025",
			Holidays: []NamedRange{
				{Name: "October Half Term", Start: "28/10/2024", End: "01/11/2024"},
				{Name: "Christmas Holidays", Start: "23/12/2024", End: "03/01/2025"},
				{Name: "February Half Term", Start: "17/02/2025", End: "21/02/2025"},
				{Name: "Easter Holidays", Start: "07/04/2025", End: "21/04/2025"},
				{Name: "May Half Term", Start: "26/05/2025", End: "30/05/2025"},
			},
		},
		{
			Label: "2025/2026",
			Holidays: []NamedRange{
				{Name: "October Half Term", Start: "27/10/2025", End: "31/10/2025"},
				{Name: "Christmas Holidays", Start: "22/12/2025", End: "02/01/2026"},
				{Name: "February Half Term", Start: "16/02/2026", End: "20/02/2026"},
				{Name: "Easter Holidays", Start: "30/03/2026", End: "10/04/2026"},
				{Name: "May Half Term", Start: "25/05/2026", End: "29/05/2026"},
			},
		},
	}
}

// =============================================================================
// LOOKUP
// =============================================================================

// Lookup returns the name of the period containing the date, if any.
// The summer rule is checked first, then the named table in order.
func (c *Calendar) Lookup(date time.Time) (string, bool) {
	day := truncateToDay(date)

	summerStart, summerEnd := SummerRange(day.Year())
	if !day.Before(summerStart) && day.Before(summerEnd) {
		return SummerName, true
	}

	for _, r := range c.ranges {
		if !day.Before(r.start) && !day.After(r.end) {
			return r.name, true
		}
	}
	return "", false
}

// SummerRange computes the derived summer range for a calendar year:
// [Monday on-or-before 1 July, Monday on-or-before 1 September).
func SummerRange(year int) (start, end time.Time) {
	start = mondayOnOrBefore(time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC))
	end = mondayOnOrBefore(time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC))
	return start, end
}

// mondayOnOrBefore walks backward day-by-day from the given date until it
// lands on a Monday.
func mondayOnOrBefore(date time.Time) time.Time {
	for date.Weekday() != time.Monday {
		date = date.AddDate(0, 0, -1)
	}
	return date
}

// truncateToDay drops the time-of-day component.
func truncateToDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}
