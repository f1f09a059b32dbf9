// =============================================================================
// Funding Autofiller - Value Normalization
// =============================================================================
//
// Field-level normalization applied while writing resolved values into the
// form. These replace the generic per-field transformation rules of earlier
// tooling with the three cases the claim data actually needs: currency
// stripping, note splitting, and weekly-total candidate extraction.
//
// =============================================================================

package annotator

import (
	"strings"
	"time"

	"github.com/ginjaninja78/funding-autofiller/internal/calendar"
)

// WeeklyTotalSeparator joins candidate weekly-total values in one field,
// e.g. "20/25".
const WeeklyTotalSeparator = "/"

// NoteSeparator splits a note into its main text and a secondary badge
// segment, e.g. "base claim // switches rooms in May".
const NoteSeparator = "//"

// basePeriodMarker flags a record as a base-period entry when it appears
// anywhere in the note, case-insensitively.
const basePeriodMarker = "base"

// NormalizeRate strips an hourly rate down to digits and a single decimal
// point. Currency symbols, thousands separators and whitespace are removed:
// "€2.79" -> "2.79", "£1,234.50 " -> "1234.50".
func NormalizeRate(raw string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitNote splits a note at the first separator. The second return value is
// the trimmed badge segment, empty when there is none.
func SplitNote(note string) (main, badge string) {
	before, after, found := strings.Cut(note, NoteSeparator)
	if !found {
		return strings.TrimSpace(note), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// IsBasePeriod reports whether the note marks a base-period record.
func IsBasePeriod(note string) bool {
	return strings.Contains(strings.ToLower(note), basePeriodMarker)
}

// Candidates extracts the scalar weekly-total candidates from a field value.
// Blank segments are dropped; a plain value yields itself.
func Candidates(weeklyTotal string) []string {
	parts := strings.Split(weeklyTotal, WeeklyTotalSeparator)
	candidates := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			candidates = append(candidates, part)
		}
	}
	return candidates
}

// IsAmbiguous reports whether a weekly-total value holds more than one
// candidate and therefore needs operator disambiguation.
func IsAmbiguous(weeklyTotal string) bool {
	return len(Candidates(weeklyTotal)) > 1
}

// ParseDate parses a trimmed DD/MM/YYYY date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(calendar.DateLayout, strings.TrimSpace(value))
}
