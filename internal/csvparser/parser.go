// =============================================================================
// Funding Autofiller - Tabular Parser
// =============================================================================
//
// This module parses the delimited text exported by the funding extraction
// pipeline into ordered header->value rows. The format is deliberately
// minimal and matches what the upstream tool writes:
//   - The first non-blank line is the header; field names are trimmed.
//   - Every subsequent non-blank line is split positionally on the delimiter.
//   - Missing trailing values default to the empty string.
//   - There is no quoting or escaping; a delimiter inside a value is not
//     protected.
//
// Values are kept verbatim. Trimming for key comparison happens in the
// source package so the comparison rules live in one place.
//
// =============================================================================

package csvparser

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyInput is returned when the input contains no header line. This is
// one of the two up-front precondition failures; it is reported once and
// processing does not start.
var ErrEmptyInput = errors.New("input contains no rows")

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how the delimited text is split.
type Settings struct {
	// Delimiter separates fields within a line.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// ApplyDefaults fills unset settings with their defaults.
func (s *Settings) ApplyDefaults() {
	if s.Delimiter == "" {
		s.Delimiter = ","
	}
}

// =============================================================================
// PARSED DATA
// =============================================================================

// Data is the parsed result of one input file.
type Data struct {
	// Headers contains the trimmed column headers, in file order.
	Headers []string

	// Rows contains the data rows as header -> value maps, in file order.
	Rows []map[string]string

	// SourceFile is the path the data was read from, when applicable.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited text file and returns the parsed rows.
func Parse(filePath string, settings Settings) (*Data, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	data, err := ParseString(string(raw), settings)
	if err != nil {
		return nil, err
	}

	data.SourceFile = filePath
	return data, nil
}

// ParseString parses raw delimited text. Lines are split on "\n" with any
// trailing "\r" stripped, so both Unix and Windows exports parse the same.
func ParseString(raw string, settings Settings) (*Data, error) {
	settings.ApplyDefaults()

	lines := strings.Split(raw, "\n")

	// Locate the header: the first non-blank line.
	headerIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(strings.TrimSuffix(line, "\r")) != "" {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, ErrEmptyInput
	}

	headers := splitLine(lines[headerIndex], settings.Delimiter)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	// Assign values positionally to the header names. Short lines leave the
	// trailing fields empty; long lines drop the extra values.
	rows := make([]map[string]string, 0, len(lines)-headerIndex-1)
	for _, line := range lines[headerIndex+1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := splitLine(line, settings.Delimiter)
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Data{Headers: headers, Rows: rows}, nil
}

// splitLine splits a single line on the delimiter. No quoting support.
func splitLine(line, delimiter string) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), delimiter)
}
