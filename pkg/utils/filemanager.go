// =============================================================================
// Funding Autofiller - File Manager
// =============================================================================
//
// Filesystem chores around a fill run: finding the newest funding CSV,
// archiving processed inputs, and writing the run report (a human-readable
// summary plus an unmatched-rows CSV for follow-up, the successor of the
// old unmatchedChildren.csv output).
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the run's directories.
type FileManager struct {
	// InputDir is scanned for funding CSVs.
	InputDir string

	// InputArchiveDir receives processed inputs.
	InputArchiveDir string

	// ReportDir receives run reports and diagnostics.
	ReportDir string
}

// NewFileManager creates a file manager over the configured directories.
func NewFileManager(inputDir, inputArchiveDir, reportDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		InputArchiveDir: inputArchiveDir,
		ReportDir:       reportDir,
	}
}

// EnsureDirectories creates any missing directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.InputArchiveDir, fm.ReportDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// NewestInput returns the most recently modified file in the input directory
// matching the glob pattern.
func (fm *FileManager) NewestInput(pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return "", fmt.Errorf("failed to list input files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no input files matching %q in %s", pattern, fm.InputDir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	return matches[0], nil
}

// ArchiveInputFile moves a processed input into the archive, adding a
// timestamp suffix when the name is already taken.
func (fm *FileManager) ArchiveInputFile(path string) (string, error) {
	target := filepath.Join(fm.InputArchiveDir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		stem := strings.TrimSuffix(target, ext)
		target = fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to archive input file: %w", err)
	}
	return target, nil
}

// modTime returns the file's modification time, zero on error.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// =============================================================================
// RUN REPORTS
// =============================================================================

// RunSummary is the report header for one fill run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	CSVFile    string
	FormFile   string
	RowsFound  int
	Filled     int
	Unmatched  int
	BlankKey   int
	Skipped    int
	Errored    int
	Cancelled  bool
	StatusLine string
}

// UnmatchedEntry is one destination row left unfilled.
type UnmatchedEntry struct {
	RowNumber  int
	Identifier string
	Reason     string
}

// NewRunID returns a fresh run identifier for report naming.
func NewRunID() string {
	return uuid.New().String()
}

// WriteRunReport writes the summary and, when there are unmatched rows, a
// companion CSV listing them. It returns the summary path.
func (fm *FileManager) WriteRunReport(summary RunSummary, unmatched []UnmatchedEntry) (string, error) {
	stem := fmt.Sprintf("fill_run_%s_%s", summary.StartedAt.Format("20060102_150405"), summary.RunID)

	var b strings.Builder
	fmt.Fprintf(&b, "Funding Autofiller run report\n")
	fmt.Fprintf(&b, "=============================\n\n")
	fmt.Fprintf(&b, "Run ID:      %s\n", summary.RunID)
	fmt.Fprintf(&b, "Started:     %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration:    %s\n", summary.Duration)
	fmt.Fprintf(&b, "Input CSV:   %s\n", summary.CSVFile)
	fmt.Fprintf(&b, "Form:        %s\n\n", summary.FormFile)
	fmt.Fprintf(&b, "Rows found:  %d\n", summary.RowsFound)
	fmt.Fprintf(&b, "Filled:      %d\n", summary.Filled)
	fmt.Fprintf(&b, "Unmatched:   %d\n", summary.Unmatched)
	fmt.Fprintf(&b, "Blank key:   %d\n", summary.BlankKey)
	fmt.Fprintf(&b, "Skipped:     %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Errors:      %d\n", summary.Errored)
	if summary.Cancelled {
		fmt.Fprintf(&b, "\nRun was cancelled before the last row.\n")
	}
	fmt.Fprintf(&b, "\n%s\n", summary.StatusLine)

	summaryPath := filepath.Join(fm.ReportDir, stem+".txt")
	if err := os.WriteFile(summaryPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}

	if len(unmatched) > 0 {
		var c strings.Builder
		c.WriteString("Row,Identifier,Reason\n")
		for _, entry := range unmatched {
			fmt.Fprintf(&c, "%d,%s,%s\n", entry.RowNumber, entry.Identifier, entry.Reason)
		}
		unmatchedPath := filepath.Join(fm.ReportDir, stem+"_unmatched.csv")
		if err := os.WriteFile(unmatchedPath, []byte(c.String()), 0o644); err != nil {
			return "", fmt.Errorf("failed to write unmatched report: %w", err)
		}
	}

	return summaryPath, nil
}

// WriteDiagnosticsLog writes validation diagnostics next to the run reports.
func (fm *FileManager) WriteDiagnosticsLog(runID, content string) (string, error) {
	path := filepath.Join(fm.ReportDir, fmt.Sprintf("diagnostics_%s.txt", runID))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write diagnostics log: %w", err)
	}
	return path, nil
}

// FileExists reports whether a path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
