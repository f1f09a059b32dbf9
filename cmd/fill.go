// =============================================================================
// Funding Autofiller - Fill Command
// =============================================================================
//
// The main pipeline: load the funding CSV, index its records, open the claim
// form workbook, and drive the engine over the form rows. Ambiguous rows
// prompt the operator unless --interactive is off, in which case the first
// weekly total is taken. Ctrl-C cancels the run after the current row.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-autofiller/internal/config"
	"github.com/ginjaninja78/funding-autofiller/internal/csvparser"
	"github.com/ginjaninja78/funding-autofiller/internal/engine"
	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/prompt"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
	"github.com/ginjaninja78/funding-autofiller/internal/validation"
	"github.com/ginjaninja78/funding-autofiller/pkg/utils"
)

var (
	fillFormFile    string
	fillCSVFile     string
	fillInteractive bool
	fillDryRun      bool
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the claim form from the newest funding CSV",
	Long: `Fill matches every row of the claim form against the funding CSV and
writes period start, weekly total and hourly rate into the matched rows,
marking each one fresh, stale or base and badging holiday periods.

Without --csv the newest *.csv in the input directory is used. Processed
inputs are archived and a run report is written to the report directory.`,
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVar(&fillFormFile, "form", "", "claim form workbook (overrides config)")
	fillCmd.Flags().StringVar(&fillCSVFile, "csv", "", "funding CSV to process (default: newest in input dir)")
	fillCmd.Flags().BoolVarP(&fillInteractive, "interactive", "i", true, "prompt when a record has multiple weekly totals")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "run the match without saving the workbook or archiving the input")
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	startedAt := time.Now()
	runID := utils.NewRunID()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if fillFormFile != "" {
		cfg.FormFile = fillFormFile
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.InputArchiveDir, cfg.ReportDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	csvPath := fillCSVFile
	if csvPath == "" {
		csvPath, err = fm.NewestInput("*.csv")
		if err != nil {
			return err
		}
	}
	logger.Info().Str("csv", csvPath).Str("form", cfg.FormFile).Msg("starting fill run")

	data, err := csvparser.Parse(csvPath, cfg.CSV)
	if err != nil {
		if errors.Is(err, csvparser.ErrEmptyInput) {
			return fmt.Errorf("%s: %w", csvPath, err)
		}
		return err
	}

	records := source.FromRows(data.Rows, cfg.Fields)
	if issues := validation.ValidateRecords(records); len(issues) > 0 {
		logger.Warn().Int("count", len(issues)).Msg("source records have validation issues")
		if path, err := fm.WriteDiagnosticsLog(runID, validation.FormatErrors(issues)); err == nil {
			logger.Info().Str("path", path).Msg("diagnostics written")
		} else {
			logger.Warn().Err(err).Msg("failed to write diagnostics")
		}
	}

	keyMode, err := cfg.KeyMode()
	if err != nil {
		return err
	}
	index := source.Build(records, keyMode)
	logger.Debug().Int("records", len(records)).Int("buckets", index.BucketCount()).Msg("source index built")

	cal, err := cfg.Calendar()
	if err != nil {
		return err
	}
	options, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	sheet, err := form.Open(cfg.FormFile, cfg.Layout, logger)
	if err != nil {
		return err
	}
	defer sheet.Close()

	var chooser engine.Chooser
	if fillInteractive {
		chooser = prompt.NewTerminalChooser(os.Stdin, os.Stdout)
	} else {
		chooser = prompt.AutoChooser{PickFirst: true}
	}
	status := prompt.NewTerminalStatus(os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng := engine.New(index, cal, options, chooser, status, logger)
	result, err := eng.Run(ctx, sheet)
	if err != nil {
		return err
	}

	reportPath, err := fm.WriteRunReport(runSummary(runID, startedAt, csvPath, cfg.FormFile, result), unmatchedEntries(result))
	if err != nil {
		logger.Warn().Err(err).Msg("failed to write run report")
	} else {
		logger.Info().Str("path", reportPath).Msg("run report written")
	}

	if fillDryRun {
		logger.Info().Msg("dry run, workbook not saved")
		return nil
	}

	if err := sheet.Save(); err != nil {
		return err
	}
	if fillCSVFile == "" {
		if archived, err := fm.ArchiveInputFile(csvPath); err != nil {
			logger.Warn().Err(err).Msg("failed to archive input")
		} else {
			logger.Debug().Str("path", archived).Msg("input archived")
		}
	}
	return nil
}

// loadConfig loads the configured file, falling back to defaults when no
// config file exists.
func loadConfig() (*config.Config, error) {
	path := configPath()
	if !utils.FileExists(path) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runSummary(runID string, startedAt time.Time, csvPath, formPath string, result *engine.Result) utils.RunSummary {
	return utils.RunSummary{
		RunID:      runID,
		StartedAt:  startedAt,
		Duration:   result.Duration,
		CSVFile:    csvPath,
		FormFile:   formPath,
		RowsFound:  result.RowsFound,
		Filled:     result.Filled,
		Unmatched:  result.Unmatched,
		BlankKey:   result.BlankKey,
		Skipped:    result.OperatorSkipped,
		Errored:    result.Errored,
		Cancelled:  result.Cancelled,
		StatusLine: result.Summary(),
	}
}

func unmatchedEntries(result *engine.Result) []utils.UnmatchedEntry {
	var entries []utils.UnmatchedEntry
	for _, row := range result.Rows {
		switch row.Outcome {
		case engine.OutcomeNoMatch, engine.OutcomeOperatorSkip, engine.OutcomeWriteError:
			entries = append(entries, utils.UnmatchedEntry{
				RowNumber:  row.Number,
				Identifier: row.Identifier,
				Reason:     row.Outcome.String(),
			})
		}
	}
	return entries
}
