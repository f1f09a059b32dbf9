// =============================================================================
// Funding Autofiller - Validate Command
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-autofiller/internal/csvparser"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
	"github.com/ginjaninja78/funding-autofiller/internal/validation"
	"github.com/ginjaninja78/funding-autofiller/pkg/utils"
)

var validateCSVFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and, optionally, a funding CSV",
	Long: `Validate loads the configuration, checks the form layout and holiday
table, and when --csv is given parses the file and reports every record
that would fail during a fill run.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateCSVFile, "csv", "", "funding CSV to check")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := cfg.KeyMode(); err != nil {
		return err
	}
	if _, err := cfg.Calendar(); err != nil {
		return fmt.Errorf("holiday table: %w", err)
	}
	if err := cfg.Layout.Validate(); err != nil {
		return fmt.Errorf("form layout: %w", err)
	}
	logger.Info().Msg("configuration is valid")

	if validateCSVFile == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration OK")
		return nil
	}
	if !utils.FileExists(validateCSVFile) {
		return fmt.Errorf("csv file not found: %s", validateCSVFile)
	}

	data, err := csvparser.Parse(validateCSVFile, cfg.CSV)
	if err != nil {
		return err
	}
	records := source.FromRows(data.Rows, cfg.Fields)
	issues := validation.ValidateRecords(records)
	if len(issues) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK, %d records OK\n", len(records))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), validation.FormatErrors(issues))
	return fmt.Errorf("%d of %d records have issues", len(issues), len(records))
}
