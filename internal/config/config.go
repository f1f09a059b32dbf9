// =============================================================================
// Funding Autofiller - Configuration
// =============================================================================
//
// One YAML document configures a fill run: where the funding CSV and the
// claim form workbook live, which CSV headers back the logical record
// fields, where the destination table sits on the sheet, the engine
// behavior switches, and an optional holiday table override.
//
// All values have defaults; an empty file is a valid configuration for the
// standard claim form template.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/funding-autofiller/internal/calendar"
	"github.com/ginjaninja78/funding-autofiller/internal/csvparser"
	"github.com/ginjaninja78/funding-autofiller/internal/engine"
	"github.com/ginjaninja78/funding-autofiller/internal/form"
	"github.com/ginjaninja78/funding-autofiller/internal/source"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the main application configuration.
type Config struct {
	// =========================================================================
	// FILE LOCATIONS
	// =========================================================================

	// FormFile is the claim form workbook to fill.
	// Default: "./claim_form.xlsx"
	FormFile string `yaml:"form_file"`

	// InputDir is scanned for funding CSVs when no --csv flag is given; the
	// newest match wins.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// InputArchiveDir receives processed CSVs after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ReportDir receives run reports and diagnostics logs.
	// Default: "./reports"
	ReportDir string `yaml:"report_dir"`

	// =========================================================================
	// INPUT SHAPE
	// =========================================================================

	// CSV controls how the funding export is split.
	CSV csvparser.Settings `yaml:"csv_settings"`

	// Fields maps the logical record fields to CSV headers.
	Fields source.FieldNames `yaml:"field_names"`

	// Layout locates the destination table in the form workbook.
	Layout form.Layout `yaml:"form_layout"`

	// =========================================================================
	// ENGINE BEHAVIOR
	// =========================================================================

	// Engine holds the matching behavior switches.
	Engine EngineSettings `yaml:"engine"`

	// HolidayTable overrides the built-in school holiday table when set.
	HolidayTable []calendar.SchoolYear `yaml:"holiday_table,omitempty"`
}

// EngineSettings is the YAML shape of engine.Options. The booleans are named
// for the non-default so a zero value means standard behavior.
type EngineSettings struct {
	// KeyFields selects the composite key: "identifier+end" (default) or
	// "identifier".
	KeyFields string `yaml:"key_fields"`

	// ReuseRecords disables consumption, letting one record fill several
	// rows. Matches the behavior of the oldest in-house variant.
	ReuseRecords bool `yaml:"reuse_records"`

	// SkipHolidayBadges disables the holiday period badges.
	SkipHolidayBadges bool `yaml:"skip_holiday_badges"`

	// SkipStalenessBadges disables the stale classification.
	SkipStalenessBadges bool `yaml:"skip_staleness_badges"`

	// StaleAfterDays is the staleness threshold.
	// Default: 90
	StaleAfterDays int `yaml:"stale_after_days"`

	// RowDelayMS is the pacing delay between rows, in milliseconds.
	// Default: 40
	RowDelayMS int `yaml:"row_delay_ms"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Default returns the configuration for the standard claim form template.
func Default() *Config {
	var config Config
	config.ApplyDefaults()
	return &config
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	if c.FormFile == "" {
		c.FormFile = "./claim_form.xlsx"
	}
	if c.InputDir == "" {
		c.InputDir = "./input"
	}
	if c.InputArchiveDir == "" {
		c.InputArchiveDir = "./input_archive"
	}
	if c.ReportDir == "" {
		c.ReportDir = "./reports"
	}
	c.CSV.ApplyDefaults()
	c.Layout.ApplyDefaults()
	if c.Engine.KeyFields == "" {
		c.Engine.KeyFields = "identifier+end"
	}
	if c.Engine.StaleAfterDays == 0 {
		c.Engine.StaleAfterDays = 90
	}
	if c.Engine.RowDelayMS == 0 {
		c.Engine.RowDelayMS = 40
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if _, err := c.KeyMode(); err != nil {
		return err
	}
	if c.Engine.RowDelayMS < 0 {
		return fmt.Errorf("engine: row_delay_ms must not be negative")
	}
	if c.Engine.StaleAfterDays < 0 {
		return fmt.Errorf("engine: stale_after_days must not be negative")
	}
	if len(c.HolidayTable) > 0 {
		if _, err := calendar.FromYears(c.HolidayTable); err != nil {
			return err
		}
	}
	return nil
}

// KeyMode parses the key_fields setting.
func (c *Config) KeyMode() (source.KeyMode, error) {
	switch c.Engine.KeyFields {
	case "", "identifier+end":
		return source.KeyIdentifierPeriodEnd, nil
	case "identifier":
		return source.KeyIdentifierOnly, nil
	default:
		return 0, fmt.Errorf("engine: unknown key_fields %q (want \"identifier+end\" or \"identifier\")", c.Engine.KeyFields)
	}
}

// EngineOptions converts the settings into engine.Options.
func (c *Config) EngineOptions() (engine.Options, error) {
	mode, err := c.KeyMode()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		KeyMode:              mode,
		EnableConsumption:    !c.Engine.ReuseRecords,
		EnableHolidayBadge:   !c.Engine.SkipHolidayBadges,
		EnableStalenessBadge: !c.Engine.SkipStalenessBadges,
		StaleAfterDays:       c.Engine.StaleAfterDays,
		RowDelay:             time.Duration(c.Engine.RowDelayMS) * time.Millisecond,
	}, nil
}

// Calendar builds the holiday calendar, preferring the override table.
func (c *Config) Calendar() (*calendar.Calendar, error) {
	if len(c.HolidayTable) > 0 {
		return calendar.FromYears(c.HolidayTable)
	}
	return calendar.Default(), nil
}
