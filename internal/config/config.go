package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/faena-transit/rosterizer/pkg/rosterdomain"
	"github.com/faena-transit/rosterizer/pkg/shiftexpand"
)

// ShiftSpec is one shift specification inside a service entry. Exactly one
// of RRule and Date must be set: an RRule makes it a recurrence template,
// a Date makes it an already-dated shift. Mixing the two kinds across a run
// configuration is rejected downstream by the expander's mode detector.
type ShiftSpec struct {
	ShiftNumber   int     `yaml:"shiftNumber" validate:"required,min=1"`
	StartTime     string  `yaml:"startTime" validate:"required"`
	DurationHours float64 `yaml:"durationHours" validate:"required,gt=0"`
	RRule         string  `yaml:"rrule,omitempty"`
	Date          string  `yaml:"date,omitempty"` // YYYY-MM-DD
}

// Service is one service's identity plus its shift specifications.
type Service struct {
	ServiceID   string      `yaml:"serviceID" validate:"required"`
	Vehicle     string      `yaml:"vehicle,omitempty"`
	ServiceType string      `yaml:"serviceType,omitempty"`
	Shifts      []ShiftSpec `yaml:"shifts" validate:"required,min=1,dive"`
}

// Config is the operator-supplied run configuration: target month, regime
// constants, search parameters, and the service templates to expand.
type Config struct {
	Year  int `yaml:"year" validate:"required,min=2000,max=2200"`
	Month int `yaml:"month" validate:"required,min=1,max=12"`

	CycleN                 int `yaml:"cycleN" validate:"oneof=7 10 14"`
	MaxDailyMinutes        int `yaml:"maxDailyMinutes" validate:"min=1"`
	MinSameDayRestMinutes  int `yaml:"minSameDayRestMinutes" validate:"min=0"`
	MinInterDayRestMinutes int `yaml:"minInterDayRestMinutes" validate:"min=0"`

	SAInitialTemperature float64 `yaml:"saInitialTemperature" validate:"gt=0"`
	SACoolingRate        float64 `yaml:"saCoolingRate" validate:"gt=0,lt=1"`
	ConsolidationPeriod  int     `yaml:"consolidationPeriod" validate:"min=1"`
	TimeBudgetSeconds    int     `yaml:"timeBudgetSeconds" validate:"min=1"`
	StagnationLimit      int     `yaml:"stagnationLimit" validate:"min=1"`
	Seed                 uint64  `yaml:"seed"`

	DatabaseURL string `yaml:"databaseURL,omitempty"`

	Services []Service `yaml:"services" validate:"required,min=1,dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from rosterizer_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills the mining-faena defaults for every knob left at its
// zero value, so a minimal config only needs year, month, and services.
func (c *Config) ApplyDefaults() {
	regime := rosterdomain.DefaultRegimeConfig()
	if c.CycleN == 0 {
		c.CycleN = regime.CycleN
	}
	if c.MaxDailyMinutes == 0 {
		c.MaxDailyMinutes = regime.MaxDailyMinutes
	}
	if c.MinSameDayRestMinutes == 0 {
		c.MinSameDayRestMinutes = regime.MinSameDayRestMinutes
	}
	if c.MinInterDayRestMinutes == 0 {
		c.MinInterDayRestMinutes = regime.MinInterDayRestMinutes
	}
	if c.SAInitialTemperature == 0 {
		c.SAInitialTemperature = 100.0
	}
	if c.SACoolingRate == 0 {
		c.SACoolingRate = 0.95
	}
	if c.ConsolidationPeriod == 0 {
		c.ConsolidationPeriod = 50
	}
	if c.TimeBudgetSeconds == 0 {
		c.TimeBudgetSeconds = 600
	}
	if c.StagnationLimit == 0 {
		c.StagnationLimit = 1000
	}
}

// Validate validates the configuration struct and checks rrule and date
// syntax for each shift specification.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, svc := range cfg.Services {
		for j, spec := range svc.Shifts {
			switch {
			case spec.RRule != "" && spec.Date != "":
				return fmt.Errorf("services[%d].shifts[%d]: rrule and date are mutually exclusive", i, j)
			case spec.RRule == "" && spec.Date == "":
				return fmt.Errorf("services[%d].shifts[%d]: one of rrule or date is required", i, j)
			case spec.RRule != "":
				if _, err := rrule.StrToRRule(spec.RRule); err != nil {
					return fmt.Errorf("invalid rrule in services[%d].shifts[%d]: %w", i, j, err)
				}
			default:
				if _, err := time.Parse("2006-01-02", spec.Date); err != nil {
					return fmt.Errorf("invalid date in services[%d].shifts[%d]: %w", i, j, err)
				}
			}
			if _, _, err := parseHHMM(spec.StartTime); err != nil {
				return fmt.Errorf("invalid startTime in services[%d].shifts[%d]: %w", i, j, err)
			}
		}
	}

	return nil
}

func parseHHMM(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// Regime returns the regime constants as the immutable value the core
// components thread through the call graph.
func (c *Config) Regime() rosterdomain.RegimeConfig {
	return rosterdomain.RegimeConfig{
		CycleN:                 c.CycleN,
		MaxDailyMinutes:        c.MaxDailyMinutes,
		MinSameDayRestMinutes:  c.MinSameDayRestMinutes,
		MinInterDayRestMinutes: c.MinInterDayRestMinutes,
	}
}

// ServiceTemplates converts the configured services into the expander's
// input form. Call only after Validate: date strings are assumed well
// formed here.
func (c *Config) ServiceTemplates() []shiftexpand.ServiceTemplate {
	out := make([]shiftexpand.ServiceTemplate, 0, len(c.Services))
	for _, svc := range c.Services {
		tpl := shiftexpand.ServiceTemplate{
			ServiceID:   svc.ServiceID,
			Vehicle:     svc.Vehicle,
			ServiceType: svc.ServiceType,
		}
		for _, spec := range svc.Shifts {
			s := shiftexpand.ShiftSpec{
				ShiftNumber:   spec.ShiftNumber,
				StartTime:     spec.StartTime,
				DurationHours: spec.DurationHours,
			}
			if spec.RRule != "" {
				s.Frequency = &shiftexpand.FrequencySpec{RRule: spec.RRule}
			} else {
				d, _ := time.Parse("2006-01-02", spec.Date)
				s.Dated = &shiftexpand.DatedSpec{Date: d}
			}
			tpl.Shifts = append(tpl.Shifts, s)
		}
		out = append(out, tpl)
	}
	return out
}

// findConfigFile searches for rosterizer_config.yaml in current directory
// and home directory.
func findConfigFile() (string, error) {
	configFileName := "rosterizer_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
