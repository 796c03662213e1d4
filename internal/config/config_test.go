package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Year:  2026,
		Month: 3,
		Services: []Service{
			{
				ServiceID: "LINE-1",
				Vehicle:   "BUS-07",
				Shifts: []ShiftSpec{
					{ShiftNumber: 1, StartTime: "06:00", DurationHours: 8, RRule: "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"},
				},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	err := Validate(validConfig())
	assert.NoError(t, err)
}

func TestValidate_MissingRequiredField(t *testing.T) {
	cfg := validConfig()
	cfg.Month = 0

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_RejectsUnknownCycle(t *testing.T) {
	cfg := validConfig()
	cfg.CycleN = 9

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts[0].RRule = "INVALID_RRULE_SYNTAX"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestValidate_RRuleAndDateMutuallyExclusive(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts[0].Date = "2026-03-05"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_RequiresRRuleOrDate(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts[0].RRule = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "one of rrule or date")
}

func TestValidate_InvalidDate(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts[0].RRule = ""
	cfg.Services[0].Shifts[0].Date = "05/03/2026"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestValidate_InvalidStartTime(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts[0].StartTime = "6am"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid startTime")
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	validYAML := `
year: 2026
month: 3
cycleN: 7
saCoolingRate: 0.9
seed: 1234
databaseURL: "postgres://localhost/rosterizer"
services:
  - serviceID: "LINE-1"
    vehicle: "BUS-07"
    serviceType: "faena"
    shifts:
      - shiftNumber: 1
        startTime: "06:00"
        durationHours: 8
        rrule: "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
      - shiftNumber: 2
        startTime: "14:30"
        durationHours: 8.5
        rrule: "FREQ=DAILY"
`

	err := os.WriteFile(configPath, []byte(validYAML), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2026, cfg.Year)
	assert.Equal(t, 3, cfg.Month)
	assert.Equal(t, 7, cfg.CycleN)
	assert.Equal(t, uint64(1234), cfg.Seed)
	assert.Equal(t, "postgres://localhost/rosterizer", cfg.DatabaseURL)

	// unset knobs take the mining-faena defaults.
	assert.Equal(t, 840, cfg.MaxDailyMinutes)
	assert.Equal(t, 300, cfg.MinSameDayRestMinutes)
	assert.Equal(t, 600, cfg.MinInterDayRestMinutes)
	assert.Equal(t, 100.0, cfg.SAInitialTemperature)
	assert.Equal(t, 0.9, cfg.SACoolingRate)
	assert.Equal(t, 50, cfg.ConsolidationPeriod)
	assert.Equal(t, 600, cfg.TimeBudgetSeconds)
	assert.Equal(t, 1000, cfg.StagnationLimit)

	require.Len(t, cfg.Services, 1)
	require.Len(t, cfg.Services[0].Shifts, 2)
	assert.Equal(t, "14:30", cfg.Services[0].Shifts[1].StartTime)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal_config.yaml")

	minimalYAML := `
year: 2026
month: 3
services:
  - serviceID: "LINE-1"
    shifts:
      - shiftNumber: 1
        startTime: "06:00"
        durationHours: 8
        date: "2026-03-05"
`

	err := os.WriteFile(configPath, []byte(minimalYAML), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.CycleN)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, uint64(0), cfg.Seed)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_yaml.yaml")

	invalidYAML := `
year: 2026
  invalid indentation
month: 3
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRegimeReflectsConfiguredLimits(t *testing.T) {
	cfg := validConfig()
	cfg.CycleN = 10
	cfg.MaxDailyMinutes = 720

	regime := cfg.Regime()
	assert.Equal(t, 10, regime.CycleN)
	assert.Equal(t, 720, regime.MaxDailyMinutes)
	assert.Equal(t, 300, regime.MinSameDayRestMinutes)
	assert.Equal(t, 600, regime.MinInterDayRestMinutes)
}

func TestServiceTemplatesConversion(t *testing.T) {
	cfg := validConfig()
	cfg.Services[0].Shifts = append(cfg.Services[0].Shifts, ShiftSpec{
		ShiftNumber: 2, StartTime: "18:00", DurationHours: 6, Date: "2026-03-10",
	})

	templates := cfg.ServiceTemplates()
	require.Len(t, templates, 1)
	require.Len(t, templates[0].Shifts, 2)

	assert.NotNil(t, templates[0].Shifts[0].Frequency)
	assert.Nil(t, templates[0].Shifts[0].Dated)

	require.NotNil(t, templates[0].Shifts[1].Dated)
	assert.Equal(t, 10, templates[0].Shifts[1].Dated.Date.Day())
}
