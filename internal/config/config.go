// Package config handles the chase configuration file. Every reminder
// threshold, calendar hour, and default horizon the engine uses is
// externally supplied from here; the calculator and scanners never
// hard-code them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/chase/internal/core/timeframe"
)

// Config represents the flat chase configuration.
type Config struct {
	Version string `json:"version"`

	// Escalation ladder thresholds, in hours before the deadline.
	Reminder24hHours int `json:"reminder_24h_hours"`
	Reminder4hHours  int `json:"reminder_4h_hours"`
	Reminder1hHours  int `json:"reminder_1h_hours"`

	// SLA monitor: minutes before the deadline at which the nudge fires.
	SLANudgeMinutes int `json:"sla_nudge_minutes"`

	// Calendar rules for due-date calculation.
	EndOfDayHour   int `json:"end_of_day_hour"`
	StartOfDayHour int `json:"start_of_day_hour"`
	WeekEndHour    int `json:"week_end_hour"`

	// Default horizons.
	TodayOffsetHours    int `json:"today_offset_hours"`
	FewMinutesMinutes   int `json:"few_minutes_minutes"`
	FewHoursHours       int `json:"few_hours_hours"`
	DefaultHorizonHours int `json:"default_horizon_hours"`

	// Scan intervals for watch mode.
	ScanIntervalMinutes int `json:"scan_interval_minutes"`
	SLAIntervalMinutes  int `json:"sla_interval_minutes"`

	// EscalationChannel is the supervisory recipient for overdue
	// escalations.
	EscalationChannel string `json:"escalation_channel"`

	// RulesPath points at an external commitment-rule YAML file.
	// Empty means the built-in rules.
	RulesPath string `json:"rules_path,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:             "1",
		Reminder24hHours:    24,
		Reminder4hHours:     4,
		Reminder1hHours:     1,
		SLANudgeMinutes:     15,
		EndOfDayHour:        17,
		StartOfDayHour:      9,
		WeekEndHour:         17,
		TodayOffsetHours:    3,
		FewMinutesMinutes:   15,
		FewHoursHours:       2,
		DefaultHorizonHours: 4,
		ScanIntervalMinutes: 5,
		SLAIntervalMinutes:  1,
		EscalationChannel:   "supervisors",
	}
}

// Dir returns the chase home directory (~/.chase).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chase"), nil
}

// LoadConfig reads config.json from the chase home directory. A
// missing file yields the defaults, not an error.
func LoadConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to the chase home directory.
func SaveConfig(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Calendar converts the configured hours and horizons into the
// calculator's calendar config.
func (c *Config) Calendar() timeframe.CalendarConfig {
	return timeframe.CalendarConfig{
		EndOfDayHour:   c.EndOfDayHour,
		StartOfDayHour: c.StartOfDayHour,
		WeekEndHour:    c.WeekEndHour,
		TodayOffset:    time.Duration(c.TodayOffsetHours) * time.Hour,
		FewMinutes:     time.Duration(c.FewMinutesMinutes) * time.Minute,
		FewHours:       time.Duration(c.FewHoursHours) * time.Hour,
		DefaultHorizon: time.Duration(c.DefaultHorizonHours) * time.Hour,
	}
}

// ReminderWindows returns the three reminder thresholds as durations.
func (c *Config) ReminderWindows() (time.Duration, time.Duration, time.Duration) {
	return time.Duration(c.Reminder24hHours) * time.Hour,
		time.Duration(c.Reminder4hHours) * time.Hour,
		time.Duration(c.Reminder1hHours) * time.Hour
}

// NudgeLead returns the SLA nudge lead time.
func (c *Config) NudgeLead() time.Duration {
	return time.Duration(c.SLANudgeMinutes) * time.Minute
}
