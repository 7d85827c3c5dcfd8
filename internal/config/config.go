package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GoogleCredentials represents the structure of Google OAuth credentials JSON file.
type GoogleCredentials struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// LoadGoogleCredentials loads Google OAuth credentials from a JSON file.
func LoadGoogleCredentials(path string) (clientID, clientSecret string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds GoogleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// Try "installed" first (for desktop apps), then "web"
	if creds.Installed.ClientID != "" {
		return creds.Installed.ClientID, creds.Installed.ClientSecret, nil
	}
	if creds.Web.ClientID != "" {
		return creds.Web.ClientID, creds.Web.ClientSecret, nil
	}

	return "", "", fmt.Errorf("no client_id found in credentials file (expected 'installed' or 'web' section)")
}

// Messages holds the user-visible strings written into session events. Each string
// may contain the "{calendar}" placeholder, which is replaced with the calendar
// title when the string is written to an event.
type Messages struct {
	Started       string `json:"started,omitempty" yaml:"started,omitempty"`
	Concluded     string `json:"concluded,omitempty" yaml:"concluded,omitempty"`
	Inactivity    string `json:"inactivity,omitempty" yaml:"inactivity,omitempty"`
	OpenSummary   string `json:"open_summary,omitempty" yaml:"open_summary,omitempty"`
	ClosedSummary string `json:"closed_summary,omitempty" yaml:"closed_summary,omitempty"`
}

// Config holds the configuration for the calendar logger. It is assembled once by
// LoadConfig and never mutated afterwards.
type Config struct {
	GoogleCredentialsPath string   `json:"google_credentials_path,omitempty" yaml:"google_credentials_path,omitempty"`
	TokenPath             string   `json:"token_path,omitempty" yaml:"token_path,omitempty"`
	CalendarName          string   `json:"calendar_name,omitempty" yaml:"calendar_name,omitempty"`
	CalendarColorID       string   `json:"calendar_color_id,omitempty" yaml:"calendar_color_id,omitempty"`
	ThresholdMinutes      int      `json:"threshold_minutes,omitempty" yaml:"threshold_minutes,omitempty"`
	LookbackDays          int      `json:"lookback_days,omitempty" yaml:"lookback_days,omitempty"`
	TimeZone              string   `json:"time_zone,omitempty" yaml:"time_zone,omitempty"`
	Verbose               bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Messages              Messages `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Flags carries the command-line overrides for LoadConfig. Empty strings and zero
// values mean "not set on the command line".
type Flags struct {
	GoogleCredentialsPath string
	TokenPath             string
	CalendarName          string
	CalendarColorID       string
	ThresholdMinutes      int
	LookbackDays          int
	Verbose               bool
}

// LoadConfigFromFile loads configuration from a JSON or YAML file, selected by the
// file extension (.yaml/.yml for YAML, anything else is parsed as JSON).
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return &config, nil
}

// LoadConfig loads configuration with the following precedence (highest to lowest):
// 1. Command-line flags
// 2. Environment variables
// 3. Config file
// 4. Defaults
// Returns an error if any required value is missing.
func LoadConfig(configFile string, flags Flags) (*Config, error) {
	var config Config

	// Step 1: Load from config file if provided
	if configFile != "" {
		fileConfig, err := LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
		config = *fileConfig
	}

	// Step 2: Override with environment variables
	if credentialsPath := os.Getenv("GOOGLE_CREDENTIALS_PATH"); credentialsPath != "" {
		config.GoogleCredentialsPath = credentialsPath
	}
	if tokenPath := os.Getenv("TOKEN_PATH"); tokenPath != "" {
		config.TokenPath = tokenPath
	}
	if calendarName := os.Getenv("LOG_CALENDAR_NAME"); calendarName != "" {
		config.CalendarName = calendarName
	}
	if colorID := os.Getenv("LOG_CALENDAR_COLOR_ID"); colorID != "" {
		config.CalendarColorID = colorID
	}
	if threshold := os.Getenv("INACTIVITY_THRESHOLD_MINUTES"); threshold != "" {
		value, err := strconv.Atoi(threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid INACTIVITY_THRESHOLD_MINUTES value: %w", err)
		}
		config.ThresholdMinutes = value
	}
	if lookback := os.Getenv("LOOKBACK_DAYS"); lookback != "" {
		value, err := strconv.Atoi(lookback)
		if err != nil {
			return nil, fmt.Errorf("invalid LOOKBACK_DAYS value: %w", err)
		}
		config.LookbackDays = value
	}

	// Step 3: Override with command-line flags (highest priority)
	if flags.GoogleCredentialsPath != "" {
		config.GoogleCredentialsPath = flags.GoogleCredentialsPath
	}
	if flags.TokenPath != "" {
		config.TokenPath = flags.TokenPath
	}
	if flags.CalendarName != "" {
		config.CalendarName = flags.CalendarName
	}
	if flags.CalendarColorID != "" {
		config.CalendarColorID = flags.CalendarColorID
	}
	if flags.ThresholdMinutes != 0 {
		config.ThresholdMinutes = flags.ThresholdMinutes
	}
	if flags.LookbackDays != 0 {
		config.LookbackDays = flags.LookbackDays
	}
	if flags.Verbose {
		config.Verbose = true
	}

	// Step 4: Apply defaults and validate required fields
	if config.GoogleCredentialsPath == "" {
		return nil, fmt.Errorf("google_credentials_path must be provided via --google-credentials-path flag, GOOGLE_CREDENTIALS_PATH environment variable, or config file")
	}

	if config.TokenPath == "" {
		return nil, fmt.Errorf("token_path must be provided via --token-path flag, TOKEN_PATH environment variable, or config file")
	}

	if config.CalendarName == "" {
		config.CalendarName = "Work Log"
	}

	if config.ThresholdMinutes == 0 {
		config.ThresholdMinutes = 10
	}
	if config.ThresholdMinutes < 0 {
		return nil, fmt.Errorf("threshold_minutes must be positive, got %d", config.ThresholdMinutes)
	}

	if config.LookbackDays == 0 {
		config.LookbackDays = 14
	}
	if config.LookbackDays < 0 {
		return nil, fmt.Errorf("lookback_days must be positive, got %d", config.LookbackDays)
	}

	// Message defaults, individually overridable
	if config.Messages.Started == "" {
		config.Messages.Started = "Started working on {calendar}"
	}
	if config.Messages.Concluded == "" {
		config.Messages.Concluded = "Stopped working on {calendar}"
	}
	if config.Messages.Inactivity == "" {
		config.Messages.Inactivity = "Session closed after inactivity"
	}
	if config.Messages.OpenSummary == "" {
		config.Messages.OpenSummary = "Working on {calendar}"
	}
	if config.Messages.ClosedSummary == "" {
		config.Messages.ClosedSummary = "Worked on {calendar}"
	}

	return &config, nil
}
