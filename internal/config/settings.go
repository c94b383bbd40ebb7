// Package config provides configuration management for breaktray.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
)

// MaxIntervalMinutes caps reminder intervals at one week, matching the
// range accepted by the add-reminder input.
const MaxIntervalMinutes = 7 * 24 * 60

// Settings holds the application settings.
//
// Config file location:
//   - Windows: %APPDATA%\BreakTray\breaktray.conf
//   - Unix: ~/.config/breaktray/breaktray.conf
//
// INI format:
//
//	[notifications]
//	muted = false
//	follow_focus_assist = false
//
//	[defaults]
//	message = Time to take a break
//	interval_minutes = 30
//
//	[log]
//	level = info
//
// Only settings live here. Reminder state is memory-resident and lost on
// process exit.
type Settings struct {
	Notifications NotificationSettings
	Defaults      DefaultSettings
	Log           LogSettings
}

// NotificationSettings holds the dispatcher toggles applied at startup.
type NotificationSettings struct {
	// Muted suppresses all notification delivery.
	Muted bool `ini:"muted"`

	// FollowFocusAssist additionally suppresses delivery while the OS
	// focus-assist/DND signal is active.
	FollowFocusAssist bool `ini:"follow_focus_assist"`
}

// DefaultSettings holds the values used when a reminder is added without
// explicit input (the tray's Add Reminder item).
type DefaultSettings struct {
	// Message is the default reminder text.
	Message string `ini:"message"`

	// IntervalMinutes is the default interval. Range 1..MaxIntervalMinutes.
	IntervalMinutes int `ini:"interval_minutes"`
}

// LogSettings holds logging configuration.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `ini:"level"`
}

// NewSettings returns settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Notifications: NotificationSettings{
			Muted:             false,
			FollowFocusAssist: false,
		},
		Defaults: DefaultSettings{
			Message:         "Time to take a break",
			IntervalMinutes: 30,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// DefaultPath returns the default path of the settings file.
//   - Windows: %APPDATA%\BreakTray\breaktray.conf
//   - Unix: ~/.config/breaktray/breaktray.conf
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE environment variable set")
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "BreakTray")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "breaktray")
	}

	return filepath.Join(configDir, "breaktray.conf"), nil
}

// Load reads settings from the given path. If path is empty, the default
// path is used. A missing file returns defaults and no error; a malformed
// file returns an error. Out-of-range values are clamped.
func Load(path string) (*Settings, error) {
	cfg := NewSettings()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load breaktray.conf: %w", err)
	}

	notifySection := iniFile.Section("notifications")
	cfg.Notifications.Muted = notifySection.Key("muted").MustBool(false)
	cfg.Notifications.FollowFocusAssist = notifySection.Key("follow_focus_assist").MustBool(false)

	defaultsSection := iniFile.Section("defaults")
	cfg.Defaults.Message = defaultsSection.Key("message").MustString(cfg.Defaults.Message)
	cfg.Defaults.IntervalMinutes = defaultsSection.Key("interval_minutes").MustInt(cfg.Defaults.IntervalMinutes)

	logSection := iniFile.Section("log")
	cfg.Log.Level = logSection.Key("level").MustString("info")

	cfg.clamp()
	return cfg, nil
}

// clamp forces out-of-range values back into their valid ranges.
func (s *Settings) clamp() {
	if s.Defaults.IntervalMinutes < 1 {
		s.Defaults.IntervalMinutes = 1
	}
	if s.Defaults.IntervalMinutes > MaxIntervalMinutes {
		s.Defaults.IntervalMinutes = MaxIntervalMinutes
	}
	if s.Defaults.Message == "" {
		s.Defaults.Message = NewSettings().Defaults.Message
	}
}

// Save writes the settings to the given path, creating the directory if
// needed. If path is empty, the default path is used.
func (s *Settings) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	notifySection := iniFile.Section("notifications")
	notifySection.Key("muted").SetValue(fmt.Sprintf("%t", s.Notifications.Muted))
	notifySection.Key("follow_focus_assist").SetValue(fmt.Sprintf("%t", s.Notifications.FollowFocusAssist))

	defaultsSection := iniFile.Section("defaults")
	defaultsSection.Key("message").SetValue(s.Defaults.Message)
	defaultsSection.Key("interval_minutes").SetValue(fmt.Sprintf("%d", s.Defaults.IntervalMinutes))

	logSection := iniFile.Section("log")
	logSection.Key("level").SetValue(s.Log.Level)

	if err := iniFile.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save breaktray.conf: %w", err)
	}
	return nil
}
