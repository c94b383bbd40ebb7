package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/breaktray/breaktray/internal/config"
	"github.com/breaktray/breaktray/internal/dnd"
	"github.com/breaktray/breaktray/internal/events"
	"github.com/breaktray/breaktray/internal/logging"
	"github.com/breaktray/breaktray/internal/notify"
	"github.com/breaktray/breaktray/internal/reminder"
)

// App bundles the wired-up core: settings, event bus, dispatcher, registry.
type App struct {
	Settings   *config.Settings
	Bus        *events.Bus
	Dispatcher *notify.Dispatcher
	Registry   *reminder.Registry
	Logger     *logging.Logger
}

// buildApp loads settings, applies flag overrides, wires the dispatcher and
// registry and seeds any --reminder flags.
func buildApp(cmd *cobra.Command, mode string) (*App, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	appLogger := logging.NewLogger(mode)
	if verbose || debug {
		logging.SetGlobalLevel(-1)
	} else {
		logging.SetGlobalLevel(logging.ParseLevel(settings.Log.Level))
	}

	// Flags override the settings file only when given explicitly.
	if cmd.Flags().Changed("muted") {
		settings.Notifications.Muted = mutedFlag
	}
	if cmd.Flags().Changed("follow-focus-assist") {
		settings.Notifications.FollowFocusAssist = followDNDFlag
	}

	bus := events.NewBus(0)
	dispatcher := notify.NewDispatcher(notify.Config{
		Muted:             settings.Notifications.Muted,
		FollowFocusAssist: settings.Notifications.FollowFocusAssist,
	}, dnd.Active, appLogger, bus)

	registry := reminder.NewRegistry(dispatcher.ShowToast, appLogger, bus)

	for _, seed := range seedReminders {
		message, minutes, err := parseSeed(seed)
		if err != nil {
			registry.Shutdown()
			bus.Close()
			return nil, err
		}
		registry.Add(message, minutes)
	}

	return &App{
		Settings:   settings,
		Bus:        bus,
		Dispatcher: dispatcher,
		Registry:   registry,
		Logger:     appLogger,
	}, nil
}

// Close terminates all reminders and shuts down the bus.
func (a *App) Close() {
	a.Registry.Shutdown()
	a.Bus.Close()
}

// parseSeed parses a --reminder value of the form "message@minutes".
// The message must be non-empty and minutes must be in 1..MaxIntervalMinutes;
// malformed input is rejected here so the core never sees it.
func parseSeed(s string) (string, int, error) {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return "", 0, fmt.Errorf("invalid --reminder %q: expected \"message@minutes\"", s)
	}

	message := strings.TrimSpace(s[:at])
	if message == "" {
		return "", 0, fmt.Errorf("invalid --reminder %q: message must not be empty", s)
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(s[at+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid --reminder %q: minutes must be an integer", s)
	}
	if minutes < 1 || minutes > config.MaxIntervalMinutes {
		return "", 0, fmt.Errorf("invalid --reminder %q: minutes must be between 1 and %d", s, config.MaxIntervalMinutes)
	}

	return message, minutes, nil
}
