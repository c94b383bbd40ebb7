package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/breaktray/breaktray/internal/events"
)

// newRunCmd creates the headless run command: reminders fire in the
// foreground until SIGINT/SIGTERM, with no tray. Useful for sessions
// without a notification area.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run reminders headless (no tray) until interrupted",
		Long: `Run the reminder loops in the foreground without a system tray.

Reminders come from repeatable --reminder flags. The process runs until
SIGINT or SIGTERM, then terminates all reminders and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd, "cli")
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Registry.Len() == 0 {
				app.Registry.Add(app.Settings.Defaults.Message, app.Settings.Defaults.IntervalMinutes)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for _, snap := range app.Registry.List() {
				app.Logger.Info().
					Str("id", snap.ID).
					Str("message", snap.Message).
					Int("interval_minutes", snap.IntervalMinutes).
					Msg("Reminder active")
			}

			// Mirror bus traffic into the log so headless runs are observable.
			ch := app.Bus.SubscribeAll()
			go func() {
				for ev := range ch {
					re, ok := ev.(*events.ReminderEvent)
					if !ok {
						continue
					}
					switch re.Type() {
					case events.EventReminderFired:
						app.Logger.Info().Str("id", re.ID).Str("message", re.Message).Msg("Reminder fired")
					case events.EventReminderSkipped:
						app.Logger.Debug().Str("id", re.ID).Str("reason", string(re.Reason)).Msg("Reminder skipped")
					}
				}
			}()

			<-ctx.Done()
			app.Logger.Info().Msg("Shutting down")
			return nil
		},
	}
}
