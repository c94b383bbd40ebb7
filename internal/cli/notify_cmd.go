package cli

import (
	"github.com/spf13/cobra"

	"github.com/breaktray/breaktray/internal/reminder"
)

// newNotifyCmd creates the notify command, which sends a single toast
// through the dispatcher. It respects the mute and focus-assist gates, so
// it doubles as a way to verify the gates from the command line.
func newNotifyCmd() *cobra.Command {
	var (
		title   string
		message string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a one-off test notification through the dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd, "cli")
			if err != nil {
				return err
			}
			defer app.Close()

			app.Dispatcher.ShowToast(title, message)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", reminder.Title, "Notification title")
	cmd.Flags().StringVarP(&message, "message", "m", "This is a test notification", "Notification message")

	return cmd
}
