// Package cli provides the command-line interface for breaktray.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/breaktray/breaktray/internal/logging"
	"github.com/breaktray/breaktray/internal/tray"
	"github.com/breaktray/breaktray/internal/version"
)

var (
	// Global flags
	cfgFile       string
	verbose       bool
	debug         bool
	mutedFlag     bool
	followDNDFlag bool
	seedReminders []string

	// Global logger, initialized in PersistentPreRun
	logger *logging.Logger
)

// NewRootCmd creates the root command. Running it with no subcommand starts
// the system tray.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "breaktray",
		Short: "Break Reminder - periodic break notifications from your system tray",
		Long: `Break Reminder ` + version.Version + ` - Built: ` + version.BuildTime + `
Periodic break-reminder notifications, managed from a system-tray menu.

Running breaktray with no arguments starts the tray. Reminders can be
seeded at startup with repeatable --reminder flags:

  breaktray --reminder "Stand up and stretch@30" --reminder "Drink water@45"

Sessions without a tray (SSH, CI) can use "breaktray run" for a headless
foreground loop. All reminder state is memory-resident and lost on exit.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd, "tray")
			if err != nil {
				return err
			}
			defer app.Close()

			tray.Run(tray.Options{
				Registry:   app.Registry,
				Dispatcher: app.Dispatcher,
				Defaults:   app.Settings.Defaults,
				Bus:        app.Bus,
				Logger:     app.Logger,
				Version:    version.Version,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().BoolVar(&mutedFlag, "muted", false, "Start with notifications muted")
	rootCmd.PersistentFlags().BoolVar(&followDNDFlag, "follow-focus-assist", false, "Suppress notifications while the OS focus-assist signal is active")
	rootCmd.PersistentFlags().StringArrayVar(&seedReminders, "reminder", nil, `Seed a reminder at startup, format "message@minutes" (repeatable)`)

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newNotifyCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("breaktray %s (built %s)\n", version.Version, version.BuildTime)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
