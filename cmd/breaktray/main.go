// Break Reminder - periodic break notifications from the system tray.
//
// Build for Windows without a console window:
//
//	GOOS=windows go build -ldflags "-H=windowsgui" ./cmd/breaktray
//
// Running with no arguments starts the tray. "breaktray run" runs the
// reminder loops headless for sessions without a notification area.
package main

import (
	"os"

	"github.com/breaktray/breaktray/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
