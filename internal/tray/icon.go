package tray

import (
	_ "embed"
)

// iconData contains the tray icon (64x64 PNG). fyne.io/systray handles PNG
// on every supported platform.
//
//go:embed assets/icon.png
var iconData []byte
