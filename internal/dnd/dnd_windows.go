//go:build windows

// Package dnd reports whether the OS is currently suppressing notifications
// (Windows Focus Assist). Every failure path reports "not suppressed" so a
// broken probe can never silence reminders.
package dnd

import (
	"golang.org/x/sys/windows/registry"
)

const (
	settingsKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Notifications\Settings`
	toastsValue = "NOC_GLOBAL_SETTING_TOASTS_ENABLED"
)

// Active reports whether Focus Assist (or the global toast switch) is
// suppressing notifications. Best effort: many Windows builds set this
// REG_DWORD to 0 while Focus Assist is on.
func Active() bool {
	key, err := registry.OpenKey(registry.CURRENT_USER, settingsKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer key.Close()

	val, _, err := key.GetIntegerValue(toastsValue)
	if err != nil {
		return false
	}

	// 1 -> toasts enabled, 0 -> disabled
	return val == 0
}
