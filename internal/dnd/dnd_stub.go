//go:build !windows

package dnd

// Active always reports false on platforms without a Focus Assist signal.
func Active() bool {
	return false
}
