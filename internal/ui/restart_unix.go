//go:build !windows

package ui

import (
	"fmt"
	"os"
	"syscall"
)

// restartSelf re-executes the binary in place with env appended to the
// current environment, so settings that are read once at startup take
// effect. It only returns on failure.
func restartSelf(env ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := syscall.Exec(exe, os.Args, append(os.Environ(), env...)); err != nil {
		return fmt.Errorf("exec %s: %w", exe, err)
	}
	return nil
}
