//go:build windows

package ui

import (
	"fmt"
	"os"
	"os/exec"
)

// restartSelf starts a fresh copy of the binary with env appended and exits
// once it is running. Windows has no exec(2), so the old process cannot be
// replaced in place.
func restartSelf(env ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	os.Exit(0)
	return nil
}
