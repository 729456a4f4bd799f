//go:build windows

package client

import "os"

// RequestShutdown asks the daemon at pid to shut down. Windows has no
// POSIX-style SIGTERM, so this falls back to a hard kill.
func RequestShutdown(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
