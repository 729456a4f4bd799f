//go:build windows

package client

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup starts cmd in its own process group on Windows.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
