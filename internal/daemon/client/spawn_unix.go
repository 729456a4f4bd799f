//go:build unix

package client

import (
	"os/exec"
	"syscall"
)

// detachProcessGroup detaches cmd from the parent's process group so
// the daemon survives the spawning client exiting.
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
