//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group and makes context
// cancellation kill the whole group. The office suite forks a launcher and
// a worker process; killing only the direct child leaves the worker behind.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; Isolate falls back to killing the process itself.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
