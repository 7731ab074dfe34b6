//go:build linux || freebsd

package taskworker

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group and asks the
// kernel to kill it if this worker process dies without cleaning up first
// — the "process teardown guarantee" from the design: a dead worker must
// never leave an orphaned task running.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// killProcessGroup signals the whole group so a command that spawned its
// own children (a shell pipeline, say) cannot leave stragglers behind.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}
