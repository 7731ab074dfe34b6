//go:build !unix

package taskworker

import "os/exec"

// setProcessGroup is a no-op outside POSIX: the process teardown guarantee
// is not available without platform-specific job-object plumbing.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
