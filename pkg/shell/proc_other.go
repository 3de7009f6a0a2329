//go:build !unix

package shell

import "os/exec"

// killProcessGroup keeps exec's default cancellation (kill the direct child).
func killProcessGroup(cmd *exec.Cmd) {}
