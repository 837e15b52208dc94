package entrygate

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Handoff replaces the current process image with argv, inheriting the
// environment and open file descriptors. It returns only on failure; on
// success the calling program ceases to exist, which makes the payload
// command PID-transparent to the container runtime. Process supervision and
// signal reaping stay with whatever launched the container.
func Handoff(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("handoff: no command given")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("handoff: look up %s: %w", argv[0], err)
	}
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("handoff: exec %s: %w", path, err)
	}
	return nil
}
