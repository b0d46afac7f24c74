// Package dispatch spawns matched shell commands as detached subprocesses.
package dispatch

import (
	"fmt"
	"os/exec"
)

// Spawner launches a shell command without waiting for it to finish.
type Spawner interface {
	Spawn(command string) error
}

// SpawnError reports a subprocess that could not be launched.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn command %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Shell runs commands through `sh -c` with stdin, stdout, and stderr all
// attached to the null device, fire-and-forget.
type Shell struct{}

func (Shell) Spawn(command string) error {
	cmd := exec.Command("sh", "-c", command)
	// nil stdio means the child inherits /dev/null.
	if err := cmd.Start(); err != nil {
		return &SpawnError{Command: command, Err: err}
	}

	// Reap the child in the background so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
