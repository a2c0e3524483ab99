package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Output is what a successful command left behind.
type Output struct {
	Stdout string
	// Diagnostics holds anything the tool printed to stderr.
	Diagnostics string
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner runs commands with os/exec. There is no timeout: a hung
// compiler hangs the build.
type ExecRunner struct {
	// Echo receives each command line before it runs when non-nil.
	Echo io.Writer

	mu sync.Mutex
}

// Run implements Runner. On failure the error carries the tool's stderr
// verbatim.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Output, error) {
	if r.Echo != nil {
		r.mu.Lock()
		_, printErr := fmt.Fprintln(r.Echo, c.String())
		r.mu.Unlock()
		if printErr != nil {
			return Output{}, fmt.Errorf("failed to print command: %w", printErr)
		}
	}
	// #nosec G204 -- tool names come from the build configuration
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			return Output{}, fmt.Errorf("%s: %w", c.Name, err)
		}
		return Output{}, fmt.Errorf("%s: %w\n%s", c.Name, err, msg)
	}
	return Output{
		Stdout:      stdout.String(),
		Diagnostics: strings.TrimSpace(stderr.String()),
	}, nil
}
