// Package runner invokes the external data generator script and checks that
// its interpreter is recent enough.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner starts the generator script with a given interpreter.
type Runner struct {
	// Interpreter is the executable, e.g. python3 or py.
	Interpreter string
	// InterpreterArgs precede the script path, e.g. ["-3"] for the py launcher.
	InterpreterArgs []string
	// Script is the path of the generator entry point.
	Script string
	// Dir is the working directory; generated files land there.
	Dir string
	// Env is appended to the current environment.
	Env []string
}

// Report is what the script printed.
type Report struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// Failed reports whether the script exited non-zero or wrote to stderr.
func (r *Report) Failed() bool {
	return r.ExitCode != 0 || strings.TrimSpace(r.Stderr) != ""
}

// Run starts the script and blocks until it exits. The returned error is
// only set when the process could not be started; a script that ran and
// failed is described by the Report.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if r.Script == "" {
		return nil, errors.New("generator script is not configured")
	}

	args := append(append([]string{}, r.InterpreterArgs...), r.Script)
	args = append(args, req.Args()...)

	report, err := r.exec(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run generator: %w", err)
	}
	return report, nil
}

func (r *Runner) exec(ctx context.Context, args []string) (*Report, error) {
	if r.Interpreter == "" {
		return nil, errors.New("interpreter is not configured")
	}

	cmd := exec.CommandContext(ctx, r.Interpreter, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	report := &Report{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		report.ExitCode = exitErr.ExitCode()
	default:
		return nil, err
	}
	return report, nil
}
