package psql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Invocation describes one client run.
type Invocation struct {
	Host     string
	Port     int
	Username string
	Database string
	Password string
	SSLMode  string
	AppName  string

	// Command is passed with -c.
	Command string

	// Stdin feeds the command. It may be nil.
	Stdin io.Reader
}

// ProcessError reports a client that could not start or exited non-zero.
type ProcessError struct {
	// ExitCode is -1 when the process did not start or was killed.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason(), msg)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Reason is "exit status N" for a process that ran, "start" otherwise.
func (e *ProcessError) Reason() string {
	if e.ExitCode >= 0 {
		return "exit status " + strconv.Itoa(e.ExitCode)
	}
	return "start"
}

// Runner executes the client binary.
type Runner struct {
	binary string
	env    []string
}

// NewRunner creates a runner for binary, resolved through PATH when it has
// no separator. The empty string means "psql".
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "psql"
	}
	return &Runner{binary: binary, env: os.Environ()}
}

// Binary returns the configured client binary.
func (r *Runner) Binary() string {
	return r.binary
}

// Args returns the argument list for inv. The password is not part of it.
func Args(inv Invocation) []string {
	args := []string{"-X", "-w", "-v", "ON_ERROR_STOP=1"}
	if inv.Host != "" {
		args = append(args, "-h", inv.Host)
	}
	if inv.Port != 0 {
		args = append(args, "-p", strconv.Itoa(inv.Port))
	}
	if inv.Username != "" {
		args = append(args, "-U", inv.Username)
	}
	if inv.Database != "" {
		args = append(args, "-d", inv.Database)
	}
	return append(args, "-c", inv.Command)
}

// Env returns the environment for inv: the runner's inherited environment
// with the libpq variables for inv replacing any inherited values.
func (r *Runner) Env(inv Invocation) []string {
	overrides := map[string]string{}
	if inv.Password != "" {
		overrides["PGPASSWORD"] = inv.Password
	}
	if inv.SSLMode != "" {
		overrides["PGSSLMODE"] = inv.SSLMode
	}
	if inv.AppName != "" {
		overrides["PGAPPNAME"] = inv.AppName
	}

	env := make([]string, 0, len(r.env)+len(overrides))
	for _, kv := range r.env {
		name, _, _ := strings.Cut(kv, "=")
		if _, replaced := overrides[name]; !replaced {
			env = append(env, kv)
		}
	}
	for name, value := range overrides {
		env = append(env, name+"="+value)
	}
	return env
}

// Run executes inv and waits for the client to exit. Standard output is
// discarded; standard error is captured for the returned *ProcessError.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, r.binary, Args(inv)...)
	cmd.Env = r.Env(inv)
	cmd.Stdin = inv.Stdin

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	pe := &ProcessError{ExitCode: -1, Stderr: stderr.String(), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		pe.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		pe.Err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return pe
}
