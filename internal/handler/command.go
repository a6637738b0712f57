package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, argv []string, env []string) error
}

// CommandOption configures a Command handler.
type CommandOption func(*Command)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) CommandOption {
	return func(c *Command) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithEnv appends KEY=VALUE pairs to the subprocess environment.
func WithEnv(env []string) CommandOption {
	return func(c *Command) {
		c.env = append(c.env, env...)
	}
}

// Command runs an external program as a job handler. Job params are expanded
// into {name} placeholders in the argv and exported as STYLUS_PARAM_NAME
// environment variables.
type Command struct {
	argv []string
	env  []string
	exec Executor
}

// NewCommand constructs a subprocess-backed handler.
func NewCommand(argv []string, opts ...CommandOption) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("command argv required")
	}
	cmd := &Command{
		argv: append([]string{}, argv...),
		exec: commandExecutor{},
	}
	for _, opt := range opts {
		opt(cmd)
	}
	return cmd, nil
}

// Run implements Handler.
func (c *Command) Run(ctx context.Context, params map[string]string) error {
	argv := expandArgs(c.argv, params)
	env := append(append([]string{}, c.env...), paramEnv(params)...)
	return c.exec.Run(ctx, argv, env)
}

func expandArgs(argv []string, params map[string]string) []string {
	expanded := make([]string, len(argv))
	for i, arg := range argv {
		for key, value := range params {
			arg = strings.ReplaceAll(arg, "{"+key+"}", value)
		}
		expanded[i] = arg
	}
	return expanded
}

func paramEnv(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	env := make([]string, 0, len(params))
	for key, value := range params {
		name := "STYLUS_PARAM_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		env = append(env, name+"="+value)
	}
	return env
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, argv []string, env []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if tail := outputTail(output); tail != "" {
			return fmt.Errorf("%s exited with code %d: %s", argv[0], exitErr.ExitCode(), tail)
		}
		return fmt.Errorf("%s exited with code %d", argv[0], exitErr.ExitCode())
	}
	return fmt.Errorf("run %s: %w", argv[0], err)
}

// outputTail keeps the last few lines of combined output so failure messages
// stay readable in the queue document.
func outputTail(output []byte) string {
	const maxLines = 3
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, " / ")
}
