// Package command runs external tools (ffmpeg, yt-dlp, edge-tts) behind a
// small interface so callers can be tested with a fake runner.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	execute "github.com/alexellis/go-execute/v2"
)

const maxStderrTail = 500

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	slog.Debug("executing command", "command", name, "args", args)

	task := execute.ExecTask{
		Command:     name,
		Args:        args,
		StreamStdio: false,
	}
	res, err := task.Execute(ctx)
	out := Result{Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode}
	if err != nil {
		return out, fmt.Errorf("run %s: %w", name, err)
	}
	if res.Cancelled {
		return out, fmt.Errorf("run %s: %w", name, context.Cause(ctx))
	}
	if res.ExitCode != 0 {
		return out, &ExitError{Command: name, ExitCode: res.ExitCode, Stderr: tail(res.Stderr)}
	}
	return out, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderrTail {
		return s
	}
	return "..." + s[len(s)-maxStderrTail:]
}
