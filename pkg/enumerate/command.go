package enumerate

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// exitNoMatch is what both ps and pgrep return when nothing was selected
const exitNoMatch = 1

// CommandEnumerator runs an external listing tool once per queried pid
type CommandEnumerator struct {
	name         string
	listArgs     func(pid string) []string
	describeArgs func(pid string) []string
}

// NewPsEnumerator lists children with "ps -o pid --no-headers --ppid <pid>"
func NewPsEnumerator() *CommandEnumerator {
	return &CommandEnumerator{
		name: "ps",
		listArgs: func(pid string) []string {
			return []string{"-o", "pid", "--no-headers", "--ppid", pid}
		},
		describeArgs: func(pid string) []string {
			return []string{"--ppid", pid}
		},
	}
}

// NewPgrepEnumerator lists children with "pgrep -P <pid>"
func NewPgrepEnumerator() *CommandEnumerator {
	return &CommandEnumerator{
		name: "pgrep",
		listArgs: func(pid string) []string {
			return []string{"-P", pid}
		},
		describeArgs: func(pid string) []string {
			return []string{"-P", pid, "-l"}
		},
	}
}

func (e *CommandEnumerator) Name() string {
	return e.name
}

// ListChildren treats exit status 1 as "no children". Any other failure,
// such as a missing binary or a crash, is an enumeration error so callers can
// tell a childless process from a broken tool.
func (e *CommandEnumerator) ListChildren(ctx context.Context, pid int) ([]int, error) {
	args := e.listArgs(strconv.Itoa(pid))
	output, err := exec.CommandContext(ctx, e.name, args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == exitNoMatch {
			return nil, nil
		}
		return nil, e.commandError(err, pid, args)
	}

	children, err := ParseChildren(output)
	if err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			domainErr.WithContext("pid", pid).WithContext("command", e.name)
		}
		return nil, err
	}
	return children, nil
}

// Describe returns the raw tool listing, whatever the exit status
func (e *CommandEnumerator) Describe(ctx context.Context, pid int) (string, error) {
	args := e.describeArgs(strconv.Itoa(pid))
	output, err := exec.CommandContext(ctx, e.name, args...).Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return "", e.commandError(err, pid, args)
		}
	}
	return string(output), nil
}

func (e *CommandEnumerator) commandError(err error, pid int, args []string) error {
	domainErr := errors.NewEnumerationError("failed to list child processes", err).
		WithContext("pid", pid).
		WithContext("command", e.name+" "+strings.Join(args, " "))
	if exitErr, ok := err.(*exec.ExitError); ok {
		domainErr.WithContext("exit_code", exitErr.ExitCode()).
			WithContext("stderr", strings.TrimSpace(string(exitErr.Stderr)))
	}
	return domainErr
}
