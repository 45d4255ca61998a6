// Package enumerate lists the direct children of a process using whatever
// facility the platform offers.
package enumerate

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// Enumerator lists direct children of pid. A pid with no children, including
// one that no longer exists, yields an empty slice and a nil error.
type Enumerator interface {
	ListChildren(ctx context.Context, pid int) ([]int, error)
}

// Describer produces a human-readable listing of pid's children for verbose output
type Describer interface {
	Describe(ctx context.Context, pid int) (string, error)
}

type Method string

const (
	MethodAuto     Method = "auto"
	MethodPs       Method = "ps"
	MethodPgrep    Method = "pgrep"
	MethodProcfs   Method = "procfs"
	MethodGopsutil Method = "gopsutil"
)

// Methods lists every accepted method name
var Methods = []Method{MethodAuto, MethodPs, MethodPgrep, MethodProcfs, MethodGopsutil}

// New returns the enumerator for method; MethodAuto and "" pick the platform default
func New(method Method) (Enumerator, error) {
	switch method {
	case MethodAuto, "":
		return Default()
	case MethodPs:
		return NewPsEnumerator(), nil
	case MethodPgrep:
		return NewPgrepEnumerator(), nil
	case MethodProcfs:
		return NewProcfsEnumerator()
	case MethodGopsutil:
		return NewGopsutilEnumerator(), nil
	default:
		return nil, errors.NewValidationError("unknown enumeration method: "+string(method), nil).
			WithContext("supported_methods", fmt.Sprint(Methods))
	}
}

// Default returns the enumerator for the running OS
func Default() (Enumerator, error) {
	return ForPlatform(runtime.GOOS)
}

// ForPlatform selects the enumeration tool by GOOS: pgrep on Apple systems,
// ps --ppid on Linux and the BSDs. Platforms without either are unsupported.
func ForPlatform(goos string) (Enumerator, error) {
	switch goos {
	case "darwin", "ios":
		return NewPgrepEnumerator(), nil
	case "windows", "solaris", "illumos", "plan9", "js", "wasip1":
		return nil, errors.NewUnsupportedPlatformError("process tree enumeration is not supported on "+goos, nil).
			WithContext("goos", goos)
	default:
		return NewPsEnumerator(), nil
	}
}

var pidPattern = regexp.MustCompile(`\d+`)

// ParseChildren extracts the numeric tokens of a listing tool's output.
// Empty output means no children; non-empty output without any number is
// malformed.
func ParseChildren(output []byte) ([]int, error) {
	tokens := pidPattern.FindAll(output, -1)
	if len(tokens) == 0 {
		if strings.TrimSpace(string(output)) != "" {
			return nil, errors.NewEnumerationError("no PIDs in listing output", nil).
				WithContext("output", string(output))
		}
		return nil, nil
	}

	pids := make([]int, 0, len(tokens))
	for _, token := range tokens {
		pid, err := strconv.Atoi(string(token))
		if err != nil {
			return nil, errors.NewEnumerationError("invalid PID in listing output", err).
				WithContext("token", string(token))
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
