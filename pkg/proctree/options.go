package proctree

import (
	"time"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// Options tunes tree building and termination
type Options struct {
	// Verbose logs the platform's child listing and the rendered tree after each build
	Verbose bool

	// StrictEnumeration fails the build when a child query fails for a reason
	// other than "no children". Otherwise the pid is logged and treated as
	// childless, which may truncate the discovered subtree.
	StrictEnumeration bool

	// QueryTimeout bounds each child query; zero means no bound
	QueryTimeout time.Duration

	// ExitTimeout makes KillTree wait until every signalled pid has exited
	ExitTimeout time.Duration

	// PollInterval is how often exit verification probes pids
	PollInterval time.Duration
}

func ValidateOptions(options Options) error {
	if options.QueryTimeout < 0 {
		return errors.NewValidationError("query timeout cannot be negative", nil)
	}
	if options.ExitTimeout < 0 {
		return errors.NewValidationError("exit timeout cannot be negative", nil)
	}
	if options.PollInterval < 0 {
		return errors.NewValidationError("poll interval cannot be negative", nil)
	}
	return nil
}
