package proctree

import (
	"context"

	"github.com/core-tools/hsu-proctree/pkg/enumerate"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
)

// Builder discovers every descendant of a root pid
type Builder struct {
	enumerator enumerate.Enumerator
	options    Options
	logger     logging.Logger
}

// NewBuilder returns a builder over enumerator. A nil enumerator means the
// platform cannot enumerate children and every build fails up front.
func NewBuilder(enumerator enumerate.Enumerator, options Options, logger logging.Logger) *Builder {
	return &Builder{
		enumerator: enumerator,
		options:    options,
		logger:     logging.OrNop(logger),
	}
}

type queryResult struct {
	pid      int
	children []int
	err      error
}

// BuildTree queries children of rootPID and, recursively, of every child
// found. Queries run concurrently; the tree is complete once no query is
// pending.
func (b *Builder) BuildTree(ctx context.Context, rootPID int) (*Tree, error) {
	if err := b.checkSupported(); err != nil {
		return nil, err
	}
	if rootPID <= 0 {
		return nil, errors.NewValidationError("root PID must be positive", nil).WithContext("root_pid", rootPID)
	}

	tree := NewTree(rootPID)

	// pending counts in-flight queries per pid; only this goroutine touches
	// tree and pending
	pending := make(map[int]int)
	results := make(chan queryResult)

	dispatch := func(pid int) {
		pending[pid]++
		tree.queries++
		go func() {
			children, err := b.listChildren(ctx, pid)
			results <- queryResult{pid: pid, children: children, err: err}
		}()
	}

	b.logger.Debugf("Building process tree, root PID: %d", rootPID)
	dispatch(rootPID)

	var enumerationErr error
	for len(pending) > 0 {
		result := <-results

		pending[result.pid]--
		if pending[result.pid] == 0 {
			delete(pending, result.pid)
		}

		if result.err != nil {
			if b.options.StrictEnumeration {
				b.logger.Errorf("Failed to list children, PID: %d, error: %v", result.pid, result.err)
				if enumerationErr == nil {
					enumerationErr = result.err
				}
			} else {
				b.logger.Warnf("Failed to list children, treating as childless, PID: %d, error: %v", result.pid, result.err)
			}
			continue
		}

		if enumerationErr != nil {
			// draining: do not grow a tree that is about to be discarded
			continue
		}

		for _, child := range result.children {
			tree.AddChild(result.pid, child)
			dispatch(child)
		}
	}

	if enumerationErr != nil {
		return nil, errors.NewEnumerationError("failed to build process tree", enumerationErr).WithContext("root_pid", rootPID)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelledError("process tree build cancelled", err).WithContext("root_pid", rootPID)
	}

	b.logger.Debugf("Process tree built, root PID: %d, processes: %d, queries: %d", rootPID, tree.Len(), tree.Queries())

	if b.options.Verbose {
		b.describe(ctx, tree)
	}

	return tree, nil
}

func (b *Builder) listChildren(ctx context.Context, pid int) ([]int, error) {
	if b.options.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.options.QueryTimeout)
		defer cancel()
	}
	return b.enumerator.ListChildren(ctx, pid)
}

func (b *Builder) describe(ctx context.Context, tree *Tree) {
	if describer, ok := b.enumerator.(enumerate.Describer); ok {
		listing, err := describer.Describe(ctx, tree.Root)
		if err != nil {
			b.logger.Warnf("Failed to describe children, PID: %d, error: %v", tree.Root, err)
		} else {
			b.logger.Infof("Child processes of PID %d:\n%s", tree.Root, listing)
		}
	}
	b.logger.Infof("Process tree of PID %d:\n%s", tree.Root, tree.String())
}

func (b *Builder) checkSupported() error {
	if b.enumerator == nil {
		return errors.NewUnsupportedPlatformError("no process enumerator available on this platform", nil)
	}
	return nil
}
