package proctree

import (
	"context"

	"github.com/core-tools/hsu-proctree/pkg/enumerate"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/processstate"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// Killer terminates process trees
type Killer struct {
	builder *Builder
	sender  signaling.Sender
	native  signaling.NativeTreeKiller
	options Options
	logger  logging.Logger
}

// NewKiller wires the collaborators. native may be nil; when set, KillTree
// delegates to it instead of building a tree.
func NewKiller(
	enumerator enumerate.Enumerator,
	sender signaling.Sender,
	native signaling.NativeTreeKiller,
	options Options,
	logger logging.Logger,
) *Killer {
	logger = logging.OrNop(logger)
	return &Killer{
		builder: NewBuilder(enumerator, options, logger),
		sender:  sender,
		native:  native,
		options: options,
		logger:  logger,
	}
}

func (k *Killer) Builder() *Builder {
	return k.builder
}

func (k *Killer) BuildTree(ctx context.Context, rootPID int) (*Tree, error) {
	return k.builder.BuildTree(ctx, rootPID)
}

// KillTree sends sig to rootPID and all its descendants, each at most once.
// Processes that exit before being signalled are ignored; any other delivery
// failure aborts the remaining deliveries.
func (k *Killer) KillTree(ctx context.Context, rootPID int, sig signaling.Signal) error {
	if err := k.checkSupported(); err != nil {
		return err
	}
	if rootPID <= 0 {
		return errors.NewValidationError("root PID must be positive", nil).WithContext("root_pid", rootPID)
	}

	if k.native != nil {
		return k.killNative(ctx, rootPID)
	}

	tree, err := k.builder.BuildTree(ctx, rootPID)
	if err != nil {
		return err
	}

	signalled, err := k.killAll(tree, sig)
	if err != nil {
		return err
	}

	k.logger.Infof("Signalled process tree, root PID: %d, signal: %v, processes: %d", rootPID, sig, len(signalled))

	return k.verifyExit(ctx, rootPID, signalled)
}

// killAll returns the pids the signal was delivered to
func (k *Killer) killAll(tree *Tree, sig signaling.Signal) ([]int, error) {
	killed := make(map[int]bool, tree.Len())
	signalled := make([]int, 0, tree.Len())

	kill := func(pid int) error {
		if killed[pid] {
			return nil
		}
		killed[pid] = true

		err := k.sender.Send(pid, sig)
		if err == nil {
			signalled = append(signalled, pid)
			return nil
		}
		if errors.IsNotFoundError(err) {
			k.logger.Debugf("Process already exited, PID: %d", pid)
			return nil
		}
		k.logger.Errorf("Failed to signal process, PID: %d, signal: %v, error: %v", pid, sig, err)
		return errors.NewSignalError("failed to signal process", err).
			WithContext("pid", pid).
			WithContext("signal", sig.String())
	}

	for _, pid := range tree.Keys() {
		for _, child := range tree.Children(pid) {
			if err := kill(child); err != nil {
				return nil, err
			}
		}
		if err := kill(pid); err != nil {
			return nil, err
		}
	}

	return signalled, nil
}

func (k *Killer) killNative(ctx context.Context, rootPID int) error {
	k.logger.Debugf("Killing process tree natively, root PID: %d", rootPID)

	if err := k.native.KillTree(ctx, rootPID); err != nil {
		if errors.IsNotFoundError(err) {
			k.logger.Debugf("Process already exited, PID: %d", rootPID)
			return nil
		}
		return err
	}

	k.logger.Infof("Killed process tree natively, root PID: %d", rootPID)

	return k.verifyExit(ctx, rootPID, []int{rootPID})
}

func (k *Killer) verifyExit(ctx context.Context, rootPID int, pids []int) error {
	if k.options.ExitTimeout <= 0 || len(pids) == 0 {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, k.options.ExitTimeout)
	defer cancel()

	alive := processstate.WaitForExit(waitCtx, pids, k.options.PollInterval)
	if len(alive) > 0 {
		k.logger.Warnf("Processes still running after %v, root PID: %d, PIDs: %v", k.options.ExitTimeout, rootPID, alive)
		return errors.NewTimeoutError("processes did not exit after signal", nil).
			WithContext("root_pid", rootPID).
			WithContext("pids", alive)
	}
	return nil
}

func (k *Killer) checkSupported() error {
	if k.native != nil {
		return nil
	}
	return k.builder.checkSupported()
}
