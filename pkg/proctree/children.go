package proctree

import (
	"context"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// KillChildrenOnly SIGKILLs the whole subtree of each direct child of
// rootPID, one child after another, leaving rootPID itself running. Every
// child is attempted; failures are returned together.
func (k *Killer) KillChildrenOnly(ctx context.Context, rootPID int) error {
	tree, err := k.builder.BuildTree(ctx, rootPID)
	if err != nil {
		return err
	}

	children := tree.Children(rootPID)
	if len(children) == 0 {
		k.logger.Debugf("No child processes to kill, PID: %d", rootPID)
		return nil
	}

	errs := errors.NewErrorCollection()
	for _, child := range children {
		if err := k.KillTree(ctx, child, signaling.SIGKILL); err != nil {
			k.logger.Warnf("Failed to kill child process tree, parent PID: %d, child PID: %d, error: %v", rootPID, child, err)
			errs.Add(err)
		}
	}

	k.logger.Infof("Killed child process trees, parent PID: %d, children: %d, failures: %d", rootPID, len(children), len(errs.Errors))

	return errs.ToError()
}
