package proctree

import (
	"context"

	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// The Async forms run the operation on a new goroutine and report through
// callback. An unsupported platform is returned synchronously and the
// callback is never invoked.

func (b *Builder) BuildTreeAsync(ctx context.Context, rootPID int, callback func(*Tree, error)) error {
	if err := b.checkSupported(); err != nil {
		return err
	}
	go func() {
		callback(b.BuildTree(ctx, rootPID))
	}()
	return nil
}

func (k *Killer) KillTreeAsync(ctx context.Context, rootPID int, sig signaling.Signal, callback func(error)) error {
	if err := k.checkSupported(); err != nil {
		return err
	}
	go func() {
		callback(k.KillTree(ctx, rootPID, sig))
	}()
	return nil
}

func (k *Killer) KillChildrenOnlyAsync(ctx context.Context, rootPID int, callback func(error)) error {
	if err := k.builder.checkSupported(); err != nil {
		return err
	}
	go func() {
		callback(k.KillChildrenOnly(ctx, rootPID))
	}()
	return nil
}
