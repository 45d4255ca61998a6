//go:build !windows

package signaling

import (
	"golang.org/x/sys/unix"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

const (
	SIGKILL = unix.SIGKILL
	SIGTERM = unix.SIGTERM
	SIGINT  = unix.SIGINT
)

type killSender struct{}

// NewSender returns a Sender backed by kill(2)
func NewSender() Sender {
	return killSender{}
}

func (killSender) Send(pid int, sig Signal) error {
	if pid <= 0 {
		// kill(2) treats 0 and negative pids as process groups
		return errors.NewValidationError("refusing to signal non-positive PID", nil).WithContext("pid", pid)
	}

	err := unix.Kill(pid, sig)
	switch err {
	case nil:
		return nil
	case unix.ESRCH:
		return errors.NewNotFoundError("no such process", err).WithContext("pid", pid)
	case unix.EPERM:
		return errors.NewPermissionError("not permitted to signal process", err).WithContext("pid", pid)
	}
	return errors.NewSignalError("kill failed", err).WithContext("pid", pid)
}

// NewNativeTreeKiller returns nil: Unix has no single call that reaches
// descendants outside the target's process group.
func NewNativeTreeKiller() NativeTreeKiller {
	return nil
}

func lookupSignal(name string) (Signal, bool) {
	sig := unix.SignalNum(name)
	return sig, sig != 0
}
