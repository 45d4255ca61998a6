package enumerate

import (
	"context"
	stderrors "errors"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// GopsutilEnumerator asks gopsutil for children, which picks the native
// facility per OS
type GopsutilEnumerator struct{}

func NewGopsutilEnumerator() *GopsutilEnumerator {
	return &GopsutilEnumerator{}
}

func (e *GopsutilEnumerator) ListChildren(ctx context.Context, pid int) ([]int, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if stderrors.Is(err, process.ErrorProcessNotRunning) {
			return nil, nil
		}
		return nil, errors.NewEnumerationError("failed to open process", err).WithContext("pid", pid)
	}

	children, err := proc.ChildrenWithContext(ctx)
	if err != nil {
		if stderrors.Is(err, process.ErrorNoChildren) {
			return nil, nil
		}
		return nil, errors.NewEnumerationError("failed to list child processes", err).WithContext("pid", pid)
	}

	pids := make([]int, 0, len(children))
	for _, child := range children {
		pids = append(pids, int(child.Pid))
	}
	return pids, nil
}
