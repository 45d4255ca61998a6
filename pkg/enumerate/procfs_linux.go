//go:build linux

package enumerate

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// ProcfsEnumerator reads /proc/<pid>/task/<tid>/children. A child is listed
// under the thread that forked it, so every task of pid is read.
type ProcfsEnumerator struct {
	root string
}

func NewProcfsEnumerator() (Enumerator, error) {
	enumerator, err := newProcfsEnumerator("/proc")
	if err != nil {
		return nil, err
	}
	return enumerator, nil
}

func newProcfsEnumerator(root string) (*ProcfsEnumerator, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, errors.NewUnsupportedPlatformError("procfs is not mounted", err).WithContext("root", root)
	}
	return &ProcfsEnumerator{root: root}, nil
}

func (e *ProcfsEnumerator) ListChildren(ctx context.Context, pid int) ([]int, error) {
	taskDir := filepath.Join(e.root, strconv.Itoa(pid), "task")
	tasks, err := os.ReadDir(taskDir)
	if err != nil {
		if os.IsNotExist(err) {
			// process already exited
			return nil, nil
		}
		return nil, errors.NewEnumerationError("failed to read task directory", err).WithContext("pid", pid)
	}

	var children []int
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelledError("enumeration cancelled", err).WithContext("pid", pid)
		}

		data, err := os.ReadFile(filepath.Join(taskDir, task.Name(), "children"))
		if err != nil {
			if os.IsNotExist(err) {
				// thread exited between ReadDir and ReadFile
				continue
			}
			return nil, errors.NewEnumerationError("failed to read children file", err).
				WithContext("pid", pid).
				WithContext("task", task.Name())
		}

		pids, err := ParseChildren(data)
		if err != nil {
			return nil, err
		}
		children = append(children, pids...)
	}
	return children, nil
}
