//go:build !linux

package enumerate

import (
	"runtime"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

func NewProcfsEnumerator() (Enumerator, error) {
	return nil, errors.NewUnsupportedPlatformError("procfs enumeration requires linux", nil).
		WithContext("goos", runtime.GOOS)
}
