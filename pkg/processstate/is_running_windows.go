//go:build windows

package processstate

import (
	"fmt"
	"syscall"
)

// Windows process status constants
const (
	STILL_ACTIVE                      = 259
	WAIT_TIMEOUT                      = 0x00000102
	PROCESS_QUERY_LIMITED_INFORMATION = 0x1000

	// OpenProcess fails with this for a PID that does not exist
	ERROR_INVALID_PARAMETER syscall.Errno = 87
)

// IsProcessRunning reports whether a Windows process has not yet exited
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, fmt.Errorf("invalid PID: %d", pid)
	}

	// Open process handle with minimal rights needed for status check
	handle, err := syscall.OpenProcess(
		PROCESS_QUERY_LIMITED_INFORMATION, // Minimal access rights
		false,                             // Don't inherit handle
		uint32(pid),
	)
	if err != nil {
		if err == ERROR_INVALID_PARAMETER {
			return false, nil
		}
		return false, err
	}
	defer syscall.CloseHandle(handle)

	// Check process exit code
	var exitCode uint32
	err = syscall.GetExitCodeProcess(handle, &exitCode)
	if err != nil {
		return false, err
	}

	// STILL_ACTIVE means process is running
	return exitCode == STILL_ACTIVE, nil
}
