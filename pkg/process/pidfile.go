package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/core-tools/hsu-proctree/pkg/errors"
)

// ReadPIDFile reads the root pid of a tree from a PID file
func ReadPIDFile(pidFile string) (int, error) {
	if err := ValidatePIDFile(pidFile); err != nil {
		return 0, err
	}

	pidBytes, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, errors.NewIOError("failed to read PID file", err).WithContext("pid_file", pidFile)
	}

	// Trim whitespace/newlines
	pidStr := strings.TrimSpace(string(pidBytes))
	if pidStr == "" {
		return 0, errors.NewValidationError("PID file is empty", nil).WithContext("pid_file", pidFile)
	}

	pid, err := ValidatePID(pidStr)
	if err != nil {
		return 0, errors.NewValidationError("invalid PID in file", err).WithContext("pid_file", pidFile).WithContext("pid_content", pidStr)
	}

	return pid, nil
}

// WritePIDFile writes pid followed by a newline
func WritePIDFile(pidFile string, pid int) error {
	if err := ValidatePIDFile(pidFile); err != nil {
		return err
	}
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return errors.NewIOError("failed to write PID file", err).WithContext("pid_file", pidFile)
	}
	return nil
}

// ValidatePIDFile checks that the path is absolute and its directory exists
func ValidatePIDFile(pidFile string) error {
	if pidFile == "" {
		return errors.NewValidationError("PID file path cannot be empty", nil)
	}

	if !filepath.IsAbs(pidFile) {
		return errors.NewValidationError("PID file path must be absolute", nil).WithContext("pid_file", pidFile)
	}

	dir := filepath.Dir(pidFile)
	if info, err := os.Stat(dir); err != nil {
		return errors.NewIOError("PID file directory not accessible: "+dir, err)
	} else if !info.IsDir() {
		return errors.NewValidationError("PID file parent is not a directory: "+dir, nil)
	}

	return nil
}

// ValidatePID parses a positive PID
func ValidatePID(pidStr string) (int, error) {
	if pidStr == "" {
		return 0, errors.NewValidationError("PID cannot be empty", nil)
	}

	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, errors.NewValidationError("invalid PID format: "+pidStr, err)
	}

	if pid <= 0 {
		return 0, errors.NewValidationError("PID must be positive: "+pidStr, nil)
	}

	return pid, nil
}
