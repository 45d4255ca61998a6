package processfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/process"
)

const DefaultAppName = "hsu-proctree"

// Config selects where named PID files live
type Config struct {
	// Base directory for PID files. If empty, uses OS-appropriate default
	BaseDirectory string `yaml:"directory,omitempty" toml:"directory"`

	// Service context, affects directory selection
	ServiceContext ServiceContext `yaml:"context,omitempty" toml:"context"`

	// Application subdirectory under the base directory
	AppName string `yaml:"app_name,omitempty" toml:"app_name"`
}

// ServiceContext defines the context in which the tree's root runs
type ServiceContext string

const (
	SystemService  ServiceContext = "system"
	UserService    ServiceContext = "user"
	SessionService ServiceContext = "session"
)

// Locator maps process names to PID files so a tree root can be found by name
type Locator struct {
	config Config
	logger logging.Logger
}

func NewLocator(config Config, logger logging.Logger) *Locator {
	if config.AppName == "" {
		config.AppName = DefaultAppName
	}
	if config.ServiceContext == "" {
		config.ServiceContext = UserService
	}

	return &Locator{
		config: config,
		logger: logging.OrNop(logger),
	}
}

// PIDFilePath returns the PID file path for name
func (l *Locator) PIDFilePath(name string) string {
	return filepath.Join(l.baseDirectory(), l.config.AppName, name+".pid")
}

// WritePIDFile records pid under name, creating the directory if needed
func (l *Locator) WritePIDFile(name string, pid int) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	path := l.PIDFilePath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIOError("failed to create PID file directory", err).WithContext("pid_file", path)
	}

	if err := process.WritePIDFile(path, pid); err != nil {
		l.logger.Errorf("Failed to write PID file, name: %s, PID: %d, path: %s, error: %v", name, pid, path, err)
		return err
	}

	l.logger.Debugf("PID file written, name: %s, PID: %d, path: %s", name, pid, path)
	return nil
}

// ReadPIDFile returns the pid recorded under name
func (l *Locator) ReadPIDFile(name string) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	path := l.PIDFilePath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewNotFoundError("no PID file for name: "+name, err).WithContext("pid_file", path)
		}
		return 0, errors.NewIOError("PID file not accessible", err).WithContext("pid_file", path)
	}

	return process.ReadPIDFile(path)
}

// RemovePIDFile deletes the PID file for name; a missing file is not an error
func (l *Locator) RemovePIDFile(name string) error {
	path := l.PIDFilePath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError("failed to remove PID file", err).WithContext("pid_file", path)
	}
	return nil
}

// ValidateName accepts letters, digits, hyphens, underscores and dots
func ValidateName(name string) error {
	if name == "" {
		return errors.NewValidationError("name cannot be empty", nil)
	}
	if len(name) > 64 {
		return errors.NewValidationError("name cannot exceed 64 characters", nil)
	}
	if strings.HasPrefix(name, ".") {
		return errors.NewValidationError("name cannot start with a dot: "+name, nil)
	}
	for _, char := range name {
		if !isValidNameChar(char) {
			return errors.NewValidationError("name contains invalid characters: "+name, nil)
		}
	}
	return nil
}

func ValidateServiceContext(context ServiceContext) error {
	switch context {
	case "", SystemService, UserService, SessionService:
		return nil
	default:
		return errors.NewValidationError(
			fmt.Sprintf("unsupported service context: %s", context),
			nil,
		).WithContext("supported_contexts", "system, user, session")
	}
}

func isValidNameChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == '-' || char == '_' || char == '.'
}

func (l *Locator) baseDirectory() string {
	if l.config.BaseDirectory != "" {
		return l.config.BaseDirectory
	}

	switch l.config.ServiceContext {
	case SystemService:
		return systemDirectory()
	case SessionService:
		return sessionDirectory()
	default:
		return userDirectory()
	}
}

func systemDirectory() string {
	switch runtime.GOOS {
	case "windows":
		if programData := os.Getenv("PROGRAMDATA"); programData != "" {
			return programData
		}
		return "C:\\ProgramData"
	case "darwin":
		return "/var/run"
	default:
		if _, err := os.Stat("/run"); err == nil {
			return "/run"
		}
		return "/var/run"
	}
}

func userDirectory() string {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return localAppData
		}
		return os.TempDir()
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return os.TempDir()
		}
		return filepath.Join(homeDir, "Library", "Application Support")
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return runtimeDir
		}
		return os.TempDir()
	}
}

func sessionDirectory() string {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return os.TempDir()
	}

	// systemd per-login runtime directory
	sessionDir := fmt.Sprintf("/run/user/%d", os.Getuid())
	if _, err := os.Stat(sessionDir); err == nil {
		return sessionDir
	}
	return os.TempDir()
}
