package process

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
)

// SpawnConfig describes a child process started by a test harness
type SpawnConfig struct {
	ExecutablePath   string        `yaml:"executable_path"`
	Args             []string      `yaml:"args,omitempty"`
	Environment      []string      `yaml:"environment,omitempty"`
	WorkingDirectory string        `yaml:"working_directory,omitempty"`
	WaitDelay        time.Duration `yaml:"wait_delay,omitempty"`
}

// Spawn starts a child with inherited stdout/stderr. The caller owns Wait.
func Spawn(ctx context.Context, config SpawnConfig, logger logging.Logger) (*exec.Cmd, error) {
	logger = logging.OrNop(logger)

	if err := ValidateSpawnConfig(config); err != nil {
		return nil, err
	}

	env := os.Environ()
	env = append(env, config.Environment...)

	cmd := exec.CommandContext(ctx, config.ExecutablePath, config.Args...)
	cmd.Dir = config.WorkingDirectory
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = config.WaitDelay

	logger.Debugf("Spawning process, executable path: '%s', args: %v", config.ExecutablePath, config.Args)

	if err := cmd.Start(); err != nil {
		return nil, errors.NewProcessError("failed to start the process", err).WithContext("executable_path", config.ExecutablePath)
	}

	logger.Infof("Spawned process, PID: %d", cmd.Process.Pid)

	return cmd, nil
}

// ValidateSpawnConfig validates a spawn configuration
func ValidateSpawnConfig(config SpawnConfig) error {
	if config.ExecutablePath == "" {
		return errors.NewValidationError("executable path is required", nil)
	}

	if _, err := exec.LookPath(config.ExecutablePath); err != nil {
		return errors.NewValidationError("executable not found: "+config.ExecutablePath, err)
	}

	if config.WorkingDirectory != "" {
		if info, err := os.Stat(config.WorkingDirectory); err != nil {
			return errors.NewValidationError("working directory not accessible: "+config.WorkingDirectory, err)
		} else if !info.IsDir() {
			return errors.NewValidationError("working directory is not a directory: "+config.WorkingDirectory, nil)
		}
	}

	for _, env := range config.Environment {
		if !strings.Contains(env, "=") {
			return errors.NewValidationError("invalid environment variable format: "+env, nil)
		}
	}

	if config.WaitDelay < 0 {
		return errors.NewValidationError("wait delay cannot be negative", nil)
	}

	return nil
}
