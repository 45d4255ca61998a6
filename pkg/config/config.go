package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/core-tools/hsu-proctree/pkg/enumerate"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/processfile"
	"github.com/core-tools/hsu-proctree/pkg/processstate"
	"github.com/core-tools/hsu-proctree/pkg/proctree"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// Config represents the top-level configuration file structure
type Config struct {
	Enumeration EnumerationConfig  `yaml:"enumeration" toml:"enumeration"`
	Kill        KillConfig         `yaml:"kill" toml:"kill"`
	Logging     logging.ZapConfig  `yaml:"logging" toml:"logging"`
	PIDFiles    processfile.Config `yaml:"pid_files" toml:"pid_files"`
}

// EnumerationConfig controls how child processes are discovered
type EnumerationConfig struct {
	Method       string        `yaml:"method,omitempty" toml:"method"`
	Strict       bool          `yaml:"strict,omitempty" toml:"strict"`
	Verbose      bool          `yaml:"verbose,omitempty" toml:"verbose"`
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty" toml:"query_timeout"`
}

// KillConfig controls signal delivery and exit verification
type KillConfig struct {
	Signal       string        `yaml:"signal,omitempty" toml:"signal"`
	ExitTimeout  time.Duration `yaml:"exit_timeout,omitempty" toml:"exit_timeout"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty" toml:"poll_interval"`
}

const DefaultSignal = "SIGTERM"

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *Config {
	config := &Config{}
	setConfigDefaults(config)
	return config
}

// LoadConfigFromFile loads configuration from a YAML file, or TOML when the
// file has a .toml extension
func LoadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, errors.NewValidationError("failed to parse TOML configuration", err).WithContext("filename", filename)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
		}
	}

	setConfigDefaults(&config)

	return &config, nil
}

// ValidateConfig validates the entire configuration structure
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	if err := validateEnumerationConfig(&config.Enumeration); err != nil {
		return errors.NewValidationError("invalid enumeration configuration", err)
	}

	if err := validateKillConfig(&config.Kill); err != nil {
		return errors.NewValidationError("invalid kill configuration", err)
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return errors.NewValidationError("invalid logging configuration", err)
	}

	if err := processfile.ValidateServiceContext(config.PIDFiles.ServiceContext); err != nil {
		return errors.NewValidationError("invalid PID file configuration", err)
	}

	return nil
}

// Options converts the configuration into tree-kill options
func (c *Config) Options() proctree.Options {
	return proctree.Options{
		Verbose:           c.Enumeration.Verbose,
		StrictEnumeration: c.Enumeration.Strict,
		QueryTimeout:      c.Enumeration.QueryTimeout,
		ExitTimeout:       c.Kill.ExitTimeout,
		PollInterval:      c.Kill.PollInterval,
	}
}

func (c *Config) Method() enumerate.Method {
	return enumerate.Method(c.Enumeration.Method)
}

func (c *Config) Signal() (signaling.Signal, error) {
	return signaling.ParseSignal(c.Kill.Signal)
}

func setConfigDefaults(config *Config) {
	if config.Enumeration.Method == "" {
		config.Enumeration.Method = string(enumerate.MethodAuto)
	}

	if config.Kill.Signal == "" {
		config.Kill.Signal = DefaultSignal
	}
	if config.Kill.PollInterval == 0 {
		config.Kill.PollInterval = processstate.DefaultPollInterval
	}

	defaults := logging.DefaultZapConfig()
	if config.Logging.Level == "" {
		config.Logging.Level = defaults.Level
	}
	if config.Logging.Format == "" {
		config.Logging.Format = defaults.Format
	}
	if config.Logging.Output == "" {
		config.Logging.Output = defaults.Output
	}
}

// Validation functions

func validateEnumerationConfig(config *EnumerationConfig) error {
	valid := false
	for _, method := range enumerate.Methods {
		if enumerate.Method(config.Method) == method {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewValidationError(
			fmt.Sprintf("unsupported enumeration method: %s", config.Method),
			nil,
		).WithContext("supported_methods", methodNames())
	}

	if config.QueryTimeout < 0 {
		return errors.NewValidationError("query timeout cannot be negative", nil)
	}

	return nil
}

func validateKillConfig(config *KillConfig) error {
	if _, err := signaling.ParseSignal(config.Signal); err != nil {
		return err
	}
	if config.ExitTimeout < 0 {
		return errors.NewValidationError("exit timeout cannot be negative", nil)
	}
	if config.PollInterval < 0 {
		return errors.NewValidationError("poll interval cannot be negative", nil)
	}
	return nil
}

func validateLoggingConfig(config *logging.ZapConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}

	switch config.Format {
	case "json", "console":
	default:
		return errors.NewValidationError(
			fmt.Sprintf("invalid log format: %s", config.Format),
			nil,
		).WithContext("valid_formats", "json, console")
	}

	if config.Output == "" {
		return errors.NewValidationError("log output cannot be empty", nil)
	}

	return nil
}

func methodNames() string {
	names := make([]string, len(enumerate.Methods))
	for i, method := range enumerate.Methods {
		names[i] = string(method)
	}
	return strings.Join(names, ", ")
}
