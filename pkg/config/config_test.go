package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-tools/hsu-proctree/pkg/enumerate"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/processfile"
	"github.com/core-tools/hsu-proctree/pkg/processstate"
	"github.com/core-tools/hsu-proctree/pkg/proctree"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "valid yaml config",
			file: "treekill.yaml",
			content: `
enumeration:
  method: procfs
  strict: true
  verbose: true
  query_timeout: 2s
kill:
  signal: SIGKILL
  exit_timeout: 5s
  poll_interval: 50ms
logging:
  level: debug
  format: json
  output: stdout
pid_files:
  directory: /var/lib/trees
  context: system
`,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, enumerate.MethodProcfs, config.Method())
				assert.Equal(t, proctree.Options{
					Verbose:           true,
					StrictEnumeration: true,
					QueryTimeout:      2 * time.Second,
					ExitTimeout:       5 * time.Second,
					PollInterval:      50 * time.Millisecond,
				}, config.Options())
				assert.Equal(t, "SIGKILL", config.Kill.Signal)
				assert.Equal(t, "debug", config.Logging.Level)
				assert.Equal(t, "json", config.Logging.Format)
				assert.Equal(t, "stdout", config.Logging.Output)
				assert.Equal(t, "/var/lib/trees", config.PIDFiles.BaseDirectory)
				assert.Equal(t, processfile.SystemService, config.PIDFiles.ServiceContext)
			},
		},
		{
			name: "valid toml config",
			file: "treekill.toml",
			content: `
[enumeration]
method = "ps"
query_timeout = "1s"

[kill]
signal = "9"
exit_timeout = "3s"

[logging]
level = "warn"
`,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, enumerate.MethodPs, config.Method())
				assert.Equal(t, time.Second, config.Enumeration.QueryTimeout)
				assert.Equal(t, 3*time.Second, config.Kill.ExitTimeout)
				assert.Equal(t, processstate.DefaultPollInterval, config.Kill.PollInterval)
				assert.Equal(t, "warn", config.Logging.Level)
				assert.Equal(t, "console", config.Logging.Format)
			},
		},
		{
			name:    "empty file gets defaults",
			file:    "empty.yml",
			content: "",
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, DefaultConfig(), config)
			},
		},
		{
			name:        "invalid yaml",
			file:        "broken.yaml",
			content:     "enumeration: [unclosed",
			expectError: true,
		},
		{
			name:        "invalid toml",
			file:        "broken.toml",
			content:     "[enumeration\nmethod =",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfigFromFile(writeConfig(t, tt.file, tt.content))

			if tt.expectError {
				assert.True(t, errors.IsValidationError(err))
				assert.Nil(t, config)
				return
			}

			require.NoError(t, err)
			require.NoError(t, ValidateConfig(config))
			tt.validate(t, config)
		})
	}
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.IsIOError(err))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "auto", config.Enumeration.Method)
	assert.Equal(t, DefaultSignal, config.Kill.Signal)
	assert.Equal(t, processstate.DefaultPollInterval, config.Kill.PollInterval)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.Equal(t, "stderr", config.Logging.Output)
	assert.NoError(t, ValidateConfig(config))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Enumeration.Method = "wmic" }},
		{"negative query timeout", func(c *Config) { c.Enumeration.QueryTimeout = -time.Second }},
		{"unknown signal", func(c *Config) { c.Kill.Signal = "SIGNOPE" }},
		{"negative exit timeout", func(c *Config) { c.Kill.ExitTimeout = -time.Second }},
		{"negative poll interval", func(c *Config) { c.Kill.PollInterval = -time.Millisecond }},
		{"invalid level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"invalid format", func(c *Config) { c.Logging.Format = "xml" }},
		{"empty output", func(c *Config) { c.Logging.Output = "" }},
		{"unknown pid file context", func(c *Config) { c.PIDFiles.ServiceContext = "daemon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.True(t, errors.IsValidationError(ValidateConfig(config)))
		})
	}

	assert.True(t, errors.IsValidationError(ValidateConfig(nil)))
}

func TestConfig_Signal(t *testing.T) {
	config := DefaultConfig()

	sig, err := config.Signal()
	require.NoError(t, err)
	assert.Equal(t, "terminated", sig.String())
}
