package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/core-tools/hsu-proctree/pkg/config"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/process"
	"github.com/core-tools/hsu-proctree/pkg/processfile"
	"github.com/core-tools/hsu-proctree/pkg/proctree"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	PID          int           `long:"pid" description:"root process ID of the tree"`
	PIDFile      string        `long:"pid-file" description:"file holding the root process ID"`
	Name         string        `long:"name" description:"name the root process ID was recorded under (see spawntree --name)"`
	Signal       string        `long:"signal" short:"s" description:"signal to send, by name or number (default SIGTERM)"`
	ChildrenOnly bool          `long:"children-only" description:"SIGKILL every child subtree and leave the root running"`
	Show         bool          `long:"show" description:"print the process tree without signalling anything"`
	ConfigFile   string        `long:"config" short:"c" description:"YAML or TOML configuration file"`
	Method       string        `long:"method" description:"child enumeration method: auto, ps, pgrep, procfs, gopsutil"`
	Verbose      bool          `long:"verbose" short:"v" description:"log child listings and the discovered tree"`
	Strict       bool          `long:"strict" description:"fail when a child query fails instead of skipping the subtree"`
	ExitTimeout  time.Duration `long:"exit-timeout" description:"wait up to this long for every signalled process to exit"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s , ", module)
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Printf("Configuration failed: %v\n", err)
		return 1
	}

	logger, syncLogger, err := logging.NewZapLogger(logPrefix("treekill"), cfg.Logging)
	if err != nil {
		fmt.Printf("Logger setup failed: %v\n", err)
		return 1
	}
	defer syncLogger()

	logger.Debugf("opts: %+v", opts)

	rootPID, err := resolvePID(opts, processfile.NewLocator(cfg.PIDFiles, logger))
	if err != nil {
		logger.Errorf("Invalid root process: %v", err)
		return 1
	}

	sig, err := cfg.Signal()
	if err != nil {
		logger.Errorf("Invalid signal: %v", err)
		return 1
	}

	killer, err := proctree.NewKillerForMethod(cfg.Method(), cfg.Options(), logger)
	if err != nil {
		logger.Errorf("Failed to create process tree killer: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.Show:
		tree, err := killer.BuildTree(ctx, rootPID)
		if err != nil {
			logger.Errorf("Failed to build process tree, PID: %d, error: %v", rootPID, err)
			return 1
		}
		fmt.Print(tree.String())

	case opts.ChildrenOnly:
		if err := killer.KillChildrenOnly(ctx, rootPID); err != nil {
			logger.Errorf("Failed to kill child processes, PID: %d, error: %v", rootPID, err)
			return 1
		}

	default:
		if err := killer.KillTree(ctx, rootPID, sig); err != nil {
			logger.Errorf("Failed to kill process tree, PID: %d, error: %v", rootPID, err)
			return 1
		}
	}

	return 0
}

// loadConfig reads the optional config file and applies flag overrides
func loadConfig(opts flagOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.ConfigFile != "" {
		var err error
		cfg, err = config.LoadConfigFromFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	if opts.Method != "" {
		cfg.Enumeration.Method = opts.Method
	}
	if opts.Signal != "" {
		cfg.Kill.Signal = opts.Signal
	}
	if opts.Verbose {
		cfg.Enumeration.Verbose = true
	}
	if opts.Strict {
		cfg.Enumeration.Strict = true
	}
	if opts.ExitTimeout != 0 {
		cfg.Kill.ExitTimeout = opts.ExitTimeout
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePID(opts flagOptions, locator *processfile.Locator) (int, error) {
	sources := 0
	for _, set := range []bool{opts.PID != 0, opts.PIDFile != "", opts.Name != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return 0, errors.NewValidationError("--pid, --pid-file and --name are mutually exclusive", nil)
	}

	switch {
	case opts.Name != "":
		return locator.ReadPIDFile(opts.Name)
	case opts.PIDFile != "":
		pidFile, err := filepath.Abs(opts.PIDFile)
		if err != nil {
			return 0, errors.NewIOError("failed to resolve PID file path", err).WithContext("pid_file", opts.PIDFile)
		}
		return process.ReadPIDFile(pidFile)
	case opts.PID > 0:
		return opts.PID, nil
	default:
		return 0, errors.NewValidationError("a positive --pid, a --pid-file or a --name is required", nil).WithContext("pid", opts.PID)
	}
}
