package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/process"
	"github.com/core-tools/hsu-proctree/pkg/processfile"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Depth       int    `long:"depth" default:"2" description:"levels of descendants below this process"`
	Breadth     int    `long:"breadth" default:"2" description:"children spawned by every non-leaf process"`
	RunDuration int    `long:"run-duration" description:"Duration in seconds to run before exiting (debug feature)"`
	PIDFile     string `long:"pid-file" description:"write the root process ID to this file"`
	Name        string `long:"name" description:"record the root process ID under this name for treekill --name"`
}

func main() {
	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	var err error
	_, err = parser.ParseArgs(argv)
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	pid := os.Getpid()
	fmt.Printf("Running Spawntree, PID: %d, opts: %+v...\n", pid, opts)

	logger, syncLogger, err := logging.NewZapLogger(fmt.Sprintf("module: spawntree-%d , ", pid), logging.DefaultZapConfig())
	if err != nil {
		fmt.Printf("Logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer syncLogger()

	if opts.PIDFile != "" {
		pidFile, err := filepath.Abs(opts.PIDFile)
		if err == nil {
			err = process.WritePIDFile(pidFile, pid)
		}
		if err != nil {
			logger.Errorf("Failed to write PID file: %v", err)
			os.Exit(1)
		}
	}

	if opts.Name != "" {
		locator := processfile.NewLocator(processfile.Config{}, logger)
		if err := locator.WritePIDFile(opts.Name, pid); err != nil {
			logger.Errorf("Failed to record PID under name: %v", err)
			os.Exit(1)
		}
		defer locator.RemovePIDFile(opts.Name)
		fmt.Printf("Recorded PID under name %q: %s\n", opts.Name, locator.PIDFilePath(opts.Name))
	}

	ctx := context.Background()

	if opts.RunDuration > 0 {
		fmt.Printf("Using RUN DURATION of %d seconds\n", opts.RunDuration)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.RunDuration)*time.Second)
		defer cancel()
	}

	// Enable signal handling
	sig := make(chan os.Signal, 1)
	if runtime.GOOS == "windows" {
		signal.Notify(sig) // Unix signals not implemented on Windows
	} else {
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	}

	children, err := spawnChildren(opts, logger)
	if err != nil {
		logger.Errorf("Failed to spawn children: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Spawntree is ready, PID: %d, children: %d\n", pid, len(children))

	// Wait for a signal or timeout
	select {
	case receivedSignal := <-sig:
		fmt.Printf("Spawntree received signal, PID: %d, signal: %v\n", pid, receivedSignal)
	case <-ctx.Done():
		fmt.Printf("Spawntree timed out, PID: %d\n", pid)
	}

	fmt.Printf("Spawntree stopped, PID: %d\n", pid)
}

func spawnChildren(opts flagOptions, logger logging.Logger) ([]*exec.Cmd, error) {
	if opts.Depth <= 0 || opts.Breadth <= 0 {
		return nil, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return nil, err
	}

	args := []string{
		"--depth", strconv.Itoa(opts.Depth - 1),
		"--breadth", strconv.Itoa(opts.Breadth),
	}
	if opts.RunDuration > 0 {
		args = append(args, "--run-duration", strconv.Itoa(opts.RunDuration))
	}

	children := make([]*exec.Cmd, 0, opts.Breadth)
	for i := 0; i < opts.Breadth; i++ {
		// Not bound to a context: children must outlive this process when
		// it is signalled alone
		cmd, err := process.Spawn(context.Background(), process.SpawnConfig{
			ExecutablePath: executable,
			Args:           args,
		}, logger)
		if err != nil {
			return children, err
		}
		children = append(children, cmd)
	}

	return children, nil
}
