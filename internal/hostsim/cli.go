package hostsim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/profilebridge/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to both stdout and logFile. An empty
// logFile gets a timestamped name. The returned function closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		logFile = "hostsim_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the host simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Profile Bridge Host Simulator
=============================

Plays the host runtime against a running bridge. Calls every entry point
over HTTP, listens on the host websocket and checks that each call raised
exactly one outbound event, or none when its provider is excluded.

Usage:
  go run cmd/host-sim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -calls int
        Number of calls to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Time to wait for outbound events after submitting (default 2s)
  -exclude string
        Comma separated providers the service excludes (default "facebook")
  -output string
        Output file for generated calls
  -log string
        Log file for run output (default: hostsim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message
`)
}
