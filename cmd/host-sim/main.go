package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/profilebridge/internal/hostsim"
)

// Default configuration constants.
const (
	defaultNumCalls = 1000
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numCalls   = flag.Int("calls", defaultNumCalls, "Number of calls to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", hostsim.DefaultSettle, "Time to wait for outbound events after submitting")
		exclude    = flag.String("exclude", "facebook", "Comma separated providers the service excludes")
		outputFile = flag.String("output", "", "Output file for generated calls")
		logFile    = flag.String("log", "", "Log file for run output (default: hostsim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		hostsim.ShowHelp()
		return
	}

	closeLog, err := hostsim.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)

	var excluded []string
	for _, p := range strings.Split(*exclude, ",") {
		if p = strings.TrimSpace(p); p != "" {
			excluded = append(excluded, p)
		}
	}

	cfg := &hostsim.Config{
		BaseURL:    strings.TrimRight(*baseURL, "/"),
		NumCalls:   *numCalls,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		Excluded:   excluded,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	_, runErr := hostsim.Run(ctx, cfg)
	cancel()
	_ = closeLog()
	if runErr != nil {
		_, _ = os.Stderr.WriteString("Simulation failed: " + runErr.Error() + "\n")
		os.Exit(1)
	}
}
