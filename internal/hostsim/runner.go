// Package hostsim drives a running bridge the way a host runtime would: it
// connects to the host socket, posts generated calls to every entry point
// and checks that the expected events come back.
package hostsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/profilebridge/pkg/logger"
)

// ErrVerification is returned by Run when deliveries do not match.
var ErrVerification = errors.New("delivery verification failed")

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes a complete simulation and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("hostsim")

	log.Info(ctx, "starting host simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("calls", cfg.NumCalls),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Strings("excluded", cfg.Excluded),
		logger.Bool("verbose", cfg.Verbose))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	listener, err := Listen(ctx, cfg)
	if err != nil {
		return stats, err
	}
	defer func() { _ = listener.Close() }()

	calls, err := generateCalls(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("call generation failed: %w", err)
	}

	submitCalls(ctx, cfg, calls, stats)

	settle := cfg.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	log.Info(ctx, "waiting for outbound events", logger.String("settle", settle.String()))
	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	case <-time.After(settle):
	}

	received, stray := listener.Snapshot()
	for _, got := range received {
		stats.Received += len(got)
	}
	stats.Received += len(stray)
	mismatches := verifyDeliveries(ctx, calls, received, stray, stats)

	if cfg.OutputFile != "" {
		if err := saveCallsToFile(ctx, cfg.OutputFile, calls); err != nil {
			log.Warn(ctx, "failed to save calls to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if len(mismatches) > 0 {
		return stats, fmt.Errorf("%w: %d missing, %d unexpected", ErrVerification, stats.Missing, stats.Unexpected)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

func saveCallsToFile(ctx context.Context, filename string, calls []Call) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calls: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write calls: %w", err)
	}
	logger.Get().Info(ctx, "calls saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(stats *Stats) {
	var acceptRate, callsPerSecond float64
	if stats.CallsSubmitted > 0 {
		acceptRate = float64(stats.CallsAccepted) / float64(stats.CallsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		callsPerSecond = float64(stats.CallsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("callsGenerated", stats.CallsGenerated),
		logger.Int("callsSubmitted", stats.CallsSubmitted),
		logger.Int("callsAccepted", stats.CallsAccepted),
		logger.Int("callsRejected", stats.CallsRejected),
		logger.Int("callsFailed", stats.CallsFailed),
		logger.Int("eventsReceived", stats.Received),
		logger.Int("delivered", stats.Delivered),
		logger.Int("filtered", stats.Filtered),
		logger.Int("missing", stats.Missing),
		logger.Int("unexpected", stats.Unexpected),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("callsPerSecond", callsPerSecond))
}
