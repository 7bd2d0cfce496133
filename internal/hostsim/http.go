package hostsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/profilebridge/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, target string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

type submitResult int

const (
	resultAccepted submitResult = iota
	resultRejected
	resultFailed
)

// submitCalls posts calls to /calls/{entry} using a worker pool.
func submitCalls(ctx context.Context, cfg *Config, calls []Call, stats *Stats) {
	log := logger.Get().Named("submit")
	log.Info(ctx, "submitting calls", logger.Int("calls", len(calls)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)

	var submitted, accepted, rejected, failed int64

	callChan := make(chan Call, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for call := range callChan {
				if ctx.Err() != nil {
					return
				}
				res := submitSingleCall(ctx, client, cfg.BaseURL, call)
				atomic.AddInt64(&submitted, 1)
				switch res {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultRejected:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				if cfg.Verbose {
					log.Debug(ctx, "call submitted",
						logger.String("entry", call.Entry),
						logger.String("payload", call.Payload),
						logger.Int("result", int(res)),
					)
				}
			}
		}()
	}

	go func() {
		defer close(callChan)
		for _, call := range calls {
			select {
			case <-ctx.Done():
				return
			case callChan <- call:
			}
		}
	}()

	wg.Wait()

	stats.CallsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.CallsAccepted = int(atomic.LoadInt64(&accepted))
	stats.CallsRejected = int(atomic.LoadInt64(&rejected))
	stats.CallsFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "call submission completed",
		logger.Int("accepted", stats.CallsAccepted),
		logger.Int("rejected", stats.CallsRejected),
		logger.Int("failed", stats.CallsFailed),
	)
}

func submitSingleCall(ctx context.Context, client *HTTPClient, baseURL string, call Call) submitResult {
	resp, err := client.Post(ctx, baseURL+"/calls/"+url.PathEscape(call.Entry), call.Args)
	if err != nil {
		return resultFailed
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resultFailed
	}

	switch {
	case resp.StatusCode == StatusAccepted:
		var ack Ack
		if err := json.Unmarshal(body, &ack); err == nil && ack.Call != call.Entry {
			return resultFailed
		}
		return resultAccepted
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return resultRejected
	default:
		return resultFailed
	}
}
