// Package service wires the bus, the host transport and the bridge into one
// runnable unit and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/okian/profilebridge/internal/adapters/host"
	"github.com/okian/profilebridge/internal/adapters/mq/bus"
	"github.com/okian/profilebridge/internal/bridge"
	"github.com/okian/profilebridge/internal/config"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Sentinel errors for the service lifecycle.
var (
	ErrNotStarted = errors.New("service not started")
)

// Transport is a host transport the service owns and closes on Stop.
type Transport interface {
	bridge.Transport
	Close() error
}

// Service owns the bus, the host transport and the bridge.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	bus       bus.Managed
	transport Transport
	hub       *host.Hub
	bridge    *bridge.Bridge

	// Injected dependencies.
	customTransport Transport
	redisClient     host.Publisher
	sink            bridge.DiagnosticSink

	started bool
	cancel  context.CancelFunc
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransport replaces the configured host transport.
func WithTransport(t Transport) Option {
	return func(s *Service) { s.customTransport = t }
}

// WithRedisClient supplies the client used by the redis transport instead
// of dialing redis_addr.
func WithRedisClient(p host.Publisher) Option {
	return func(s *Service) { s.redisClient = p }
}

// WithDiagnosticSink observes degraded host arguments.
func WithDiagnosticSink(sink bridge.DiagnosticSink) Option {
	return func(s *Service) { s.sink = sink }
}

// New constructs a Service from cfg. Nothing runs until Start.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts the components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	excluded, err := s.cfg.Providers()
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "starting profile bridge...",
		logger.String("bus_mode", s.cfg.BusMode),
		logger.String("transport", s.cfg.Transport),
	)

	runCtx, cancel := context.WithCancel(context.Background())

	busOpts := []bus.Option{
		bus.WithLogger(s.logger.Named("bus")),
		bus.WithQueueSize(s.cfg.QueueSize),
		bus.WithWorkerCount(s.cfg.WorkerCount),
	}
	switch s.cfg.BusMode {
	case config.BusAsync:
		b := bus.NewAsync(busOpts...)
		b.Start(runCtx)
		s.bus = b
	default:
		s.bus = bus.NewSync(busOpts...)
	}

	transport, err := s.buildTransport(ctx)
	if err != nil {
		cancel()
		_ = s.bus.Close(ctx)
		return err
	}
	s.transport = transport

	bridgeOpts := []bridge.Option{
		bridge.WithChannel(s.cfg.HostChannel),
		bridge.WithFilter(bridge.ExcludeProviders(excluded...)),
		bridge.WithLogger(s.logger.Named("bridge")),
	}
	if s.sink != nil {
		bridgeOpts = append(bridgeOpts, bridge.WithDiagnosticSink(s.sink))
	}
	br, err := bridge.New(s.bus, s.transport, bridgeOpts...)
	if err != nil {
		cancel()
		_ = s.transport.Close()
		_ = s.bus.Close(ctx)
		return err
	}
	s.bridge = br
	if s.hub != nil {
		s.hub.SetCallHandler(br)
	}

	go metrics.RunSystemSampler(runCtx)
	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "profile bridge started",
		logger.String("channel", s.cfg.HostChannel),
		logger.Strings("excluded_providers", s.cfg.ExcludedProviders),
		logger.Int("entries", len(bridge.Entries())),
	)
	return nil
}

func (s *Service) buildTransport(ctx context.Context) (Transport, error) {
	if s.customTransport != nil {
		return s.customTransport, nil
	}
	switch s.cfg.Transport {
	case config.TransportRedis:
		client := s.redisClient
		if client == nil {
			c, err := host.Connect(ctx, s.cfg.RedisAddr)
			if err != nil {
				return nil, fmt.Errorf("redis transport: %w", err)
			}
			client = c
		}
		return host.NewRedis(client,
			host.WithChannelPrefix(s.cfg.RedisChannelPrefix),
			host.WithLogger(s.logger.Named("redis")),
		), nil
	case config.TransportLog:
		return host.NewLog(host.WithLogger(s.logger.Named("host"))), nil
	default:
		s.hub = host.NewHub(
			host.WithSendBuffer(s.cfg.WSSendBuffer),
			host.WithWriteTimeout(s.cfg.WSWriteTimeout()),
			host.WithLogger(s.logger.Named("websocket")),
		)
		return s.hub, nil
	}
}

// Stop unsubscribes the bridge, drains the bus and closes the transport.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping profile bridge...")

	// Drain queued events while the bridge is still subscribed.
	busErr := s.bus.Close(ctx)
	_ = s.bridge.Close()
	transportErr := s.transport.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "profile bridge stopped")
	return errors.Join(busErr, transportErr)
}

// Call runs a host entry point.
func (s *Service) Call(ctx context.Context, name string, args []byte) error {
	s.mu.RLock()
	br := s.bridge
	started := s.started
	s.mu.RUnlock()
	if !started {
		return fmt.Errorf("%w: %w", ErrNotStarted, bus.ErrClosed)
	}
	return br.Call(ctx, name, args)
}

// Publish puts an in-process event on the bus.
func (s *Service) Publish(ctx context.Context, e events.Event) error {
	s.mu.RLock()
	b := s.bus
	started := s.started
	s.mu.RUnlock()
	if !started {
		return fmt.Errorf("%w: %w", ErrNotStarted, bus.ErrClosed)
	}
	return b.Publish(ctx, e)
}

// Subscribe registers an in-process subscriber.
func (s *Service) Subscribe(name string, h bus.Handler) (func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.bus.Subscribe(name, h), nil
}

// HostHandler returns the websocket endpoint, or nil when the transport is
// not a websocket hub. It is available after Start.
func (s *Service) HostHandler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return nil
	}
	return s.hub
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"busMode":   s.cfg.BusMode,
		"transport": s.cfg.Transport,
		"channel":   s.cfg.HostChannel,
		"excluded":  s.cfg.ExcludedProviders,
		"entries":   len(bridge.Entries()),
	}
	if !s.started {
		return stats
	}

	bs := s.bus.Stats()
	stats["subscribers"] = bs.Subscribers
	stats["published"] = bs.Published
	stats["handlerErrors"] = bs.HandlerErrors
	stats["pending"] = bs.Pending
	if s.hub != nil {
		stats["hosts"] = s.hub.Clients()
	}
	metrics.UpdateBusSubscribers(bs.Subscribers)
	return stats
}
