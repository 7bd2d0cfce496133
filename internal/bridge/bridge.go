// Package bridge marshals profile events between the internal bus and a
// string-only host runtime.
//
// Outbound, a Translator subscribed to the bus serializes every event into a
// flat JSON message and hands it to a Transport, unless the provider filter
// rejects it. Inbound, a Constructor validates host primitives, rebuilds the
// typed event and publishes it on the same bus.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/profilebridge/internal/adapters/mq/bus"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/logger"
)

// Bridge owns the single outbound subscription and the inbound constructor.
type Bridge struct {
	out *Translator
	in  *Constructor

	unsubscribe func()
	closeOnce   sync.Once
	logger      logger.Logger
}

// New subscribes a translator for t on b and returns the bridge. It fails
// with ErrIncompleteCatalogue if an event kind lacks an encoder or a host
// originated kind lacks an entry point.
func New(b bus.Bus, t Transport, opts ...Option) (*Bridge, error) {
	if err := CheckCatalogue(); err != nil {
		return nil, err
	}
	s := apply(opts, "bridge")

	named := func(component string) []Option {
		o := make([]Option, 0, len(opts)+1)
		o = append(o, opts...)
		return append(o, WithLogger(s.logger.Named(component)))
	}

	br := &Bridge{
		out:    NewTranslator(t, named("outbound")...),
		in:     NewConstructor(b, named("inbound")...),
		logger: s.logger,
	}
	br.unsubscribe = b.Subscribe("bridge-outbound", br.out.Handle)

	s.logger.Info(context.Background(), "bridge ready",
		logger.String("channel", br.out.Channel()),
		logger.Int("entries", len(entries)),
	)
	return br, nil
}

// Outbound returns the translator.
func (b *Bridge) Outbound() *Translator { return b.out }

// Inbound returns the constructor.
func (b *Bridge) Inbound() *Constructor { return b.in }

// Call forwards a named host call to the constructor.
func (b *Bridge) Call(ctx context.Context, name string, args []byte) error {
	return b.in.Call(ctx, name, args)
}

// Close removes the outbound subscription. It is safe to call twice.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.unsubscribe()
		b.logger.Info(context.Background(), "bridge closed")
	})
	return nil
}

// CheckCatalogue verifies both static tables cover the event catalogue.
func CheckCatalogue() error {
	for _, k := range events.AllKinds() {
		if _, ok := encoders[k]; !ok {
			return fmt.Errorf("%w: no encoder for %s", ErrIncompleteCatalogue, k)
		}
		if _, ok := EntryFor(k); k.HostOriginated() && !ok {
			return fmt.Errorf("%w: no host entry for %s", ErrIncompleteCatalogue, k)
		}
	}
	return nil
}
