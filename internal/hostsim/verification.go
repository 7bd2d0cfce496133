package hostsim

import (
	"context"
	"fmt"

	"github.com/okian/profilebridge/pkg/logger"
)

// Mismatch describes a call whose outbound events differ from what the
// bridge should have sent.
type Mismatch struct {
	Entry   string
	Payload string
	Reason  string
}

// verifyDeliveries checks that every accepted call produced exactly one
// event of the expected name and that filtered providers produced none.
func verifyDeliveries(ctx context.Context, calls []Call, received map[string][]Received, stray []Received, stats *Stats) []Mismatch {
	var out []Mismatch
	known := make(map[string]bool, len(calls))

	for _, call := range calls {
		known[call.Payload] = true
		got := received[call.Payload]
		switch {
		case call.Filtered && len(got) == 0:
			stats.Filtered++
		case call.Filtered:
			stats.Unexpected++
			out = append(out, Mismatch{call.Entry, call.Payload, fmt.Sprintf("provider %d is excluded but %d events arrived", call.Provider, len(got))})
		case len(got) == 0:
			stats.Missing++
			out = append(out, Mismatch{call.Entry, call.Payload, "no event arrived"})
		case len(got) > 1:
			stats.Unexpected++
			out = append(out, Mismatch{call.Entry, call.Payload, fmt.Sprintf("%d events arrived", len(got))})
		case got[0].Name != call.Expect:
			stats.Unexpected++
			out = append(out, Mismatch{call.Entry, call.Payload, fmt.Sprintf("got %s, want %s", got[0].Name, call.Expect)})
		default:
			stats.Delivered++
		}
	}
	for payload, got := range received {
		if !known[payload] {
			stats.Unexpected += len(got)
			out = append(out, Mismatch{"", payload, "event for an unknown payload"})
		}
	}

	log := logger.Get().Named("verify")
	for _, m := range out {
		log.Warn(ctx, "delivery mismatch",
			logger.String("entry", m.Entry),
			logger.String("payload", m.Payload),
			logger.String("reason", m.Reason),
		)
	}
	if len(stray) > 0 {
		log.Info(ctx, "events without a correlation payload", logger.Int("count", len(stray)))
	}
	return out
}
