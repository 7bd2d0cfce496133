package hostsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/profilebridge/internal/bridge"
	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/okian/profilebridge/pkg/logger"
)

// generatableEntries are the entry points whose events echo the payload.
// Logout events carry none and cannot be correlated.
func generatableEntries() []string {
	var out []string
	for _, name := range bridge.Entries() {
		if strings.HasPrefix(name, "pushEventLogout") {
			continue
		}
		out = append(out, name)
	}
	return out
}

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateCalls creates cfg.NumCalls calls cycling through every entry
// point with random providers.
func generateCalls(ctx context.Context, cfg *Config, stats *Stats) ([]Call, error) {
	excluded := make(map[model.Provider]bool, len(cfg.Excluded))
	for _, name := range cfg.Excluded {
		p, err := model.ParseProvider(name)
		if err != nil {
			return nil, fmt.Errorf("excluded providers: %w", err)
		}
		excluded[p] = true
	}

	entries := generatableEntries()
	providers := model.Providers()
	calls := make([]Call, cfg.NumCalls)
	for i := range calls {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during call generation: %w", err)
		}
		p := providers[randomInt(len(providers))]
		call, err := generateCall(entries[i%len(entries)], p)
		if err != nil {
			return nil, err
		}
		call.Filtered = excluded[p]
		calls[i] = call
	}

	stats.CallsGenerated = len(calls)
	logger.Get().Info(ctx, "generated calls", logger.Int("count", len(calls)), logger.Int("entries", len(entries)))
	return calls, nil
}

// generateCall builds one argument bag that satisfies any entry point;
// entry points ignore arguments they do not read.
func generateCall(entry string, p model.Provider) (Call, error) {
	kind, ok := bridge.KindOf(entry)
	if !ok {
		return Call{}, fmt.Errorf("unknown entry %q", entry)
	}
	id := uuid.NewString()
	provider := strconv.Itoa(int(p))

	profile := map[string]any{"provider": provider, "id": "user-" + id[:8], "username": "sim"}
	board := map[string]any{"provider": provider, "itemId": "lb-" + id[:8], "name": "Simulated"}
	score := map[string]any{"leaderboard": board, "userProfile": profile, "rank": randomInt(100) + 1, "value": randomInt(1_000_000)}

	args := map[string]any{
		"provider":         provider,
		"payload":          id,
		"autoLogin":        randomInt(2) == 1,
		"message":          "simulated failure",
		"socialActionType": model.SocialActionTypes()[randomInt(len(model.SocialActionTypes()))].String(),
		"fromStart":        randomInt(2) == 1,
		"hasMore":          randomInt(2) == 1,
		"userProfile":      profile,
		"contacts":         []any{profile},
		"feeds":            []string{"post-" + id[:8]},
		"requestId":        "req-" + id[:8],
		"invitedIds":       []string{"user-" + id[:8]},
		"leaderboards":     []any{board},
		"leaderboard":      board,
		"scores":           []any{score},
		"score":            score,
	}

	return Call{
		Entry:    entry,
		Args:     args,
		Provider: int(p),
		Payload:  id,
		Expect:   kind.String(),
	}, nil
}
