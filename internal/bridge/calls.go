package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/metrics"
)

// args reads host call arguments from a JSON object. Argument names match
// the outbound wire keys, so a delivered message can be replayed as a call.
type args struct {
	obj     gjson.Result
	missing []string
}

func newArgs(raw []byte) (*args, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: arguments are not valid json", ErrContract)
	}
	obj := gjson.ParseBytes(raw)
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: arguments must be a json object", ErrContract)
	}
	return &args{obj: obj}, nil
}

// require reads a scalar that must be present. Numbers are accepted as
// their decimal text.
func (a *args) require(name string) string {
	v := a.obj.Get(name)
	if !v.Exists() {
		a.missing = append(a.missing, name)
		return ""
	}
	return v.String()
}

func (a *args) str(name string) string { return a.obj.Get(name).String() }

func (a *args) flag(name string) bool { return a.obj.Get(name).Bool() }

// object reads a structured argument given either inline or as JSON text.
func (a *args) object(name string, required bool, aliases ...string) string {
	for _, n := range append([]string{name}, aliases...) {
		v := a.obj.Get(n)
		if !v.Exists() {
			continue
		}
		if v.Type == gjson.String {
			return v.Str
		}
		return v.Raw
	}
	if required {
		a.missing = append(a.missing, name)
	}
	return ""
}

func (a *args) err() error {
	if len(a.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing arguments %s", ErrContract, strings.Join(a.missing, ", "))
}

type entry struct {
	kind events.Kind
	call func(ctx context.Context, c *Constructor, a *args) func() error
}

// Host entry points, named as the host runtime calls them. Each adapter
// reads its arguments first and returns the deferred constructor call so
// that missing arguments are reported together.
var entries = map[string]entry{
	"pushEventLoginStarted": {events.KindLoginStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, auto, payload := a.require("provider"), a.flag("autoLogin"), a.str("payload")
		return func() error { return c.LoginStarted(ctx, p, auto, payload) }
	}},
	"pushEventLoginFinished": {events.KindLoginFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		profile, auto, payload := a.object("userProfile", true), a.flag("autoLogin"), a.str("payload")
		return func() error { return c.LoginFinished(ctx, profile, auto, payload) }
	}},
	"pushEventLoginCancelled": {events.KindLoginCancelled, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, auto, payload := a.require("provider"), a.flag("autoLogin"), a.str("payload")
		return func() error { return c.LoginCancelled(ctx, p, auto, payload) }
	}},
	"pushEventLoginFailed": {events.KindLoginFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, msg, auto, payload := a.require("provider"), a.str("message"), a.flag("autoLogin"), a.str("payload")
		return func() error { return c.LoginFailed(ctx, p, msg, auto, payload) }
	}},

	"pushEventLogoutStarted": {events.KindLogoutStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p := a.require("provider")
		return func() error { return c.LogoutStarted(ctx, p) }
	}},
	"pushEventLogoutFinished": {events.KindLogoutFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p := a.require("provider")
		return func() error { return c.LogoutFinished(ctx, p) }
	}},
	"pushEventLogoutFailed": {events.KindLogoutFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, msg := a.require("provider"), a.str("message")
		return func() error { return c.LogoutFailed(ctx, p, msg) }
	}},

	"pushEventSocialActionStarted": {events.KindSocialActionStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, payload := a.require("provider"), a.require("socialActionType"), a.str("payload")
		return func() error { return c.SocialActionStarted(ctx, p, t, payload) }
	}},
	"pushEventSocialActionFinished": {events.KindSocialActionFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, payload := a.require("provider"), a.require("socialActionType"), a.str("payload")
		return func() error { return c.SocialActionFinished(ctx, p, t, payload) }
	}},
	"pushEventSocialActionCancelled": {events.KindSocialActionCancelled, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, payload := a.require("provider"), a.require("socialActionType"), a.str("payload")
		return func() error { return c.SocialActionCancelled(ctx, p, t, payload) }
	}},
	"pushEventSocialActionFailed": {events.KindSocialActionFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, msg, payload := a.require("provider"), a.require("socialActionType"), a.str("message"), a.str("payload")
		return func() error { return c.SocialActionFailed(ctx, p, t, msg, payload) }
	}},

	"pushEventGetContactsStarted": {events.KindGetContactsStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, from, payload := a.require("provider"), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetContactsStarted(ctx, p, from, payload) }
	}},
	"pushEventGetContactsFinished": {events.KindGetContactsFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, contacts, payload, more := a.require("provider"), a.object("contacts", false), a.str("payload"), a.flag("hasMore")
		return func() error { return c.GetContactsFinished(ctx, p, contacts, payload, more) }
	}},
	"pushEventGetContactsFailed": {events.KindGetContactsFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, msg, from, payload := a.require("provider"), a.str("message"), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetContactsFailed(ctx, p, msg, from, payload) }
	}},

	"pushEventGetFeedStarted": {events.KindGetFeedStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, from, payload := a.require("provider"), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetFeedStarted(ctx, p, from, payload) }
	}},
	"pushEventGetFeedFinished": {events.KindGetFeedFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, feeds, payload, more := a.require("provider"), a.object("feeds", false), a.str("payload"), a.flag("hasMore")
		return func() error { return c.GetFeedFinished(ctx, p, feeds, payload, more) }
	}},
	"pushEventGetFeedFailed": {events.KindGetFeedFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, msg, from, payload := a.require("provider"), a.str("message"), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetFeedFailed(ctx, p, msg, from, payload) }
	}},

	"pushEventInviteStarted": {events.KindInviteStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, payload := a.require("provider"), a.require("socialActionType"), a.str("payload")
		return func() error { return c.InviteStarted(ctx, p, t, payload) }
	}},
	"pushEventInviteFinished": {events.KindInviteFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t := a.require("provider"), a.require("socialActionType")
		req, ids, payload := a.str("requestId"), a.object("invitedIds", false), a.str("payload")
		return func() error { return c.InviteFinished(ctx, p, t, req, ids, payload) }
	}},
	"pushEventInviteCancelled": {events.KindInviteCancelled, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, payload := a.require("provider"), a.require("socialActionType"), a.str("payload")
		return func() error { return c.InviteCancelled(ctx, p, t, payload) }
	}},
	"pushEventInviteFailed": {events.KindInviteFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, t, msg, payload := a.require("provider"), a.require("socialActionType"), a.str("message"), a.str("payload")
		return func() error { return c.InviteFailed(ctx, p, t, msg, payload) }
	}},

	"pushEventGetLeaderboardsStarted": {events.KindGetLeaderboardsStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, payload := a.require("provider"), a.str("payload")
		return func() error { return c.GetLeaderboardsStarted(ctx, p, payload) }
	}},
	"pushEventGetLeaderboardsFinished": {events.KindGetLeaderboardsFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lbs, payload := a.require("provider"), a.object("leaderboards", false), a.str("payload")
		return func() error { return c.GetLeaderboardsFinished(ctx, p, lbs, payload) }
	}},
	"pushEventGetLeaderboardsFailed": {events.KindGetLeaderboardsFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, msg, payload := a.require("provider"), a.str("message"), a.str("payload")
		return func() error { return c.GetLeaderboardsFailed(ctx, p, msg, payload) }
	}},

	"pushEventGetScoresStarted": {events.KindGetScoresStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb, from, payload := a.require("provider"), a.object("leaderboard", true), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetScoresStarted(ctx, p, lb, from, payload) }
	}},
	"pushEventGetScoresFinished": {events.KindGetScoresFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb := a.require("provider"), a.object("leaderboard", true)
		scores, more, payload := a.object("scores", false), a.flag("hasMore"), a.str("payload")
		return func() error { return c.GetScoresFinished(ctx, p, lb, scores, more, payload) }
	}},
	"pushEventGetScoresFailed": {events.KindGetScoresFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb := a.require("provider"), a.object("leaderboard", true)
		msg, from, payload := a.str("message"), a.flag("fromStart"), a.str("payload")
		return func() error { return c.GetScoresFailed(ctx, p, lb, msg, from, payload) }
	}},

	"pushEventSubmitScoreStarted": {events.KindSubmitScoreStarted, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb, payload := a.require("provider"), a.object("leaderboard", true), a.str("payload")
		return func() error { return c.SubmitScoreStarted(ctx, p, lb, payload) }
	}},
	"pushEventSubmitScoreFinished": {events.KindSubmitScoreFinished, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb := a.require("provider"), a.object("leaderboard", true)
		score, payload := a.object("score", true, "scores"), a.str("payload")
		return func() error { return c.SubmitScoreFinished(ctx, p, lb, score, payload) }
	}},
	"pushEventSubmitScoreFailed": {events.KindSubmitScoreFailed, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, lb, msg, payload := a.require("provider"), a.object("leaderboard", true), a.str("message"), a.str("payload")
		return func() error { return c.SubmitScoreFailed(ctx, p, lb, msg, payload) }
	}},

	"pushEventShowLeaderboards": {events.KindShowLeaderboards, func(ctx context.Context, c *Constructor, a *args) func() error {
		p, payload := a.require("provider"), a.str("payload")
		return func() error { return c.ShowLeaderboards(ctx, p, payload) }
	}},
}

// Call dispatches a named host call whose arguments are a JSON object.
func (c *Constructor) Call(ctx context.Context, name string, raw []byte) error {
	e, ok := entries[name]
	if !ok {
		metrics.RecordInboundCall(name, "unknown")
		return fmt.Errorf("%w: %q", ErrUnknownCall, name)
	}

	err := c.call(ctx, e, raw)
	metrics.RecordInboundCall(name, callStatus(err))
	return err
}

func (c *Constructor) call(ctx context.Context, e entry, raw []byte) error {
	a, err := newArgs(raw)
	if err != nil {
		return err
	}
	invoke := e.call(ctx, c, a)
	if err := a.err(); err != nil {
		return err
	}
	return invoke()
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrContract):
		return "contract_violation"
	default:
		return "publish_error"
	}
}

// Entries lists the host entry point names in sorted order.
func Entries() []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EntryFor returns the entry point name that raises kind k.
func EntryFor(k events.Kind) (string, bool) {
	for name, e := range entries {
		if e.kind == k {
			return name, true
		}
	}
	return "", false
}

// KindOf returns the event kind raised by the named entry point.
func KindOf(name string) (events.Kind, bool) {
	e, ok := entries[name]
	return e.kind, ok
}
