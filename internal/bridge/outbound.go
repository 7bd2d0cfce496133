package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Outbound is one translated event ready for the host.
type Outbound struct {
	Name     string
	Payload  string
	Provider model.Provider
	// Sourced is false for catalogue-wide events, which skip the filter.
	Sourced bool
}

// Translator turns internal events into host calls.
type Translator struct {
	transport Transport
	filter    Filter
	channel   string
	logger    logger.Logger
}

// NewTranslator creates a translator delivering to t.
func NewTranslator(t Transport, opts ...Option) *Translator {
	s := apply(opts, "outbound")
	return &Translator{
		transport: t,
		filter:    s.filter,
		channel:   s.channel,
		logger:    s.logger,
	}
}

// Channel returns the host destination channel.
func (t *Translator) Channel() string { return t.channel }

// Translate serializes e without delivering it.
func (t *Translator) Translate(e events.Event) (Outbound, error) {
	if e == nil {
		return Outbound{}, fmt.Errorf("%w: nil event", ErrEncode)
	}
	enc, ok := encoders[e.Kind()]
	if !ok {
		return Outbound{}, fmt.Errorf("%w: no encoder for %s", ErrEncode, e.Kind())
	}
	msg, err := enc(e)
	if err != nil {
		return Outbound{}, fmt.Errorf("%w: %s: %w", ErrEncode, e.Kind(), err)
	}
	text, err := msg.Encode()
	if err != nil {
		return Outbound{}, fmt.Errorf("%w: %s: %w", ErrEncode, e.Kind(), err)
	}

	out := Outbound{Name: e.Kind().String(), Payload: text}
	out.Provider, out.Sourced = events.SourceOf(e)
	return out, nil
}

// Handle translates e and delivers it unless the filter rejects its
// provider. It is the bus subscriber of the bridge.
func (t *Translator) Handle(ctx context.Context, e events.Event) error {
	start := time.Now()

	out, err := t.Translate(e)
	if err != nil {
		name := "unknown"
		if e != nil {
			name = e.Kind().String()
		}
		metrics.RecordOutboundError(name, "encode")
		return err
	}

	if out.Sourced && !t.filter.Allow(out.Name, out.Provider) {
		metrics.RecordOutboundFiltered(out.Name, out.Provider.String())
		t.logger.Debug(ctx, "event not sent to host",
			logger.String("kind", out.Name),
			logger.String("provider", out.Provider.String()),
		)
		return nil
	}

	if err := t.transport.Send(ctx, t.channel, out.Name, out.Payload); err != nil {
		metrics.RecordOutboundError(out.Name, "deliver")
		return fmt.Errorf("%w: %s: %w", ErrDeliver, out.Name, err)
	}
	metrics.RecordOutboundDelivered(out.Name, float64(time.Since(start).Microseconds())/1000)
	return nil
}

type encodeFunc func(events.Event) (Message, error)

// encode adapts a typed encoder to the table signature.
func encode[E events.Event](f func(E) (Message, error)) encodeFunc {
	return func(e events.Event) (Message, error) {
		v, ok := e.(E)
		if !ok {
			return nil, fmt.Errorf("unexpected %T for %s", e, e.Kind())
		}
		return f(v)
	}
}

var encoders = map[events.Kind]encodeFunc{
	events.KindProfileInitialized: encode(func(events.ProfileInitialized) (Message, error) { return nil, nil }),
	events.KindUserRating:         encode(func(events.UserRating) (Message, error) { return nil, nil }),
	events.KindUserProfileUpdated: encode(func(e events.UserProfileUpdated) (Message, error) {
		p, err := record(model.EncodeProfile(e.Profile))
		return Message{"userProfile": p}, err
	}),

	events.KindLoginStarted: encode(func(e events.LoginStarted) (Message, error) {
		return Message{"provider": int(e.Provider), "autoLogin": e.AutoLogin, "payload": e.Payload}, nil
	}),
	events.KindLoginFinished: encode(func(e events.LoginFinished) (Message, error) {
		p, err := record(model.EncodeProfile(e.Profile))
		return Message{
			"provider":    int(e.Profile.Provider),
			"userProfile": p,
			"autoLogin":   e.AutoLogin,
			"payload":     e.Payload,
		}, err
	}),
	events.KindLoginCancelled: encode(func(e events.LoginCancelled) (Message, error) {
		return Message{"provider": int(e.Provider), "autoLogin": e.AutoLogin, "payload": e.Payload}, nil
	}),
	events.KindLoginFailed: encode(func(e events.LoginFailed) (Message, error) {
		return Message{
			"provider":  int(e.Provider),
			"message":   e.Message,
			"autoLogin": e.AutoLogin,
			"payload":   e.Payload,
		}, nil
	}),

	events.KindLogoutStarted: encode(func(e events.LogoutStarted) (Message, error) {
		return Message{"provider": int(e.Provider)}, nil
	}),
	events.KindLogoutFinished: encode(func(e events.LogoutFinished) (Message, error) {
		return Message{"provider": int(e.Provider)}, nil
	}),
	events.KindLogoutFailed: encode(func(e events.LogoutFailed) (Message, error) {
		return Message{"provider": int(e.Provider), "message": e.Message}, nil
	}),

	events.KindSocialActionStarted: encode(func(e events.SocialActionStarted) (Message, error) {
		return social(e.Provider, e.ActionType, e.Payload), nil
	}),
	events.KindSocialActionFinished: encode(func(e events.SocialActionFinished) (Message, error) {
		return social(e.Provider, e.ActionType, e.Payload), nil
	}),
	events.KindSocialActionCancelled: encode(func(e events.SocialActionCancelled) (Message, error) {
		return social(e.Provider, e.ActionType, e.Payload), nil
	}),
	events.KindSocialActionFailed: encode(func(e events.SocialActionFailed) (Message, error) {
		m := social(e.Provider, e.ActionType, e.Payload)
		m["message"] = e.Message
		return m, nil
	}),

	events.KindGetContactsStarted: encode(func(e events.GetContactsStarted) (Message, error) {
		return Message{"provider": int(e.Provider), "fromStart": e.FromStart, "payload": e.Payload}, nil
	}),
	events.KindGetContactsFinished: encode(func(e events.GetContactsFinished) (Message, error) {
		contacts, err := records(e.Contacts, model.EncodeProfile)
		return Message{
			"provider": int(e.Provider),
			"contacts": contacts,
			"payload":  e.Payload,
			"hasMore":  e.HasMore,
		}, err
	}),
	events.KindGetContactsFailed: encode(func(e events.GetContactsFailed) (Message, error) {
		return Message{
			"provider":  int(e.Provider),
			"message":   e.Message,
			"fromStart": e.FromStart,
			"payload":   e.Payload,
		}, nil
	}),

	events.KindGetFeedStarted: encode(func(e events.GetFeedStarted) (Message, error) {
		return Message{"provider": int(e.Provider), "fromStart": e.FromStart, "payload": e.Payload}, nil
	}),
	events.KindGetFeedFinished: encode(func(e events.GetFeedFinished) (Message, error) {
		return Message{
			"provider": int(e.Provider),
			"feeds":    strs(e.Feeds),
			"payload":  e.Payload,
			"hasMore":  e.HasMore,
		}, nil
	}),
	events.KindGetFeedFailed: encode(func(e events.GetFeedFailed) (Message, error) {
		return Message{
			"provider":  int(e.Provider),
			"message":   e.Message,
			"fromStart": e.FromStart,
			"payload":   e.Payload,
		}, nil
	}),

	events.KindInviteStarted: encode(func(e events.InviteStarted) (Message, error) {
		return social(e.Provider, e.ActionType, e.Payload), nil
	}),
	events.KindInviteFinished: encode(func(e events.InviteFinished) (Message, error) {
		m := social(e.Provider, e.ActionType, e.Payload)
		m["requestId"] = e.RequestID
		m["invitedIds"] = strs(e.InvitedIDs)
		return m, nil
	}),
	events.KindInviteCancelled: encode(func(e events.InviteCancelled) (Message, error) {
		return social(e.Provider, e.ActionType, e.Payload), nil
	}),
	events.KindInviteFailed: encode(func(e events.InviteFailed) (Message, error) {
		m := social(e.Provider, e.ActionType, e.Payload)
		m["message"] = e.Message
		return m, nil
	}),

	events.KindGetLeaderboardsStarted: encode(func(e events.GetLeaderboardsStarted) (Message, error) {
		return Message{"provider": int(e.Provider), "payload": e.Payload}, nil
	}),
	events.KindGetLeaderboardsFinished: encode(func(e events.GetLeaderboardsFinished) (Message, error) {
		lbs, err := records(e.Leaderboards, model.EncodeLeaderboard)
		return Message{"provider": int(e.Provider), "leaderboards": lbs, "payload": e.Payload}, err
	}),
	events.KindGetLeaderboardsFailed: encode(func(e events.GetLeaderboardsFailed) (Message, error) {
		return Message{"provider": int(e.Provider), "message": e.Message, "payload": e.Payload}, nil
	}),

	events.KindGetScoresStarted: encode(func(e events.GetScoresStarted) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		return Message{
			"provider":    int(e.Provider),
			"fromStart":   e.FromStart,
			"leaderboard": lb,
			"payload":     e.Payload,
		}, err
	}),
	events.KindGetScoresFinished: encode(func(e events.GetScoresFinished) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		if err != nil {
			return nil, err
		}
		scores, err := records(e.Scores, model.EncodeScore)
		return Message{
			"provider":    int(e.Provider),
			"leaderboard": lb,
			"scores":      scores,
			"hasMore":     e.HasMore,
			"payload":     e.Payload,
		}, err
	}),
	events.KindGetScoresFailed: encode(func(e events.GetScoresFailed) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		return Message{
			"provider":    int(e.Provider),
			"leaderboard": lb,
			"fromStart":   e.FromStart,
			"message":     e.Message,
			"payload":     e.Payload,
		}, err
	}),

	events.KindSubmitScoreStarted: encode(func(e events.SubmitScoreStarted) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		return Message{"provider": int(e.Provider), "leaderboard": lb, "payload": e.Payload}, err
	}),
	events.KindSubmitScoreFinished: encode(func(e events.SubmitScoreFinished) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		if err != nil {
			return nil, err
		}
		// The host reads the submitted score under "scores".
		score, err := record(model.EncodeScore(e.Score))
		return Message{
			"provider":    int(e.Provider),
			"leaderboard": lb,
			"scores":      score,
			"payload":     e.Payload,
		}, err
	}),
	events.KindSubmitScoreFailed: encode(func(e events.SubmitScoreFailed) (Message, error) {
		lb, err := record(model.EncodeLeaderboard(e.Leaderboard))
		return Message{
			"provider":    int(e.Provider),
			"leaderboard": lb,
			"message":     e.Message,
			"payload":     e.Payload,
		}, err
	}),

	events.KindShowLeaderboards: encode(func(e events.ShowLeaderboards) (Message, error) {
		return Message{"provider": int(e.Provider), "payload": e.Payload}, nil
	}),
}

func social(p model.Provider, t model.SocialActionType, payload string) Message {
	return Message{"provider": int(p), "socialActionType": int(t), "payload": payload}
}

func record(b []byte, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func records[T any](items []T, enc func(T) ([]byte, error)) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for i, it := range items {
		b, err := enc(it)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
