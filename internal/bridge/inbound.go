package bridge

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/okian/profilebridge/internal/adapters/mq/bus"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// DiagnosticSink observes collection arguments that were degraded while
// building an event.
type DiagnosticSink interface {
	Report(ctx context.Context, kind events.Kind, diags []events.Diagnostic)
}

// DiagnosticSinkFunc adapts a function to DiagnosticSink.
type DiagnosticSinkFunc func(ctx context.Context, kind events.Kind, diags []events.Diagnostic)

// Report calls f.
func (f DiagnosticSinkFunc) Report(ctx context.Context, kind events.Kind, diags []events.Diagnostic) {
	f(ctx, kind, diags)
}

// Constructor rebuilds typed events from host primitives and publishes them.
//
// Provider and action type names, and required objects, are validated
// strictly: failures return an error wrapping ErrContract and nothing is
// published. Collection arguments degrade instead: an unparsable array
// becomes empty and a bad element is skipped, each recorded as a Diagnostic
// on the published event.
type Constructor struct {
	bus    bus.Bus
	sink   DiagnosticSink
	logger logger.Logger
}

// NewConstructor creates a constructor publishing on b.
func NewConstructor(b bus.Bus, opts ...Option) *Constructor {
	s := apply(opts, "inbound")
	return &Constructor{bus: b, sink: s.sink, logger: s.logger}
}

// LoginStarted publishes events.LoginStarted.
func (c *Constructor) LoginStarted(ctx context.Context, provider string, autoLogin bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LoginStarted{Provider: p, AutoLogin: autoLogin, Payload: payload})
}

// LoginFinished publishes events.LoginFinished. The profile is required.
func (c *Constructor) LoginFinished(ctx context.Context, profileJSON string, autoLogin bool, payload string) error {
	profile, err := model.DecodeProfile([]byte(profileJSON))
	if err != nil {
		return contract("userProfile", err)
	}
	return c.publish(ctx, events.LoginFinished{Profile: profile, AutoLogin: autoLogin, Payload: payload})
}

// LoginCancelled publishes events.LoginCancelled.
func (c *Constructor) LoginCancelled(ctx context.Context, provider string, autoLogin bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LoginCancelled{Provider: p, AutoLogin: autoLogin, Payload: payload})
}

// LoginFailed publishes events.LoginFailed.
func (c *Constructor) LoginFailed(ctx context.Context, provider, message string, autoLogin bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LoginFailed{Provider: p, Message: message, AutoLogin: autoLogin, Payload: payload})
}

// LogoutStarted publishes events.LogoutStarted.
func (c *Constructor) LogoutStarted(ctx context.Context, provider string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LogoutStarted{Provider: p})
}

// LogoutFinished publishes events.LogoutFinished.
func (c *Constructor) LogoutFinished(ctx context.Context, provider string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LogoutFinished{Provider: p})
}

// LogoutFailed publishes events.LogoutFailed.
func (c *Constructor) LogoutFailed(ctx context.Context, provider, message string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.LogoutFailed{Provider: p, Message: message})
}

// SocialActionStarted publishes events.SocialActionStarted.
func (c *Constructor) SocialActionStarted(ctx context.Context, provider, actionType, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SocialActionStarted{Provider: p, ActionType: t, Payload: payload})
}

// SocialActionFinished publishes events.SocialActionFinished.
func (c *Constructor) SocialActionFinished(ctx context.Context, provider, actionType, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SocialActionFinished{Provider: p, ActionType: t, Payload: payload})
}

// SocialActionCancelled publishes events.SocialActionCancelled.
func (c *Constructor) SocialActionCancelled(ctx context.Context, provider, actionType, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SocialActionCancelled{Provider: p, ActionType: t, Payload: payload})
}

// SocialActionFailed publishes events.SocialActionFailed.
func (c *Constructor) SocialActionFailed(ctx context.Context, provider, actionType, message, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SocialActionFailed{Provider: p, ActionType: t, Message: message, Payload: payload})
}

// GetContactsStarted publishes events.GetContactsStarted.
func (c *Constructor) GetContactsStarted(ctx context.Context, provider string, fromStart bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetContactsStarted{Provider: p, FromStart: fromStart, Payload: payload})
}

// GetContactsFinished publishes events.GetContactsFinished.
func (c *Constructor) GetContactsFinished(ctx context.Context, provider, contactsJSON, payload string, hasMore bool) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	contacts, diags := decodeRecords("contacts", contactsJSON, model.DecodeProfile)
	return c.publish(ctx, events.GetContactsFinished{
		Provider: p,
		Contacts: contacts,
		HasMore:  hasMore,
		Payload:  payload,
		Issues:   diags,
	})
}

// GetContactsFailed publishes events.GetContactsFailed.
func (c *Constructor) GetContactsFailed(ctx context.Context, provider, message string, fromStart bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetContactsFailed{Provider: p, Message: message, FromStart: fromStart, Payload: payload})
}

// GetFeedStarted publishes events.GetFeedStarted.
func (c *Constructor) GetFeedStarted(ctx context.Context, provider string, fromStart bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetFeedStarted{Provider: p, FromStart: fromStart, Payload: payload})
}

// GetFeedFinished publishes events.GetFeedFinished.
func (c *Constructor) GetFeedFinished(ctx context.Context, provider, feedsJSON, payload string, hasMore bool) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	feeds, diags := decodeStrings("feeds", feedsJSON)
	return c.publish(ctx, events.GetFeedFinished{
		Provider: p,
		Feeds:    feeds,
		HasMore:  hasMore,
		Payload:  payload,
		Issues:   diags,
	})
}

// GetFeedFailed publishes events.GetFeedFailed.
func (c *Constructor) GetFeedFailed(ctx context.Context, provider, message string, fromStart bool, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetFeedFailed{Provider: p, Message: message, FromStart: fromStart, Payload: payload})
}

// InviteStarted publishes events.InviteStarted.
func (c *Constructor) InviteStarted(ctx context.Context, provider, actionType, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.InviteStarted{Provider: p, ActionType: t, Payload: payload})
}

// InviteFinished publishes events.InviteFinished.
func (c *Constructor) InviteFinished(ctx context.Context, provider, actionType, requestID, invitedIDsJSON, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	ids, diags := decodeStrings("invitedIds", invitedIDsJSON)
	return c.publish(ctx, events.InviteFinished{
		Provider:   p,
		ActionType: t,
		RequestID:  requestID,
		InvitedIDs: ids,
		Payload:    payload,
		Issues:     diags,
	})
}

// InviteCancelled publishes events.InviteCancelled.
func (c *Constructor) InviteCancelled(ctx context.Context, provider, actionType, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.InviteCancelled{Provider: p, ActionType: t, Payload: payload})
}

// InviteFailed publishes events.InviteFailed.
func (c *Constructor) InviteFailed(ctx context.Context, provider, actionType, message, payload string) error {
	p, t, err := parseSocial(provider, actionType)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.InviteFailed{Provider: p, ActionType: t, Message: message, Payload: payload})
}

// GetLeaderboardsStarted publishes events.GetLeaderboardsStarted.
func (c *Constructor) GetLeaderboardsStarted(ctx context.Context, provider, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetLeaderboardsStarted{Provider: p, Payload: payload})
}

// GetLeaderboardsFinished publishes events.GetLeaderboardsFinished.
func (c *Constructor) GetLeaderboardsFinished(ctx context.Context, provider, leaderboardsJSON, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	lbs, diags := decodeRecords("leaderboards", leaderboardsJSON, model.DecodeLeaderboard)
	return c.publish(ctx, events.GetLeaderboardsFinished{
		Provider:     p,
		Leaderboards: lbs,
		Payload:      payload,
		Issues:       diags,
	})
}

// GetLeaderboardsFailed publishes events.GetLeaderboardsFailed.
func (c *Constructor) GetLeaderboardsFailed(ctx context.Context, provider, message, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetLeaderboardsFailed{Provider: p, Message: message, Payload: payload})
}

// GetScoresStarted publishes events.GetScoresStarted. The leaderboard is required.
func (c *Constructor) GetScoresStarted(ctx context.Context, provider, leaderboardJSON string, fromStart bool, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetScoresStarted{Provider: p, Leaderboard: lb, FromStart: fromStart, Payload: payload})
}

// GetScoresFinished publishes events.GetScoresFinished.
func (c *Constructor) GetScoresFinished(ctx context.Context, provider, leaderboardJSON, scoresJSON string, hasMore bool, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	scores, diags := decodeRecords("scores", scoresJSON, model.DecodeScore)
	return c.publish(ctx, events.GetScoresFinished{
		Provider:    p,
		Leaderboard: lb,
		Scores:      scores,
		HasMore:     hasMore,
		Payload:     payload,
		Issues:      diags,
	})
}

// GetScoresFailed publishes events.GetScoresFailed.
func (c *Constructor) GetScoresFailed(ctx context.Context, provider, leaderboardJSON, message string, fromStart bool, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.GetScoresFailed{
		Provider:    p,
		Leaderboard: lb,
		FromStart:   fromStart,
		Message:     message,
		Payload:     payload,
	})
}

// SubmitScoreStarted publishes events.SubmitScoreStarted.
func (c *Constructor) SubmitScoreStarted(ctx context.Context, provider, leaderboardJSON, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SubmitScoreStarted{Provider: p, Leaderboard: lb, Payload: payload})
}

// SubmitScoreFinished publishes events.SubmitScoreFinished. Both the
// leaderboard and the score are required.
func (c *Constructor) SubmitScoreFinished(ctx context.Context, provider, leaderboardJSON, scoreJSON, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	score, err := model.DecodeScore([]byte(scoreJSON))
	if err != nil {
		return contract("score", err)
	}
	return c.publish(ctx, events.SubmitScoreFinished{Provider: p, Leaderboard: lb, Score: score, Payload: payload})
}

// SubmitScoreFailed publishes events.SubmitScoreFailed.
func (c *Constructor) SubmitScoreFailed(ctx context.Context, provider, leaderboardJSON, message, payload string) error {
	p, lb, err := parseBoard(provider, leaderboardJSON)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.SubmitScoreFailed{Provider: p, Leaderboard: lb, Message: message, Payload: payload})
}

// ShowLeaderboards publishes events.ShowLeaderboards.
func (c *Constructor) ShowLeaderboards(ctx context.Context, provider, payload string) error {
	p, err := parseProvider(provider)
	if err != nil {
		return err
	}
	return c.publish(ctx, events.ShowLeaderboards{Provider: p, Payload: payload})
}

func (c *Constructor) publish(ctx context.Context, e events.Event) error {
	if diags := events.DiagnosticsOf(e); len(diags) > 0 {
		kind := e.Kind()
		for _, d := range diags {
			metrics.RecordInboundDiagnostic(kind.String(), d.Field)
			c.logger.Warn(ctx, "degraded host argument",
				logger.String("kind", kind.String()),
				logger.String("diagnostic", d.String()),
				logger.String("input", d.Input),
			)
		}
		if c.sink != nil {
			c.sink.Report(ctx, kind, diags)
		}
	}
	if err := c.bus.Publish(ctx, e); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind(), err)
	}
	return nil
}

func contract(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrContract, field, err)
}

func parseProvider(s string) (model.Provider, error) {
	p, err := model.ParseProvider(s)
	if err != nil {
		return 0, contract("provider", err)
	}
	return p, nil
}

func parseSocial(provider, actionType string) (model.Provider, model.SocialActionType, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return 0, 0, err
	}
	t, err := model.ParseSocialActionType(actionType)
	if err != nil {
		return 0, 0, contract("socialActionType", err)
	}
	return p, t, nil
}

func parseBoard(provider, leaderboardJSON string) (model.Provider, model.Leaderboard, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return 0, model.Leaderboard{}, err
	}
	lb, err := model.DecodeLeaderboard([]byte(leaderboardJSON))
	if err != nil {
		return 0, model.Leaderboard{}, contract("leaderboard", err)
	}
	return p, lb, nil
}

// MaxDiagnosticInput caps the offending text kept on a Diagnostic.
const MaxDiagnosticInput = 256

func clip(s string) string {
	if len(s) <= MaxDiagnosticInput {
		return s
	}
	n := MaxDiagnosticInput
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// elements splits text into array elements. Text that is not a JSON array
// yields no elements and a single whole-collection diagnostic.
func elements(field, text string) ([]gjson.Result, []events.Diagnostic) {
	if !gjson.Valid(text) {
		return nil, []events.Diagnostic{{Field: field, Index: -1, Input: clip(text), Err: ErrMalformedCollection}}
	}
	res := gjson.Parse(text)
	if !res.IsArray() {
		return nil, []events.Diagnostic{{Field: field, Index: -1, Input: clip(text), Err: ErrMalformedCollection}}
	}
	return res.Array(), nil
}

func decodeRecords[T any](field, text string, decode func([]byte) (T, error)) ([]T, []events.Diagnostic) {
	elems, diags := elements(field, text)
	out := make([]T, 0, len(elems))
	for i, el := range elems {
		v, err := decode([]byte(el.Raw))
		if err != nil {
			diags = append(diags, events.Diagnostic{Field: field, Index: i, Input: clip(el.Raw), Err: err})
			continue
		}
		out = append(out, v)
	}
	return out, diags
}

func decodeStrings(field, text string) ([]string, []events.Diagnostic) {
	elems, diags := elements(field, text)
	out := make([]string, 0, len(elems))
	for i, el := range elems {
		if el.Type != gjson.String {
			diags = append(diags, events.Diagnostic{
				Field: field,
				Index: i,
				Input: clip(el.Raw),
				Err:   fmt.Errorf("element is %s, not a string", el.Type),
			})
			continue
		}
		out = append(out, el.Str)
	}
	return out, diags
}
