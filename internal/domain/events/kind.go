// Package events is the closed catalogue of profile domain events.
//
// Every occurrence is a distinct struct implementing Event. Events that were
// caused by a provider also implement Sourced; the two catalogue-wide
// notifications (ProfileInitialized, UserRating) do not.
package events

import (
	"strconv"

	"github.com/okian/profilebridge/internal/domain/model"
)

// Kind tags an event variant.
type Kind uint8

// Catalogue of event kinds.
const (
	KindProfileInitialized Kind = iota
	KindUserRating
	KindUserProfileUpdated

	KindLoginStarted
	KindLoginFinished
	KindLoginCancelled
	KindLoginFailed

	KindLogoutStarted
	KindLogoutFinished
	KindLogoutFailed

	KindSocialActionStarted
	KindSocialActionFinished
	KindSocialActionCancelled
	KindSocialActionFailed

	KindGetContactsStarted
	KindGetContactsFinished
	KindGetContactsFailed

	KindGetFeedStarted
	KindGetFeedFinished
	KindGetFeedFailed

	KindInviteStarted
	KindInviteFinished
	KindInviteCancelled
	KindInviteFailed

	KindGetLeaderboardsStarted
	KindGetLeaderboardsFinished
	KindGetLeaderboardsFailed

	KindGetScoresStarted
	KindGetScoresFinished
	KindGetScoresFailed

	KindSubmitScoreStarted
	KindSubmitScoreFinished
	KindSubmitScoreFailed

	KindShowLeaderboards

	kindCount
)

// Host-side method names, indexed by Kind.
var wireNames = [kindCount]string{
	KindProfileInitialized: "onSoomlaProfileInitialized",
	KindUserRating:         "onUserRatingEvent",
	KindUserProfileUpdated: "onUserProfileUpdated",

	KindLoginStarted:   "onLoginStarted",
	KindLoginFinished:  "onLoginFinished",
	KindLoginCancelled: "onLoginCancelled",
	KindLoginFailed:    "onLoginFailed",

	KindLogoutStarted:  "onLogoutStarted",
	KindLogoutFinished: "onLogoutFinished",
	KindLogoutFailed:   "onLogoutFailed",

	KindSocialActionStarted:   "onSocialActionStarted",
	KindSocialActionFinished:  "onSocialActionFinished",
	KindSocialActionCancelled: "onSocialActionCancelled",
	KindSocialActionFailed:    "onSocialActionFailed",

	KindGetContactsStarted:  "onGetContactsStarted",
	KindGetContactsFinished: "onGetContactsFinished",
	KindGetContactsFailed:   "onGetContactsFailed",

	KindGetFeedStarted:  "onGetFeedStarted",
	KindGetFeedFinished: "onGetFeedFinished",
	KindGetFeedFailed:   "onGetFeedFailed",

	KindInviteStarted:   "onInviteStarted",
	KindInviteFinished:  "onInviteFinished",
	KindInviteCancelled: "onInviteCancelled",
	KindInviteFailed:    "onInviteFailed",

	KindGetLeaderboardsStarted:  "onGetLeaderboardsStarted",
	KindGetLeaderboardsFinished: "onGetLeaderboardsFinished",
	KindGetLeaderboardsFailed:   "onGetLeaderboardsFailed",

	KindGetScoresStarted:  "onGetScoresStarted",
	KindGetScoresFinished: "onGetScoresFinished",
	KindGetScoresFailed:   "onGetScoresFailed",

	KindSubmitScoreStarted:  "onSubmitScoreStarted",
	KindSubmitScoreFinished: "onSubmitScoreFinished",
	KindSubmitScoreFailed:   "onSubmitScoreFailed",

	KindShowLeaderboards: "onShowLeaderboards",
}

// String returns the host wire name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return wireNames[k]
}

// Valid reports whether k is part of the catalogue.
func (k Kind) Valid() bool { return k < kindCount }

// AllKinds returns the whole catalogue in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// HostOriginated reports whether the host runtime may raise events of kind k.
// The catalogue-wide notifications and profile updates only originate inside
// the system.
func (k Kind) HostOriginated() bool {
	switch k {
	case KindProfileInitialized, KindUserRating, KindUserProfileUpdated:
		return false
	}
	return k.Valid()
}

// Event is implemented by every catalogue variant.
type Event interface {
	Kind() Kind
}

// Sourced is implemented by events that carry the provider that caused them.
type Sourced interface {
	Event
	Source() model.Provider
}

// SourceOf returns the provider of e, if it has one.
func SourceOf(e Event) (model.Provider, bool) {
	s, ok := e.(Sourced)
	if !ok {
		return 0, false
	}
	return s.Source(), true
}
