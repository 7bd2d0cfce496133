package events

import "github.com/okian/profilebridge/internal/domain/model"

// SocialActionStarted is raised when a generic social action (status update,
// story, image upload) begins.
type SocialActionStarted struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Payload    string
}

// SocialActionFinished is raised when a social action completes.
type SocialActionFinished struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Payload    string
}

// SocialActionCancelled is raised when a social action is cancelled.
type SocialActionCancelled struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Payload    string
}

// SocialActionFailed is raised when a social action fails.
type SocialActionFailed struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Message    string
	Payload    string
}

// GetContactsStarted is raised when a contacts page is requested.
// FromStart resets pagination.
type GetContactsStarted struct {
	Provider  model.Provider
	FromStart bool
	Payload   string
}

// GetContactsFinished carries one page of contacts.
type GetContactsFinished struct {
	Provider model.Provider
	Contacts []model.UserProfile
	HasMore  bool
	Payload  string
	Issues   []Diagnostic
}

// GetContactsFailed is raised when fetching contacts fails.
type GetContactsFailed struct {
	Provider  model.Provider
	Message   string
	FromStart bool
	Payload   string
}

// GetFeedStarted is raised when a feed page is requested.
type GetFeedStarted struct {
	Provider  model.Provider
	FromStart bool
	Payload   string
}

// GetFeedFinished carries one page of feed posts.
type GetFeedFinished struct {
	Provider model.Provider
	Feeds    []string
	HasMore  bool
	Payload  string
	Issues   []Diagnostic
}

// GetFeedFailed is raised when fetching the feed fails.
type GetFeedFailed struct {
	Provider  model.Provider
	Message   string
	FromStart bool
	Payload   string
}

// InviteStarted is raised when an invite dialog opens.
type InviteStarted struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Payload    string
}

// InviteFinished carries the provider request id and the invited user ids.
type InviteFinished struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	RequestID  string
	InvitedIDs []string
	Payload    string
	Issues     []Diagnostic
}

// InviteCancelled is raised when the user closes the invite dialog.
type InviteCancelled struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Payload    string
}

// InviteFailed is raised when an invite fails.
type InviteFailed struct {
	Provider   model.Provider
	ActionType model.SocialActionType
	Message    string
	Payload    string
}

func (SocialActionStarted) Kind() Kind   { return KindSocialActionStarted }
func (SocialActionFinished) Kind() Kind  { return KindSocialActionFinished }
func (SocialActionCancelled) Kind() Kind { return KindSocialActionCancelled }
func (SocialActionFailed) Kind() Kind    { return KindSocialActionFailed }
func (GetContactsStarted) Kind() Kind    { return KindGetContactsStarted }
func (GetContactsFinished) Kind() Kind   { return KindGetContactsFinished }
func (GetContactsFailed) Kind() Kind     { return KindGetContactsFailed }
func (GetFeedStarted) Kind() Kind        { return KindGetFeedStarted }
func (GetFeedFinished) Kind() Kind       { return KindGetFeedFinished }
func (GetFeedFailed) Kind() Kind         { return KindGetFeedFailed }
func (InviteStarted) Kind() Kind         { return KindInviteStarted }
func (InviteFinished) Kind() Kind        { return KindInviteFinished }
func (InviteCancelled) Kind() Kind       { return KindInviteCancelled }
func (InviteFailed) Kind() Kind          { return KindInviteFailed }

func (e SocialActionStarted) Source() model.Provider   { return e.Provider }
func (e SocialActionFinished) Source() model.Provider  { return e.Provider }
func (e SocialActionCancelled) Source() model.Provider { return e.Provider }
func (e SocialActionFailed) Source() model.Provider    { return e.Provider }
func (e GetContactsStarted) Source() model.Provider    { return e.Provider }
func (e GetContactsFinished) Source() model.Provider   { return e.Provider }
func (e GetContactsFailed) Source() model.Provider     { return e.Provider }
func (e GetFeedStarted) Source() model.Provider        { return e.Provider }
func (e GetFeedFinished) Source() model.Provider       { return e.Provider }
func (e GetFeedFailed) Source() model.Provider         { return e.Provider }
func (e InviteStarted) Source() model.Provider         { return e.Provider }
func (e InviteFinished) Source() model.Provider        { return e.Provider }
func (e InviteCancelled) Source() model.Provider       { return e.Provider }
func (e InviteFailed) Source() model.Provider          { return e.Provider }

func (e GetContactsFinished) Diagnostics() []Diagnostic { return e.Issues }
func (e GetFeedFinished) Diagnostics() []Diagnostic     { return e.Issues }
func (e InviteFinished) Diagnostics() []Diagnostic      { return e.Issues }
