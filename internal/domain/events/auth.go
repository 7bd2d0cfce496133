package events

import "github.com/okian/profilebridge/internal/domain/model"

// LoginStarted is raised when a login flow begins.
type LoginStarted struct {
	Provider  model.Provider
	AutoLogin bool
	Payload   string
}

// LoginFinished carries the profile of the user who logged in. The provider
// is the profile's provider.
type LoginFinished struct {
	Profile   model.UserProfile
	AutoLogin bool
	Payload   string
}

// LoginCancelled is raised when the user backs out of a login flow.
type LoginCancelled struct {
	Provider  model.Provider
	AutoLogin bool
	Payload   string
}

// LoginFailed is raised when a login flow fails.
type LoginFailed struct {
	Provider  model.Provider
	Message   string
	AutoLogin bool
	Payload   string
}

// LogoutStarted is raised when a logout begins.
type LogoutStarted struct {
	Provider model.Provider
}

// LogoutFinished is raised when a logout completes.
type LogoutFinished struct {
	Provider model.Provider
}

// LogoutFailed is raised when a logout fails.
type LogoutFailed struct {
	Provider model.Provider
	Message  string
}

func (LoginStarted) Kind() Kind   { return KindLoginStarted }
func (LoginFinished) Kind() Kind  { return KindLoginFinished }
func (LoginCancelled) Kind() Kind { return KindLoginCancelled }
func (LoginFailed) Kind() Kind    { return KindLoginFailed }
func (LogoutStarted) Kind() Kind  { return KindLogoutStarted }
func (LogoutFinished) Kind() Kind { return KindLogoutFinished }
func (LogoutFailed) Kind() Kind   { return KindLogoutFailed }

func (e LoginStarted) Source() model.Provider   { return e.Provider }
func (e LoginFinished) Source() model.Provider  { return e.Profile.Provider }
func (e LoginCancelled) Source() model.Provider { return e.Provider }
func (e LoginFailed) Source() model.Provider    { return e.Provider }
func (e LogoutStarted) Source() model.Provider  { return e.Provider }
func (e LogoutFinished) Source() model.Provider { return e.Provider }
func (e LogoutFailed) Source() model.Provider   { return e.Provider }
