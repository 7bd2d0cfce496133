package events

import "github.com/okian/profilebridge/internal/domain/model"

// ProfileInitialized is raised once the profile module is ready.
type ProfileInitialized struct{}

// UserRating is raised when the user was sent to the store rating page.
type UserRating struct{}

// UserProfileUpdated is raised when a stored user profile changes.
type UserProfileUpdated struct {
	Profile model.UserProfile
}

func (ProfileInitialized) Kind() Kind { return KindProfileInitialized }
func (UserRating) Kind() Kind         { return KindUserRating }
func (UserProfileUpdated) Kind() Kind { return KindUserProfileUpdated }

func (e UserProfileUpdated) Source() model.Provider { return e.Profile.Provider }
