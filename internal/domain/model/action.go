package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SocialActionType names the social operation a lifecycle event belongs to.
type SocialActionType int

// Known social action types.
const (
	UpdateStatus SocialActionType = iota
	UpdateStory
	UploadImage
	GetContacts
	GetFeed
	Invite
)

var actionNames = [...]string{
	UpdateStatus: "UPDATE_STATUS",
	UpdateStory:  "UPDATE_STORY",
	UploadImage:  "UPLOAD_IMAGE",
	GetContacts:  "GET_CONTACTS",
	GetFeed:      "GET_FEED",
	Invite:       "INVITE",
}

// SocialActionTypes returns every known action type in value order.
func SocialActionTypes() []SocialActionType {
	out := make([]SocialActionType, len(actionNames))
	for i := range actionNames {
		out[i] = SocialActionType(i)
	}
	return out
}

// Valid reports whether t is a known action type.
func (t SocialActionType) Valid() bool {
	return t >= 0 && int(t) < len(actionNames)
}

func (t SocialActionType) String() string {
	if !t.Valid() {
		return "action(" + strconv.Itoa(int(t)) + ")"
	}
	return actionNames[t]
}

// ParseSocialActionType resolves an action type from its name
// (case-insensitive) or its decimal value.
func ParseSocialActionType(s string) (SocialActionType, error) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		t := SocialActionType(n)
		if !t.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSocialActionType, s)
		}
		return t, nil
	}
	for i, name := range actionNames {
		if strings.EqualFold(name, v) {
			return SocialActionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSocialActionType, s)
}
