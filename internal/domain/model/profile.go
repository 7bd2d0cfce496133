package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// UserProfile is a user as reported by a provider.
// Extra holds provider-specific JSON values; numbers are kept as
// json.Number so they re-encode with their original text.
type UserProfile struct {
	Provider   Provider
	ProfileID  string
	Username   string
	Email      string
	FirstName  string
	LastName   string
	AvatarLink string
	Location   string
	Gender     string
	Language   string
	Birthday   string
	Extra      map[string]any
}

type profileJSON struct {
	Provider   *Provider      `json:"provider"`
	ProfileID  string         `json:"id"`
	Username   string         `json:"username,omitempty"`
	Email      string         `json:"email,omitempty"`
	FirstName  string         `json:"firstName,omitempty"`
	LastName   string         `json:"lastName,omitempty"`
	AvatarLink string         `json:"avatarLink,omitempty"`
	Location   string         `json:"location,omitempty"`
	Gender     string         `json:"gender,omitempty"`
	Language   string         `json:"language,omitempty"`
	Birthday   string         `json:"birthday,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Validate checks the identifying fields.
func (u UserProfile) Validate() error {
	if !u.Provider.Valid() {
		return fmt.Errorf("%w: user profile: %w", ErrInvalidRecord, fmt.Errorf("%w: %d", ErrUnknownProvider, int(u.Provider)))
	}
	if strings.TrimSpace(u.ProfileID) == "" {
		return fmt.Errorf("%w: user profile: missing id", ErrInvalidRecord)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (u UserProfile) MarshalJSON() ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	p := u.Provider
	return json.Marshal(profileJSON{
		Provider:   &p,
		ProfileID:  u.ProfileID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		AvatarLink: u.AvatarLink,
		Location:   u.Location,
		Gender:     u.Gender,
		Language:   u.Language,
		Birthday:   u.Birthday,
		Extra:      u.Extra,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var w profileJSON
	if err := decodeExact(data, &w); err != nil {
		return fmt.Errorf("%w: user profile: %w", ErrInvalidRecord, err)
	}
	if w.Provider == nil {
		return fmt.Errorf("%w: user profile: missing provider", ErrInvalidRecord)
	}
	v := UserProfile{
		Provider:   *w.Provider,
		ProfileID:  w.ProfileID,
		Username:   w.Username,
		Email:      w.Email,
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		AvatarLink: w.AvatarLink,
		Location:   w.Location,
		Gender:     w.Gender,
		Language:   w.Language,
		Birthday:   w.Birthday,
		Extra:      w.Extra,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*u = v
	return nil
}

// EncodeProfile returns the canonical JSON text of u.
func EncodeProfile(u UserProfile) ([]byte, error) {
	return json.Marshal(u)
}

// DecodeProfile parses the canonical JSON text of a user profile.
func DecodeProfile(data []byte) (UserProfile, error) {
	var u UserProfile
	if err := json.Unmarshal(data, &u); err != nil {
		return UserProfile{}, wrapRecord("user profile", err)
	}
	return u, nil
}

// decodeExact decodes a single JSON value into v without rounding numbers
// held in interface values.
func decodeExact(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// wrapRecord makes sure syntax errors from encoding/json also carry
// ErrInvalidRecord.
func wrapRecord(what string, err error) error {
	if isRecordErr(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, what, err)
}
