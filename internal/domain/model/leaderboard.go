package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Leaderboard identifies a provider-side leaderboard.
type Leaderboard struct {
	ID       string
	Provider Provider
	Name     string
	IconURL  string
}

type leaderboardJSON struct {
	ID       string    `json:"itemId"`
	Provider *Provider `json:"provider"`
	Name     string    `json:"name,omitempty"`
	IconURL  string    `json:"iconUrl,omitempty"`
}

// Validate checks the identifying fields.
func (l Leaderboard) Validate() error {
	if !l.Provider.Valid() {
		return fmt.Errorf("%w: leaderboard: %w", ErrInvalidRecord, fmt.Errorf("%w: %d", ErrUnknownProvider, int(l.Provider)))
	}
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: leaderboard: missing itemId", ErrInvalidRecord)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Leaderboard) MarshalJSON() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	p := l.Provider
	return json.Marshal(leaderboardJSON{ID: l.ID, Provider: &p, Name: l.Name, IconURL: l.IconURL})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Leaderboard) UnmarshalJSON(data []byte) error {
	var w leaderboardJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: leaderboard: %w", ErrInvalidRecord, err)
	}
	if w.Provider == nil {
		return fmt.Errorf("%w: leaderboard: missing provider", ErrInvalidRecord)
	}
	v := Leaderboard{ID: w.ID, Provider: *w.Provider, Name: w.Name, IconURL: w.IconURL}
	if err := v.Validate(); err != nil {
		return err
	}
	*l = v
	return nil
}

// EncodeLeaderboard returns the canonical JSON text of l.
func EncodeLeaderboard(l Leaderboard) ([]byte, error) {
	return json.Marshal(l)
}

// DecodeLeaderboard parses the canonical JSON text of a leaderboard.
func DecodeLeaderboard(data []byte) (Leaderboard, error) {
	var l Leaderboard
	if err := json.Unmarshal(data, &l); err != nil {
		return Leaderboard{}, wrapRecord("leaderboard", err)
	}
	return l, nil
}
