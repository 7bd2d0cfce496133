package model

import (
	"encoding/json"
	"fmt"
)

// Score is one entry of a leaderboard, owned by exactly one Leaderboard.
type Score struct {
	Leaderboard Leaderboard
	Player      UserProfile
	Rank        int
	Value       int64
}

type scoreJSON struct {
	Leaderboard *Leaderboard `json:"leaderboard"`
	Player      *UserProfile `json:"userProfile"`
	Rank        int          `json:"rank"`
	Value       int64        `json:"value"`
}

// Validate checks the nested records.
func (s Score) Validate() error {
	if err := s.Leaderboard.Validate(); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	if err := s.Player.Validate(); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	lb, player := s.Leaderboard, s.Player
	return json.Marshal(scoreJSON{Leaderboard: &lb, Player: &player, Rank: s.Rank, Value: s.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	var w scoreJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return wrapRecord("score", err)
	}
	switch {
	case w.Leaderboard == nil:
		return fmt.Errorf("%w: score: missing leaderboard", ErrInvalidRecord)
	case w.Player == nil:
		return fmt.Errorf("%w: score: missing userProfile", ErrInvalidRecord)
	}
	*s = Score{Leaderboard: *w.Leaderboard, Player: *w.Player, Rank: w.Rank, Value: w.Value}
	return nil
}

// EncodeScore returns the canonical JSON text of s.
func EncodeScore(s Score) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeScore parses the canonical JSON text of a score.
func DecodeScore(data []byte) (Score, error) {
	var s Score
	if err := json.Unmarshal(data, &s); err != nil {
		return Score{}, wrapRecord("score", err)
	}
	return s, nil
}
