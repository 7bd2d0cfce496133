package events

import "github.com/okian/profilebridge/internal/domain/model"

// GetLeaderboardsStarted is raised when the leaderboard list is requested.
type GetLeaderboardsStarted struct {
	Provider model.Provider
	Payload  string
}

// GetLeaderboardsFinished carries the provider's leaderboards.
type GetLeaderboardsFinished struct {
	Provider     model.Provider
	Leaderboards []model.Leaderboard
	Payload      string
	Issues       []Diagnostic
}

// GetLeaderboardsFailed is raised when listing leaderboards fails.
type GetLeaderboardsFailed struct {
	Provider model.Provider
	Message  string
	Payload  string
}

// GetScoresStarted is raised when a page of scores is requested.
type GetScoresStarted struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	FromStart   bool
	Payload     string
}

// GetScoresFinished carries one page of scores of Leaderboard.
type GetScoresFinished struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	Scores      []model.Score
	HasMore     bool
	Payload     string
	Issues      []Diagnostic
}

// GetScoresFailed is raised when fetching scores fails.
type GetScoresFailed struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	FromStart   bool
	Message     string
	Payload     string
}

// SubmitScoreStarted is raised when a score submission begins.
type SubmitScoreStarted struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	Payload     string
}

// SubmitScoreFinished carries the score as recorded by the provider.
type SubmitScoreFinished struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	Score       model.Score
	Payload     string
}

// SubmitScoreFailed is raised when a score submission fails.
type SubmitScoreFailed struct {
	Provider    model.Provider
	Leaderboard model.Leaderboard
	Message     string
	Payload     string
}

// ShowLeaderboards is raised when the provider's native leaderboard UI opens.
type ShowLeaderboards struct {
	Provider model.Provider
	Payload  string
}

func (GetLeaderboardsStarted) Kind() Kind  { return KindGetLeaderboardsStarted }
func (GetLeaderboardsFinished) Kind() Kind { return KindGetLeaderboardsFinished }
func (GetLeaderboardsFailed) Kind() Kind   { return KindGetLeaderboardsFailed }
func (GetScoresStarted) Kind() Kind        { return KindGetScoresStarted }
func (GetScoresFinished) Kind() Kind       { return KindGetScoresFinished }
func (GetScoresFailed) Kind() Kind         { return KindGetScoresFailed }
func (SubmitScoreStarted) Kind() Kind      { return KindSubmitScoreStarted }
func (SubmitScoreFinished) Kind() Kind     { return KindSubmitScoreFinished }
func (SubmitScoreFailed) Kind() Kind       { return KindSubmitScoreFailed }
func (ShowLeaderboards) Kind() Kind        { return KindShowLeaderboards }

func (e GetLeaderboardsStarted) Source() model.Provider  { return e.Provider }
func (e GetLeaderboardsFinished) Source() model.Provider { return e.Provider }
func (e GetLeaderboardsFailed) Source() model.Provider   { return e.Provider }
func (e GetScoresStarted) Source() model.Provider        { return e.Provider }
func (e GetScoresFinished) Source() model.Provider       { return e.Provider }
func (e GetScoresFailed) Source() model.Provider         { return e.Provider }
func (e SubmitScoreStarted) Source() model.Provider      { return e.Provider }
func (e SubmitScoreFinished) Source() model.Provider     { return e.Provider }
func (e SubmitScoreFailed) Source() model.Provider       { return e.Provider }
func (e ShowLeaderboards) Source() model.Provider        { return e.Provider }

func (e GetLeaderboardsFinished) Diagnostics() []Diagnostic { return e.Issues }
func (e GetScoresFinished) Diagnostics() []Diagnostic       { return e.Issues }
