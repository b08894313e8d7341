package models

// Phase represents the stage of the current round.
type Phase string

const (
	// PhaseViewing is the initial stage: the panorama is visible and the countdown runs.
	PhaseViewing Phase = "viewing"
	// PhaseGuessing accepts exactly one map click.
	PhaseGuessing Phase = "guessing"
	// PhaseScored exposes the result until the next round starts.
	PhaseScored Phase = "scored"
)

// Outcome classifies a scored guess.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Hint holds the per-round hint state. Text stays empty until requested.
type Hint struct {
	Used bool   `json:"used"`
	Text string `json:"text,omitempty"`
}

// Snapshot is the read-only view of the round state machine handed to the
// presentation surface. Truth is only populated once the round is scored.
type Snapshot struct {
	Round              uint64      `json:"round"`
	Phase              Phase       `json:"phase"`
	Truth              *Coordinate `json:"truth,omitempty"`
	Guess              *Coordinate `json:"guess,omitempty"`
	CountdownRemaining int         `json:"countdown_remaining"`
	Score              int         `json:"score"`
	DistanceMeters     float64     `json:"distance_meters"`
	Outcome            Outcome     `json:"outcome"`
	Hint               Hint        `json:"hint"`
	RateLimited        bool        `json:"rate_limited"`
	RateLimitMessage   string      `json:"rate_limit_message,omitempty"`
	Fatal              string      `json:"fatal,omitempty"`
}
