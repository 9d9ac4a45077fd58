package entity

import (
	"strings"
	"time"
)

type LivenessChallenge string

const (
	ChallengeLookStraight LivenessChallenge = "LOOK_STRAIGHT"
	ChallengeBlink        LivenessChallenge = "BLINK"
	ChallengeTurnLeft     LivenessChallenge = "TURN_LEFT"
)

// ChallengeOrder is the sequence a liveness session walks through.
var ChallengeOrder = []LivenessChallenge{
	ChallengeLookStraight,
	ChallengeBlink,
	ChallengeTurnLeft,
}

// ParseChallenge normalizes s case-insensitively and reports whether it names
// a known challenge.
func ParseChallenge(s string) (LivenessChallenge, bool) {
	c := LivenessChallenge(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case ChallengeLookStraight, ChallengeBlink, ChallengeTurnLeft:
		return c, true
	default:
		return "", false
	}
}

// VerdictOutcome tags how a verdict was reached. It is logged, never returned
// to API callers.
type VerdictOutcome string

const (
	OutcomeOK                VerdictOutcome = "ok"
	OutcomeOracleFailed      VerdictOutcome = "oracle_failed"
	OutcomeOracleTimeout     VerdictOutcome = "oracle_timeout"
	OutcomeUnparseable       VerdictOutcome = "unparseable"
	OutcomeInvalidShape      VerdictOutcome = "invalid_shape"
	OutcomeOutOfOrder        VerdictOutcome = "out_of_order"
	OutcomeIdentityMismatch  VerdictOutcome = "identity_mismatch"
	OutcomeIdentityUnchecked VerdictOutcome = "identity_unchecked"
)

type LivenessVerdict struct {
	Verified   bool              `json:"verified"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
	Challenge  LivenessChallenge `json:"challenge"`
	Outcome    VerdictOutcome    `json:"-"`
}

type SessionState string

const (
	StateAwaitingStraight SessionState = "AWAITING_STRAIGHT"
	StateAwaitingBlink    SessionState = "AWAITING_BLINK"
	StateAwaitingTurn     SessionState = "AWAITING_TURN"
	StateComplete         SessionState = "COMPLETE"
)

// ExpectedChallenge returns the challenge the state is waiting for, or false
// once the session is complete.
func (s SessionState) ExpectedChallenge() (LivenessChallenge, bool) {
	switch s {
	case StateAwaitingStraight:
		return ChallengeLookStraight, true
	case StateAwaitingBlink:
		return ChallengeBlink, true
	case StateAwaitingTurn:
		return ChallengeTurnLeft, true
	default:
		return "", false
	}
}

// Next returns the state reached after the expected challenge passes.
func (s SessionState) Next() SessionState {
	switch s {
	case StateAwaitingStraight:
		return StateAwaitingBlink
	case StateAwaitingBlink:
		return StateAwaitingTurn
	default:
		return StateComplete
	}
}

type PhaseResult struct {
	Challenge  LivenessChallenge `json:"challenge"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
	VerifiedAt time.Time         `json:"verified_at"`
}

type LivenessSession struct {
	ID              string            `json:"id"`
	State           SessionState      `json:"state"`
	Phases          []PhaseResult     `json:"phases"`
	Anchor          Embedding         `json:"anchor,omitempty"`
	Reference       Embedding         `json:"reference,omitempty"`
	ReferenceResult *ComparisonResult `json:"reference_result,omitempty"`
	Attempts        int               `json:"attempts"`
	CreatedAt       time.Time         `json:"created_at"`
	ExpiresAt       time.Time         `json:"expires_at"`
}
