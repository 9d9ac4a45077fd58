package liveness

import (
	"time"

	"FaceVerify/internal/entity"
)

// Verdict reasons produced by the verifier itself rather than by the oracle.
const (
	ReasonParseFailed       = "parse failed"
	ReasonInvalidShape      = "invalid response shape"
	ReasonOracleFailed      = "oracle request failed"
	ReasonOracleTimeout     = "oracle timed out"
	ReasonOutOfOrder        = "challenge out of order"
	ReasonAnchorMismatch    = "face does not match session anchor"
	ReasonNoFaceForIdentity = "no face detected for identity check"
	ReasonIdentityUnchecked = "identity check unavailable"
)

type VerifyRequest struct {
	Challenge string `form:"challenge" json:"challenge"`
	// Action is the field name older clients send instead of challenge.
	Action string `form:"action" json:"action"`
}

func (r VerifyRequest) ChallengeValue() string {
	if r.Challenge != "" {
		return r.Challenge
	}
	return r.Action
}

type CreateSessionRequest struct {
	ReferenceEmbedding []float64 `json:"reference_embedding" validate:"omitempty,len=512"`
}

type SessionResponse struct {
	SessionID       string                   `json:"session_id"`
	State           entity.SessionState      `json:"state"`
	NextChallenge   entity.LivenessChallenge `json:"next_challenge,omitempty"`
	Phases          []entity.PhaseResult     `json:"phases"`
	Attempts        int                      `json:"attempts"`
	HasReference    bool                     `json:"has_reference"`
	ReferenceResult *entity.ComparisonResult `json:"reference_result,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	ExpiresAt       time.Time                `json:"expires_at"`
}

type SessionVerifyResponse struct {
	entity.LivenessVerdict
	SessionID       string                   `json:"session_id"`
	State           entity.SessionState      `json:"state"`
	NextChallenge   entity.LivenessChallenge `json:"next_challenge,omitempty"`
	Complete        bool                     `json:"complete"`
	ReferenceResult *entity.ComparisonResult `json:"reference_result,omitempty"`
}

func NewSessionResponse(s entity.LivenessSession) SessionResponse {
	next, _ := s.State.ExpectedChallenge()
	phases := s.Phases
	if phases == nil {
		phases = []entity.PhaseResult{}
	}
	return SessionResponse{
		SessionID:       s.ID,
		State:           s.State,
		NextChallenge:   next,
		Phases:          phases,
		Attempts:        s.Attempts,
		HasReference:    len(s.Reference) > 0,
		ReferenceResult: s.ReferenceResult,
		CreatedAt:       s.CreatedAt,
		ExpiresAt:       s.ExpiresAt,
	}
}
