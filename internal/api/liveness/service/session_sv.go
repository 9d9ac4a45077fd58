package livenessService

import (
	"context"
	"errors"
	"fmt"
	"math"

	"FaceVerify/internal/api/face"
	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/log"

	"github.com/google/uuid"
)

func (s *livenessService) CreateSession(ctx context.Context, reference []float64) (entity.LivenessSession, error) {
	if len(reference) > 0 {
		if err := validateReference(reference); err != nil {
			return entity.LivenessSession{}, err
		}
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return entity.LivenessSession{}, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now().UTC()
	session := entity.LivenessSession{
		ID:        id.String(),
		State:     entity.StateAwaitingStraight,
		Phases:    []entity.PhaseResult{},
		Reference: reference,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	if err := s.repository.Create(ctx, session, s.cfg.SessionTTL); err != nil {
		return entity.LivenessSession{}, err
	}

	s.log.WithFields(log.Fields{
		"request_id":    contextPkg.GetRequestID(ctx),
		"session_id":    session.ID,
		"has_reference": len(reference) > 0,
		"expires_at":    session.ExpiresAt,
	}).Info("Liveness session created")

	return session, nil
}

func (s *livenessService) GetSession(ctx context.Context, id string) (entity.LivenessSession, error) {
	return s.repository.Get(ctx, id)
}

func (s *livenessService) DeleteSession(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}

func (s *livenessService) VerifySession(ctx context.Context, id string, image []byte, challenge string) (SessionStep, error) {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return SessionStep{}, err
	}

	expected, ok := session.State.ExpectedChallenge()
	if !ok {
		return SessionStep{}, liveness.ErrSessionComplete
	}

	fields := log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": session.ID,
		"expected":   expected,
	}

	if challenge != "" {
		submitted, ok := entity.ParseChallenge(challenge)
		if !ok {
			return SessionStep{}, fmt.Errorf("%w: got %q", liveness.ErrUnsupportedChallenge, challenge)
		}
		if submitted != expected {
			fields["submitted"] = submitted
			s.log.WithFields(fields).Warn("Liveness challenge submitted out of order")
			return SessionStep{
				Verdict: entity.LivenessVerdict{
					Verified:  false,
					Reason:    liveness.ReasonOutOfOrder,
					Challenge: submitted,
					Outcome:   entity.OutcomeOutOfOrder,
				},
				Session: session,
			}, nil
		}
	}

	if len(image) == 0 {
		return SessionStep{}, liveness.ErrImageRequired
	}

	verdict, err := s.Verify(ctx, image, string(expected))
	if err != nil {
		return SessionStep{}, err
	}

	session.Attempts++

	switch {
	case verdict.Verified && s.cfg.IdentityBinding:
		verdict = s.bindIdentity(ctx, &session, expected, image, verdict)
	case verdict.Verified && expected == entity.ChallengeLookStraight && len(session.Reference) > 0:
		s.captureAnchor(ctx, &session, image)
	}

	advanced := false
	if verdict.Verified {
		session.Phases = append(session.Phases, entity.PhaseResult{
			Challenge:  expected,
			Confidence: verdict.Confidence,
			Reason:     verdict.Reason,
			VerifiedAt: s.now().UTC(),
		})
		session.State = session.State.Next()
		advanced = true

		if session.State == entity.StateComplete && len(session.Reference) > 0 && len(session.Anchor) > 0 {
			result, err := s.faceService.Compare(session.Anchor, session.Reference)
			if err != nil {
				fields["error"] = err.Error()
				s.log.WithFields(fields).Warn("Reference comparison failed")
			} else {
				session.ReferenceResult = &result
			}
		}
	}

	if err := s.repository.Save(ctx, session, session.ExpiresAt.Sub(s.now())); err != nil {
		return SessionStep{}, err
	}

	fields["verified"] = verdict.Verified
	fields["state"] = session.State
	fields["attempts"] = session.Attempts
	s.log.WithFields(fields).Info("Liveness session step processed")

	return SessionStep{
		Verdict:  verdict,
		Session:  session,
		Advanced: advanced,
	}, nil
}

// bindIdentity anchors the session on the LOOK_STRAIGHT face and requires
// every later frame to show the same face.
func (s *livenessService) bindIdentity(
	ctx context.Context,
	session *entity.LivenessSession,
	challenge entity.LivenessChallenge,
	image []byte,
	verdict entity.LivenessVerdict,
) entity.LivenessVerdict {
	fields := log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": session.ID,
		"challenge":  challenge,
	}

	if s.faceService == nil {
		return identityFailure(verdict, liveness.ReasonIdentityUnchecked, entity.OutcomeIdentityUnchecked)
	}

	extracted, err := s.faceService.Extract(ctx, image)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Identity check could not embed frame")
		if errors.Is(err, face.ErrFaceNotDetected) {
			return identityFailure(verdict, liveness.ReasonNoFaceForIdentity, entity.OutcomeIdentityMismatch)
		}
		return identityFailure(verdict, liveness.ReasonIdentityUnchecked, entity.OutcomeIdentityUnchecked)
	}

	if challenge == entity.ChallengeLookStraight || len(session.Anchor) == 0 {
		session.Anchor = extracted.Embedding
		return verdict
	}

	result, err := s.faceService.Compare(session.Anchor, extracted.Embedding)
	if err != nil || !result.Match {
		fields["distance"] = result.EuclideanDistance
		s.log.WithFields(fields).Warn("Session frame does not match anchor")
		return identityFailure(verdict, liveness.ReasonAnchorMismatch, entity.OutcomeIdentityMismatch)
	}

	return verdict
}

// captureAnchor records the LOOK_STRAIGHT face for the reference comparison
// when identity binding is off. Failures leave the session without a result.
func (s *livenessService) captureAnchor(ctx context.Context, session *entity.LivenessSession, image []byte) {
	if s.faceService == nil {
		return
	}
	extracted, err := s.faceService.Extract(ctx, image)
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Warn("Could not capture session anchor")
		return
	}
	session.Anchor = extracted.Embedding
}

func identityFailure(v entity.LivenessVerdict, reason string, outcome entity.VerdictOutcome) entity.LivenessVerdict {
	return entity.LivenessVerdict{
		Verified:   false,
		Confidence: 0,
		Reason:     reason,
		Challenge:  v.Challenge,
		Outcome:    outcome,
	}
}

func validateReference(reference []float64) error {
	if len(reference) != face.EmbeddingDimensions {
		return fmt.Errorf("%w: reference has %d", face.ErrDimensionMismatch, len(reference))
	}
	var sq float64
	for _, v := range reference {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return face.ErrInvalidEmbedding
		}
		sq += v * v
	}
	if sq == 0 {
		return face.ErrInvalidEmbedding
	}
	return nil
}
