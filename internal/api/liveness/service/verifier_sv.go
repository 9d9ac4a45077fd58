package livenessService

import (
	"context"
	"errors"
	"fmt"

	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"
	contextPkg "FaceVerify/pkg/context"
	"FaceVerify/pkg/imaging"
	"FaceVerify/pkg/log"
)

func (s *livenessService) Verify(ctx context.Context, image []byte, challenge string) (entity.LivenessVerdict, error) {
	c, ok := entity.ParseChallenge(challenge)
	if !ok {
		return entity.LivenessVerdict{}, fmt.Errorf("%w: got %q", liveness.ErrUnsupportedChallenge, challenge)
	}
	if len(image) == 0 {
		return entity.LivenessVerdict{}, liveness.ErrImageRequired
	}
	if s.oracle == nil {
		return entity.LivenessVerdict{}, liveness.ErrOracleUnavailable
	}

	instruction, _ := Instruction(c)
	fields := log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"challenge":  c,
		"provider":   s.oracle.Provider(),
	}

	var verdict entity.LivenessVerdict
	raw, err := s.oracle.AnalyzeImage(ctx, image, imaging.SniffMIME(image), instruction)
	switch {
	case err != nil && (ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)):
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Liveness oracle timed out")
		verdict = failedVerdict(liveness.ReasonOracleTimeout, entity.OutcomeOracleTimeout)
	case err != nil:
		fields["error"] = err.Error()
		s.log.WithFields(fields).Error("Liveness oracle request failed")
		verdict = failedVerdict(liveness.ReasonOracleFailed, entity.OutcomeOracleFailed)
	default:
		verdict = ParseVerdict(raw)
		if verdict.Outcome != entity.OutcomeOK {
			fields["response_length"] = len(raw)
			s.log.WithFields(fields).Warn("Liveness oracle returned a malformed response")
		}
	}
	verdict.Challenge = c

	s.log.WithFields(log.Fields{
		"request_id": fields["request_id"],
		"challenge":  c,
		"verified":   verdict.Verified,
		"confidence": verdict.Confidence,
		"outcome":    verdict.Outcome,
	}).Info("Liveness challenge evaluated")

	return verdict, nil
}
