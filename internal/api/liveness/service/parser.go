package livenessService

import (
	"bytes"
	"math"
	"strings"

	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StripCodeFences removes a surrounding markdown code fence, with or without
// a json language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseVerdict reads the oracle reply. Every field must be present with its
// exact type and confidence must lie in [0, 1]; anything else yields a
// negative verdict with a fixed reason.
func ParseVerdict(raw string) entity.LivenessVerdict {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &fields); err != nil || fields == nil {
		return failedVerdict(liveness.ReasonParseFailed, entity.OutcomeUnparseable)
	}

	var (
		verified   bool
		confidence float64
		reason     string
	)
	if !decodeField(fields, "verified", &verified) ||
		!decodeField(fields, "confidence", &confidence) ||
		!decodeField(fields, "reason", &reason) {
		return failedVerdict(liveness.ReasonInvalidShape, entity.OutcomeInvalidShape)
	}

	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return failedVerdict(liveness.ReasonInvalidShape, entity.OutcomeInvalidShape)
	}

	return entity.LivenessVerdict{
		Verified:   verified,
		Confidence: confidence,
		Reason:     reason,
		Outcome:    entity.OutcomeOK,
	}
}

func decodeField(fields map[string]jsoniter.RawMessage, name string, dest interface{}) bool {
	raw, ok := fields[name]
	if !ok {
		return false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func failedVerdict(reason string, outcome entity.VerdictOutcome) entity.LivenessVerdict {
	return entity.LivenessVerdict{
		Verified:   false,
		Confidence: 0,
		Reason:     reason,
		Outcome:    outcome,
	}
}
