package livenessService

import (
	"strings"
	"testing"

	"FaceVerify/internal/api/liveness"
	"FaceVerify/internal/entity"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  ```json {\"a\":1}```  ", want: `{"a":1}`},
	}

	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.LivenessVerdict
	}{
		{
			name: "valid",
			raw:  `{"verified": true, "confidence": 0.93, "reason": "eyes closed"}`,
			want: entity.LivenessVerdict{Verified: true, Confidence: 0.93, Reason: "eyes closed", Outcome: entity.OutcomeOK},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"verified\": false, \"confidence\": 0.2, \"reason\": \"eyes open\"}\n```",
			want: entity.LivenessVerdict{Verified: false, Confidence: 0.2, Reason: "eyes open", Outcome: entity.OutcomeOK},
		},
		{
			name: "integer confidence bounds",
			raw:  `{"verified": true, "confidence": 1, "reason": ""}`,
			want: entity.LivenessVerdict{Verified: true, Confidence: 1, Reason: "", Outcome: entity.OutcomeOK},
		},
		{name: "prose", raw: "The person is blinking.", want: parseFailed()},
		{name: "empty", raw: "", want: parseFailed()},
		{name: "array", raw: `[true, 0.9, "ok"]`, want: parseFailed()},
		{name: "null", raw: `null`, want: parseFailed()},
		{name: "trailing text", raw: `{"verified": true, "confidence": 0.9, "reason": "ok"} done`, want: parseFailed()},
		{name: "missing reason", raw: `{"verified": true, "confidence": 0.9}`, want: invalidShape()},
		{name: "missing verified", raw: `{"confidence": 0.9, "reason": "ok"}`, want: invalidShape()},
		{name: "string verified", raw: `{"verified": "true", "confidence": 0.9, "reason": "ok"}`, want: invalidShape()},
		{name: "null verified", raw: `{"verified": null, "confidence": 0.9, "reason": "ok"}`, want: invalidShape()},
		{name: "string confidence", raw: `{"verified": true, "confidence": "high", "reason": "ok"}`, want: invalidShape()},
		{name: "confidence above one", raw: `{"verified": true, "confidence": 1.2, "reason": "ok"}`, want: invalidShape()},
		{name: "negative confidence", raw: `{"verified": true, "confidence": -0.1, "reason": "ok"}`, want: invalidShape()},
		{name: "numeric reason", raw: `{"verified": true, "confidence": 0.9, "reason": 7}`, want: invalidShape()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseVerdict(tt.raw); got != tt.want {
				t.Errorf("ParseVerdict(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func parseFailed() entity.LivenessVerdict {
	return entity.LivenessVerdict{Reason: liveness.ReasonParseFailed, Outcome: entity.OutcomeUnparseable}
}

func invalidShape() entity.LivenessVerdict {
	return entity.LivenessVerdict{Reason: liveness.ReasonInvalidShape, Outcome: entity.OutcomeInvalidShape}
}

func TestInstruction(t *testing.T) {
	tests := []struct {
		challenge entity.LivenessChallenge
		contains  []string
	}{
		{entity.ChallengeLookStraight, []string{"Phase 1: Look Straight", "exactly ONE real human face", "Both eyes are clearly visible and OPEN"}},
		{entity.ChallengeBlink, []string{"Phase 2: Blink Detection", "PASS CRITERIA (be lenient)", "WIDE OPEN"}},
		{entity.ChallengeTurnLeft, []string{"Phase 3: Turn Left", "turned RIGHT instead", "3/4 view"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.challenge), func(t *testing.T) {
			text, ok := Instruction(tt.challenge)
			if !ok {
				t.Fatalf("no instruction for %s", tt.challenge)
			}
			want := append(tt.contains, `"verified": true or false`, "printed photo", "Return ONLY a valid JSON object")
			for _, s := range want {
				if !strings.Contains(text, s) {
					t.Errorf("instruction for %s is missing %q", tt.challenge, s)
				}
			}
		})
	}

	if _, ok := Instruction("SMILE"); ok {
		t.Error("Instruction(SMILE) reported ok")
	}
}

func TestLookStraightIsStrict(t *testing.T) {
	text, _ := Instruction(entity.ChallengeLookStraight)
	if strings.Contains(text, "be lenient") {
		t.Error("LOOK_STRAIGHT instruction must not ask for leniency")
	}
}
