package livenessService

import (
	"fmt"
	"strings"
	"text/template"

	"FaceVerify/internal/entity"
)

type challengePolicy struct {
	Phase    int
	Title    string
	Notice   string
	Checks   []string
	Pass     []string
	Fail     []string
	Examples []string
}

const instructionTemplate = `Analyze this image for eKYC liveness verification (Phase {{.Phase}}: {{.Title}}).
{{if .Notice}}
IMPORTANT: {{.Notice}}
{{end}}
Check if:
{{range $i, $c := .Checks}}{{inc $i}}. {{$c}}
{{end}}{{if .Pass}}
PASS CRITERIA (be lenient):
{{range .Pass}}- {{.}}
{{end}}{{end}}{{if .Fail}}
FAIL CRITERIA:
{{range .Fail}}- {{.}}
{{end}}{{end}}
Reject the image if it looks like a spoof: a printed photo (paper texture, edges), a phone or tablet screen (pixels, glare, bezels), a mask or 3D model, a video replay, or a synthetic render.

Return ONLY a valid JSON object with this exact format:
{
  "verified": true or false,
  "confidence": 0.0 to 1.0,
  "reason": "Brief explanation"
}

Examples:
{{range .Examples}}- {{.}}
{{end}}`

var policies = map[entity.LivenessChallenge]challengePolicy{
	entity.ChallengeLookStraight: {
		Phase: 1,
		Title: "Look Straight",
		Checks: []string{
			"There is exactly ONE real human face (not a photo, screen, or mask)",
			"The person is looking STRAIGHT at the camera (eyes facing forward)",
			"Both eyes are clearly visible and OPEN",
			"The face is well-lit and in focus",
		},
		Fail: []string{
			"Any deviation from the checks above fails, including more than one face or eyes looking away",
		},
		Examples: []string{
			`Real person looking straight: {"verified": true, "confidence": 0.95, "reason": "Real face detected, looking straight, both eyes open"}`,
			`Looking away: {"verified": false, "confidence": 0.3, "reason": "Face not looking straight at camera"}`,
			`Photo detected: {"verified": false, "confidence": 0.1, "reason": "Spoofing detected: appears to be a printed photo"}`,
		},
	},
	entity.ChallengeBlink: {
		Phase:  2,
		Title:  "Blink Detection",
		Notice: "This phase should PASS if the person's eyes are CLOSED, PARTIALLY CLOSED, or SQUINTING. The goal is to detect ANY eye closure movement, not just a perfect blink.",
		Checks: []string{
			"There is a real human face",
			"The eyes show any closure: fully closed, partially closed, squinting, eyelids lowered or narrowed",
			"The face is still a real person (not a photo or screen)",
		},
		Pass: []string{
			"Eyes closed or partially closed: PASS with high confidence",
			"Eyes squinting or narrowed: PASS with medium confidence",
			"Any visible eye closure attempt: PASS",
		},
		Fail: []string{
			"Only fail if the eyes are WIDE OPEN with no closure attempt",
			"Or if it is clearly a photo or screen",
		},
		Examples: []string{
			`Eyes fully closed: {"verified": true, "confidence": 0.95, "reason": "Eyes fully closed, perfect blink"}`,
			`Eyes squinting: {"verified": true, "confidence": 0.75, "reason": "Eyes squinting, closure detected"}`,
			`Eyes wide open: {"verified": false, "confidence": 0.2, "reason": "Eyes wide open, no blink detected"}`,
			`Photo or screen: {"verified": false, "confidence": 0.1, "reason": "Spoofing detected"}`,
		},
	},
	entity.ChallengeTurnLeft: {
		Phase:  3,
		Title:  "Turn Left",
		Notice: "This phase should PASS if the person's head shows ANY leftward rotation (their left, the camera's right). The goal is to detect head movement, not a perfect 90-degree turn.",
		Checks: []string{
			"There is a real human face",
			"The head shows leftward rotation: any degree of turn, a 3/4 view or side profile, the left side of the face or left ear more visible",
			"The face is still a real person (not a photo or screen)",
		},
		Pass: []string{
			"Head turned left to any degree or a 3/4 view: PASS with high confidence",
			"Slight leftward tilt or rotation: PASS with medium confidence",
		},
		Fail: []string{
			"Only fail if the face is perfectly straight and centered with NO leftward rotation",
			"Or if the head is turned RIGHT instead",
			"Or if it is clearly a photo or screen",
		},
		Examples: []string{
			`Head turned left 45 degrees or more: {"verified": true, "confidence": 0.95, "reason": "Head clearly turned left, side profile visible"}`,
			`Head turned left slightly: {"verified": true, "confidence": 0.80, "reason": "Head rotated left, movement detected"}`,
			`Face perfectly straight: {"verified": false, "confidence": 0.3, "reason": "No leftward rotation detected"}`,
			`Head turned right: {"verified": false, "confidence": 0.2, "reason": "Head turned right instead of left"}`,
		},
	},
}

var instructions = mustRenderInstructions()

func mustRenderInstructions() map[entity.LivenessChallenge]string {
	tmpl := template.Must(template.New("instruction").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(instructionTemplate))

	out := make(map[entity.LivenessChallenge]string, len(policies))
	for challenge, policy := range policies {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, policy); err != nil {
			panic(fmt.Sprintf("render %s instruction: %v", challenge, err))
		}
		out[challenge] = sb.String()
	}
	return out
}

// Instruction returns the oracle instruction text for a known challenge.
func Instruction(challenge entity.LivenessChallenge) (string, bool) {
	text, ok := instructions[challenge]
	return text, ok
}
