package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Evaluation is the structured verdict produced at the end of an interview.
// It is created once and never mutated afterward.
type Evaluation struct {
	Score          int      `mapstructure:"score"`
	Strengths      []string `mapstructure:"strengths"`
	Improvements   []string `mapstructure:"improvements"`
	Recommendation string   `mapstructure:"recommendation"`
	Summary        string   `mapstructure:"summary"`

	// ScoreOutOfRange flags scores outside 0-10. The raw value is kept
	// verbatim rather than clamped.
	ScoreOutOfRange bool `mapstructure:"-"`
}

// ParseError reports an evaluation payload that could not be decoded. The
// session surfaces it without transitioning to the evaluated phase.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse evaluation: %s", e.Reason)
	}

	return fmt.Sprintf("parse evaluation: %s: %s", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes the model's raw text into an Evaluation. Markdown code fences
// are tolerated; required keys are score, recommendation and summary; missing
// strengths/improvements arrays default to empty.
func Parse(raw string) (*Evaluation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &ParseError{Reason: "invalid json", Err: err}
	}

	for _, key := range []string{"score", "recommendation", "summary"} {
		if _, ok := data[key]; !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	var result Evaluation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, &ParseError{Reason: "build decoder", Err: err}
	}

	if err := decoder.Decode(data); err != nil {
		return nil, &ParseError{Reason: "decode fields", Err: err}
	}

	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Improvements == nil {
		result.Improvements = []string{}
	}

	if result.Score < 0 || result.Score > 10 {
		result.ScoreOutOfRange = true
	}

	return &result, nil
}

// IsPositive classifies a recommendation as positive when it contains "hire"
// and not "no", case-insensitively. The substring heuristic is the existing
// contract and misclassifies phrasing like "Strongly hire, no hesitation".
func IsPositive(recommendation string) bool {
	lower := strings.ToLower(recommendation)
	return strings.Contains(lower, "hire") && !strings.Contains(lower, "no")
}

// Positive reports whether the evaluation's recommendation reads as positive.
func (e *Evaluation) Positive() bool {
	return IsPositive(e.Recommendation)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	return strings.TrimSpace(raw)
}
