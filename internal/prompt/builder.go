package prompt

import (
	"strings"

	_ "embed"

	"github.com/spigell/interview-sim/internal/transcript"
)

//go:embed opening.md
var openingTemplate string

//go:embed continuation.md
var continuationTemplate string

//go:embed evaluation.md
var evaluationTemplate string

// DefaultHistoryWindow bounds how many recent turns a continuation prompt
// carries. Older context is deliberately dropped, not summarized. Evaluation
// prompts are never windowed.
const DefaultHistoryWindow = 10

// Builder produces the exact text payloads sent to the model. The persona and
// interview rules live only in the opening prompt; there is no separate system
// channel, so the model's adherence for the rest of the session is a soft
// contract carried by the transcript itself.
type Builder struct {
	window int
}

func NewBuilder(historyWindow int) *Builder {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}

	return &Builder{window: historyWindow}
}

// Opening builds the session-opening prompt embedding the job description
// verbatim. Callers must guard against empty job descriptions.
func (b *Builder) Opening(jobDescription string) string {
	return strings.ReplaceAll(openingTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
}

// Continuation builds the turn prompt for a new candidate answer. It embeds up
// to the last `window` turns, oldest first, plus the answer itself.
func (b *Builder) Continuation(turns []transcript.Turn, answer string) string {
	if len(turns) > b.window {
		turns = turns[len(turns)-b.window:]
	}

	out := strings.ReplaceAll(continuationTemplate, "{{RECENT_TRANSCRIPT}}", RenderTurns(turns))
	out = strings.ReplaceAll(out, "{{ANSWER}}", answer)

	return out
}

// Evaluation builds the end-of-interview prompt. It embeds the entire
// transcript; an empty transcript still yields a valid, if thin, prompt.
func (b *Builder) Evaluation(turns []transcript.Turn) string {
	return strings.ReplaceAll(evaluationTemplate, "{{FULL_TRANSCRIPT}}", RenderTurns(turns))
}

// RenderTurns renders turns as "Candidate: ..." / "Interviewer: ..." lines.
func RenderTurns(turns []transcript.Turn) string {
	if len(turns) == 0 {
		return "(no conversation yet)"
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, string(turn.Speaker)+": "+turn.Text)
	}

	return strings.Join(lines, "\n")
}
