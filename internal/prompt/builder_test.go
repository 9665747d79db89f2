package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/interview-sim/internal/transcript"
)

func TestOpeningEmbedsJobDescriptionVerbatim(t *testing.T) {
	jd := "Senior Go Engineer\n\nWe build trading systems.\nOn-call rotation included."

	out := NewBuilder(0).Opening(jd)

	assert.Contains(t, out, jd)
	assert.Contains(t, out, "one question at a time")
	assert.Contains(t, out, "Begin the interview now")
	assert.NotContains(t, out, "{{JOB_DESCRIPTION}}")
}

func TestContinuationWindowsToLastTenTurns(t *testing.T) {
	store := transcript.NewStore()
	for i := 0; i < 14; i++ {
		speaker := transcript.Interviewer
		if i%2 == 1 {
			speaker = transcript.Candidate
		}
		store.Append(speaker, fmt.Sprintf("turn %d", i))
	}

	out := NewBuilder(10).Continuation(store.All(), "my latest answer")

	// Only the last 10 turns survive, oldest first.
	assert.NotContains(t, out, "turn 3")
	assert.Contains(t, out, "turn 4")
	assert.Contains(t, out, "turn 13")

	idxOld := strings.Index(out, "turn 4")
	idxNew := strings.Index(out, "turn 13")
	require.NotEqual(t, -1, idxOld)
	require.NotEqual(t, -1, idxNew)
	assert.Less(t, idxOld, idxNew)

	assert.Contains(t, out, "Candidate: my latest answer")
	assert.Contains(t, out, "Acknowledge the answer briefly")
}

func TestContinuationRendersSpeakerLines(t *testing.T) {
	store := transcript.NewStore()
	store.Append(transcript.Interviewer, "Why do you want this job?")
	store.Append(transcript.Candidate, "I like the domain.")

	out := NewBuilder(10).Continuation(store.All(), "And the team.")

	assert.Contains(t, out, "Interviewer: Why do you want this job?")
	assert.Contains(t, out, "Candidate: I like the domain.")
}

func TestEvaluationEmbedsEntireTranscript(t *testing.T) {
	store := transcript.NewStore()
	for i := 0; i < 25; i++ {
		store.Append(transcript.Candidate, fmt.Sprintf("turn %d", i))
	}

	out := NewBuilder(10).Evaluation(store.All())

	// The evaluation prompt is never windowed.
	for i := 0; i < 25; i++ {
		assert.Contains(t, out, fmt.Sprintf("turn %d", i))
	}

	for _, key := range []string{"score", "strengths", "improvements", "recommendation", "summary"} {
		assert.Contains(t, out, key)
	}
}

func TestEvaluationOnEmptyTranscriptStillValid(t *testing.T) {
	out := NewBuilder(10).Evaluation(nil)

	assert.Contains(t, out, "(no conversation yet)")
	assert.NotContains(t, out, "{{FULL_TRANSCRIPT}}")
}
