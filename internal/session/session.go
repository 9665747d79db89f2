package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/interview-sim/internal/ai"
	"github.com/spigell/interview-sim/internal/evaluation"
	"github.com/spigell/interview-sim/internal/prompt"
	"github.com/spigell/interview-sim/internal/transcript"
)

// Phase is the session's coarse lifecycle stage. Exactly one phase is active
// at a time; "waiting for the evaluation" is a first-class phase rather than
// a loading flag on top of the interview.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInterviewing
	PhaseEvaluating
	PhaseEvaluated
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseInterviewing:
		return "interviewing"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseEvaluated:
		return "evaluated"
	default:
		return "unknown"
	}
}

// FailureKind classifies surfaced, recoverable failures. Nothing here is
// fatal: every failure leaves the session retryable or resettable.
type FailureKind string

const (
	FailureMissingCredential FailureKind = "missing_credential"
	FailureTransport         FailureKind = "transport_failure"
	FailureEmptyResponse     FailureKind = "empty_response"
	FailureParse             FailureKind = "parse_failure"
)

// Failure is the user-visible error surfaced alongside the session state.
type Failure struct {
	Kind    FailureKind
	Message string
}

var (
	// ErrBusy is returned while a model call is in flight. The triggering
	// intent is a no-op on both transcript and phase.
	ErrBusy = errors.New("a model call is already in flight")
	// ErrPhase is returned for intents that are not legal in the current phase.
	ErrPhase = errors.New("intent is not allowed in the current phase")
	// ErrEmptyInput is returned for blank job descriptions or answers.
	ErrEmptyInput = errors.New("input must not be empty")
)

// Session owns one job description, one transcript, one phase and at most one
// evaluation. All mutation happens on intent boundaries or on call completion;
// at most one gateway call is in flight at a time.
type Session struct {
	mu         sync.Mutex
	phase      Phase
	jobDesc    string
	transcript *transcript.Store
	evaluation *evaluation.Evaluation
	failure    *Failure
	inFlight   bool

	// epoch invalidates in-flight results when a reset happens mid-call. The
	// call itself is not cancelled; its result is simply abandoned.
	epoch int

	prompts   *prompt.Builder
	generator ai.Generator
	logger    *zap.Logger
}

func New(generator ai.Generator, prompts *prompt.Builder, logger *zap.Logger) *Session {
	if prompts == nil {
		prompts = prompt.NewBuilder(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		phase:      PhaseSetup,
		transcript: transcript.NewStore(),
		prompts:    prompts,
		generator:  generator,
		logger:     logger,
	}
}

// Snapshot is the read-only state exposed to the rendering layer.
type Snapshot struct {
	Phase          Phase
	JobDescription string
	Turns          []transcript.Turn
	Loading        bool
	Failure        *Failure
	Evaluation     *evaluation.Evaluation
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.phase,
		JobDescription: s.jobDesc,
		Turns:          s.transcript.All(),
		Loading:        s.inFlight,
	}
	if s.failure != nil {
		failure := *s.failure
		snap.Failure = &failure
	}
	if s.evaluation != nil {
		eval := *s.evaluation
		snap.Evaluation = &eval
	}

	return snap
}

// SubmitJobDescription starts the interview. On gateway success the reply
// becomes the first Interviewer turn; on failure the session stays in Setup
// with zero turns and a surfaced error.
func (s *Session) SubmitJobDescription(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.phase != PhaseSetup {
		s.mu.Unlock()
		return ErrPhase
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return ErrEmptyInput
	}

	s.transcript = transcript.NewStore()
	s.failure = nil
	s.inFlight = true
	epoch := s.epoch
	promptText := s.prompts.Opening(text)
	s.mu.Unlock()

	reply, err := s.generator.GenerateContent(ctx, promptText, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.inFlight = false

	if err != nil {
		s.failure = failureFrom(err)
		s.logger.Warn("opening call failed, staying in setup",
			zap.String("failure_kind", string(s.failure.Kind)),
			zap.Error(err),
		)
		return err
	}

	s.jobDesc = text
	s.phase = PhaseInterviewing
	s.transcript.Append(transcript.Interviewer, reply)

	s.logger.Info("interview started", zap.Int("turns", s.transcript.Len()))

	return nil
}

// SendAnswer submits a candidate answer. The Candidate turn is appended
// optimistically and stays appended even if the gateway call fails; the user
// recovers by resending.
func (s *Session) SendAnswer(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.phase != PhaseInterviewing {
		s.mu.Unlock()
		return ErrPhase
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return ErrEmptyInput
	}

	// The builder windows the history; the answer itself is embedded
	// separately and is not part of the window.
	promptText := s.prompts.Continuation(s.transcript.All(), text)

	s.transcript.Append(transcript.Candidate, text)
	s.failure = nil
	s.inFlight = true
	epoch := s.epoch
	s.mu.Unlock()

	reply, err := s.generator.GenerateContent(ctx, promptText, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.inFlight = false

	if err != nil {
		s.failure = failureFrom(err)
		s.logger.Warn("continuation call failed, candidate turn kept",
			zap.String("failure_kind", string(s.failure.Kind)),
			zap.Error(err),
		)
		return err
	}

	s.transcript.Append(transcript.Interviewer, reply)

	return nil
}

// EndInterview requests the structured evaluation over the entire transcript.
// On gateway or parse failure the session falls back to Interviewing so the
// intent can be retried.
func (s *Session) EndInterview(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseInterviewing {
		s.mu.Unlock()
		return ErrPhase
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}

	s.phase = PhaseEvaluating
	s.failure = nil
	s.inFlight = true
	epoch := s.epoch
	promptText := s.prompts.Evaluation(s.transcript.All())
	s.mu.Unlock()

	reply, err := s.generator.GenerateContent(ctx, promptText, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.inFlight = false

	if err != nil {
		s.phase = PhaseInterviewing
		s.failure = failureFrom(err)
		s.logger.Warn("evaluation call failed, back to interviewing",
			zap.String("failure_kind", string(s.failure.Kind)),
			zap.Error(err),
		)
		return err
	}

	eval, err := evaluation.Parse(reply)
	if err != nil {
		s.phase = PhaseInterviewing
		s.failure = &Failure{Kind: FailureParse, Message: err.Error()}
		s.logger.Warn("evaluation payload unparseable, back to interviewing", zap.Error(err))
		return err
	}

	s.evaluation = eval
	s.phase = PhaseEvaluated

	s.logger.Info("interview evaluated",
		zap.Int("score", eval.Score),
		zap.String("recommendation", eval.Recommendation),
		zap.Bool("positive", eval.Positive()),
	)

	return nil
}

// Reset is the global escape hatch: from any phase it returns a fresh Setup
// with no transcript, evaluation or error. A call still in flight is not
// cancelled, but its result is discarded when it lands.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.phase = PhaseSetup
	s.jobDesc = ""
	s.transcript = transcript.NewStore()
	s.evaluation = nil
	s.failure = nil
	s.inFlight = false

	s.logger.Info("session reset")
}

func failureFrom(err error) *Failure {
	kind := FailureTransport
	switch ai.KindOf(err) {
	case ai.KindMissingCredential:
		kind = FailureMissingCredential
	case ai.KindEmptyResponse:
		kind = FailureEmptyResponse
	}

	return &Failure{Kind: kind, Message: err.Error()}
}
