package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-sim/internal/ai/gemini"
	"github.com/spigell/interview-sim/internal/evaluation"
	"github.com/spigell/interview-sim/internal/logger"
	"github.com/spigell/interview-sim/internal/prompt"
	"github.com/spigell/interview-sim/internal/secrets"
	"github.com/spigell/interview-sim/internal/session"
	"github.com/spigell/interview-sim/internal/transcript"
)

const (
	PromptContinue     = "Continue answering"
	PromptEndInterview = "End the interview and get an evaluation"
	PromptReset        = "Reset the session"
	PromptNewSession   = "Start a new session"
	PromptQuit         = "Quit"
)

var errQuit = errors.New("quit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive simulated interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("job-file", "f", "", "read the job description from a file instead of the prompt")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the interview-sim", zap.String("version", version))

	model, maxLogLength, window := resolveSettings(config)

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		// A missing credential is a valid configuration state: the session
		// surfaces it on the first submit instead of crashing here.
		zlog.Warn("gemini api key is not configured",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the ai.gemini section in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, model, maxLogLength,
		logger.WithCommonFields(zlog, "gemini", model))
	if err != nil {
		zlog.Fatal("creating the gemini generator", zap.Error(err))
	}

	sess := session.New(generator, prompt.NewBuilder(window), zlog)

	if err := loop(ctx, cmd, sess); err != nil && !errors.Is(err, errQuit) {
		zlog.Fatal("exiting", zap.Error(err))
	}

	zlog.Info("exiting", zap.String("reason", "quit requested"))
}

// loop drives the session until the user quits. It renders the snapshot the
// session exposes and forwards user intents back into it.
func loop(ctx context.Context, cmd *cobra.Command, sess *session.Session) error {
	shown := 0
	jobFileConsumed := false

	for {
		snap := sess.Snapshot()

		if snap.Failure != nil {
			fmt.Printf("\n!! %s: %s\n", snap.Failure.Kind, snap.Failure.Message)
		}

		switch snap.Phase {
		case session.PhaseSetup:
			shown = 0
			if err := handleSetup(ctx, cmd, sess, &jobFileConsumed); err != nil {
				return err
			}
		case session.PhaseInterviewing:
			shown = showNewInterviewerTurns(snap.Turns, shown)
			if err := handleInterviewing(ctx, sess); err != nil {
				return err
			}
		case session.PhaseEvaluated:
			renderEvaluation(snap.Evaluation)
			if err := handleEvaluated(sess); err != nil {
				return err
			}
		default:
			// Evaluating is never observed here: intents block until the
			// in-flight call resolves.
			return fmt.Errorf("unexpected phase: %s", snap.Phase)
		}
	}
}

func handleSetup(ctx context.Context, cmd *cobra.Command, sess *session.Session, jobFileConsumed *bool) error {
	jobDescription, err := readJobDescription(cmd, jobFileConsumed)
	if err != nil {
		return err
	}

	fmt.Println("Contacting the interviewer...")

	// Gateway failures are surfaced via the snapshot banner on the next pass.
	_ = sess.SubmitJobDescription(ctx, jobDescription)

	return nil
}

func handleInterviewing(ctx context.Context, sess *session.Session) error {
	answer, err := promptAnswer()
	if err != nil {
		return err
	}

	if strings.TrimSpace(answer) == "" {
		return interviewMenu(ctx, sess)
	}

	// Failures keep the candidate turn and surface via the banner.
	_ = sess.SendAnswer(ctx, answer)

	return nil
}

func interviewMenu(ctx context.Context, sess *session.Session) error {
	menu := promptui.Select{
		Label: "What next?",
		Items: []string{PromptContinue, PromptEndInterview, PromptReset, PromptQuit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return quitOnInterrupt(err)
	}

	switch action {
	case PromptContinue:
		return nil
	case PromptEndInterview:
		fmt.Println("Waiting for the evaluation...")
		// Failures fall back to interviewing and surface via the banner.
		_ = sess.EndInterview(ctx)
		return nil
	case PromptReset:
		sess.Reset()
		return nil
	case PromptQuit:
		return errQuit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func handleEvaluated(sess *session.Session) error {
	menu := promptui.Select{
		Label: "The interview is over",
		Items: []string{PromptNewSession, PromptQuit},
	}

	_, action, err := menu.Run()
	if err != nil {
		return quitOnInterrupt(err)
	}

	switch action {
	case PromptNewSession:
		sess.Reset()
		return nil
	case PromptQuit:
		return errQuit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// readJobDescription reads from the job-file flag on the first pass only, so
// a failed opening call falls back to the interactive prompt instead of
// resubmitting the same file forever.
func readJobDescription(cmd *cobra.Command, jobFileConsumed *bool) (string, error) {
	if path := cmd.Flag("job-file").Value.String(); path != "" && !*jobFileConsumed {
		*jobFileConsumed = true
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading job description file: %w", err)
		}
		return string(data), nil
	}

	input := promptui.Prompt{
		Label: "Paste the job description",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("job description must not be empty")
			}
			return nil
		},
	}

	jobDescription, err := input.Run()
	if err != nil {
		return "", quitOnInterrupt(err)
	}

	return jobDescription, nil
}

func promptAnswer() (string, error) {
	input := promptui.Prompt{
		Label:     "You (empty line opens the menu)",
		AllowEdit: true,
	}

	answer, err := input.Run()
	if err != nil {
		return "", quitOnInterrupt(err)
	}

	return answer, nil
}

func showNewInterviewerTurns(turns []transcript.Turn, shown int) int {
	for _, turn := range turns[min(shown, len(turns)):] {
		if turn.Speaker == transcript.Interviewer {
			fmt.Printf("\nInterviewer: %s\n\n", turn.Text)
		}
	}

	return len(turns)
}

func renderEvaluation(eval *evaluation.Evaluation) {
	if eval == nil {
		return
	}

	verdict := "not recommended"
	if eval.Positive() {
		verdict = "recommended"
	}

	fmt.Println("\n===== Evaluation =====")
	fmt.Printf("Score:          %d/10", eval.Score)
	if eval.ScoreOutOfRange {
		fmt.Printf(" (out of expected range)")
	}
	fmt.Printf("\nRecommendation: %s (%s)\n", eval.Recommendation, verdict)

	fmt.Println("\nStrengths:")
	for _, s := range eval.Strengths {
		fmt.Printf("  - %s\n", s)
	}

	fmt.Println("\nAreas to improve:")
	for _, s := range eval.Improvements {
		fmt.Printf("  - %s\n", s)
	}

	fmt.Printf("\nSummary: %s\n\n", eval.Summary)
}

func resolveSettings(config *Config) (model string, maxLogLength, window int) {
	if config != nil && config.AI != nil && config.AI.Gemini != nil {
		model = config.AI.Gemini.Model
		maxLogLength = config.AI.Gemini.MaxLogLength
	}
	if config != nil && config.Interview != nil {
		window = config.Interview.HistoryWindow
	}

	return model, maxLogLength, window
}

func resolveAPIKey(config *Config) (string, error) {
	src := secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
	}

	if config != nil && config.AI != nil {
		if provider := strings.TrimSpace(strings.ToLower(config.AI.Provider)); provider != "" && provider != "gemini" {
			return "", fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
		}
		if config.AI.Gemini != nil {
			src.Value = config.AI.Gemini.APIKey
			src.File = config.AI.Gemini.APIKeyFile
		}
	}

	if src.File == "" {
		src.File = strings.TrimSpace(viper.GetString("ai.gemini.api-key-file"))
	}

	return secrets.Load(src)
}

func quitOnInterrupt(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errQuit
	}

	return err
}
