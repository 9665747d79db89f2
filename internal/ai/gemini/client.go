package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-sim/internal/ai"
	"github.com/spigell/interview-sim/internal/util"
)

const (
	defaultModel        = "gemini-2.5-pro"
	defaultMaxLogLength = 200
)

// contentCaller matches the genai Models surface we use, so tests can swap in
// a fake without a real API key.
type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ai.Generator on top of the Gemini API. It performs a
// single synchronous call per prompt: no retries, no caching, no memory of
// the session.
type Generator struct {
	models    contentCaller
	model     string
	logger    *zap.Logger
	maxLogLen int

	// missingCredential is set when no API key was configured. Calls then
	// short-circuit without any network I/O.
	missingCredential bool
}

// NewGenerator creates a Generator for the Gemini API backend. An empty API
// key is a valid, detectable configuration state: the returned Generator
// reports ai.KindMissingCredential on every call instead of failing here.
func NewGenerator(ctx context.Context, apiKey, model string, maxLogLength int, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	g := &Generator{
		model:     model,
		logger:    logger,
		maxLogLen: maxLogLength,
	}

	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		g.missingCredential = true
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g.models = client.Models

	return g, nil
}

// GenerateContent sends the prompt to Gemini and returns the concatenated
// textual response. When structured is true the model is asked to constrain
// its output to a JSON document; this is a hint, not a guarantee.
func (g *Generator) GenerateContent(ctx context.Context, prompt string, structured bool) (string, error) {
	if g == nil || g.missingCredential || g.models == nil {
		return "", ai.NewError(ai.KindMissingCredential, errors.New("gemini api key is not configured"))
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ai.NewError(ai.KindTransport, errors.New("prompt must not be empty"))
	}

	config := &genai.GenerateContentConfig{}
	if structured {
		config.ResponseMIMEType = "application/json"
	}

	g.logger.Debug("gemini generate content request",
		zap.String("model", g.model),
		zap.Bool("structured", structured),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", ai.NewError(ai.KindTransport, fmt.Errorf("generate content: %w", err))
	}

	output := collectText(resp)
	if output == "" {
		return "", ai.NewError(ai.KindEmptyResponse, errors.New("gemini api returned no usable text"))
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", util.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// collectText extracts and concatenates the textual parts of all candidates.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
