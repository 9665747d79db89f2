package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-sim/internal/ai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls      int
	lastModel  string
	lastConfig *genai.GenerateContentConfig
	lastText   string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastModel = model
	f.lastConfig = config
	for _, content := range contents {
		for _, part := range content.Parts {
			f.lastText += part.Text
		}
	}
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func TestGenerateContentExtractsText(t *testing.T) {
	models := &fakeModels{resp: textResponse("Tell me about", "your last project.")}
	g := &Generator{models: models, model: "gemini-pro", logger: zap.NewNop(), maxLogLen: 50}

	output, err := g.GenerateContent(context.Background(), "start the interview", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "Tell me about\nyour last project." {
		t.Fatalf("unexpected output: %q", output)
	}

	if models.lastModel != "gemini-pro" {
		t.Fatalf("unexpected model: %q", models.lastModel)
	}

	if models.lastText != "start the interview" {
		t.Fatalf("unexpected prompt sent: %q", models.lastText)
	}

	if models.lastConfig.ResponseMIMEType != "" {
		t.Fatalf("expected no response mime type for free-form call, got %q", models.lastConfig.ResponseMIMEType)
	}
}

func TestGenerateContentStructuredRequestsJSON(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"score": 7}`)}
	g := &Generator{models: models, model: "gemini-pro", logger: zap.NewNop(), maxLogLen: 50}

	if _, err := g.GenerateContent(context.Background(), "evaluate", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if models.lastConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("expected application/json response mime type, got %q", models.lastConfig.ResponseMIMEType)
	}
}

func TestGenerateContentMissingCredentialShortCircuits(t *testing.T) {
	models := &fakeModels{resp: textResponse("never called")}
	g := &Generator{models: models, model: "gemini-pro", logger: zap.NewNop(), maxLogLen: 50, missingCredential: true}

	_, err := g.GenerateContent(context.Background(), "hello", false)
	if ai.KindOf(err) != ai.KindMissingCredential {
		t.Fatalf("expected missing credential kind, got %v", err)
	}

	if models.calls != 0 {
		t.Fatalf("expected no remote call, got %d", models.calls)
	}
}

func TestNewGeneratorWithoutKeyReportsMissingCredential(t *testing.T) {
	g, err := NewGenerator(context.Background(), "  ", "", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = g.GenerateContent(context.Background(), "hello", false)
	if ai.KindOf(err) != ai.KindMissingCredential {
		t.Fatalf("expected missing credential kind, got %v", err)
	}
}

func TestGenerateContentTransportFailure(t *testing.T) {
	models := &fakeModels{err: errors.New("boom")}
	g := &Generator{models: models, model: "gemini-pro", logger: zap.NewNop(), maxLogLen: 50}

	_, err := g.GenerateContent(context.Background(), "hello", false)
	if ai.KindOf(err) != ai.KindTransport {
		t.Fatalf("expected transport kind, got %v", err)
	}
}

func TestGenerateContentEmptyResponse(t *testing.T) {
	models := &fakeModels{resp: textResponse("   ")}
	g := &Generator{models: models, model: "gemini-pro", logger: zap.NewNop(), maxLogLen: 50}

	_, err := g.GenerateContent(context.Background(), "hello", false)
	if ai.KindOf(err) != ai.KindEmptyResponse {
		t.Fatalf("expected empty response kind, got %v", err)
	}
}
