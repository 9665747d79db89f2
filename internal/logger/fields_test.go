package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestStringFieldsSkipsEmptyEntries(t *testing.T) {
	fields := StringFields(
		StringField{Key: "ai_provider", Value: "gemini"},
		StringField{Key: "  ", Value: "ignored"},
		StringField{Key: "ai_model", Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "ai_provider" {
		t.Fatalf("unexpected field key: %s", fields[0].Key)
	}
}

func TestWithCommonFieldsHandlesNilLogger(t *testing.T) {
	logger := WithCommonFields(nil, "gemini", "gemini-2.5-pro")
	if logger == nil {
		t.Fatal("expected a logger")
	}

	// Must not panic on use.
	logger.Debug("probe", zap.String("k", "v"))
}
