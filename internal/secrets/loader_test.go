package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFileTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("  file-secret \n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	secret, err := Load(Source{Name: "gemini api key", File: path, Value: "inline", Env: "UNSET_VAR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "file-secret" {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestLoadFromEnvFallback(t *testing.T) {
	t.Setenv("INTERVIEW_SIM_TEST_KEY", " env-secret ")

	secret, err := Load(Source{Name: "gemini api key", Env: "INTERVIEW_SIM_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "env-secret" {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestLoadMissingIsAnError(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key", Env: "INTERVIEW_SIM_DEFINITELY_UNSET"})
	if err == nil {
		t.Fatal("expected an error for an unconfigured secret")
	}
}

func TestLoadEmptyFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := Load(Source{Name: "gemini api key", File: path}); err == nil {
		t.Fatal("expected an error for an empty secret file")
	}
}
