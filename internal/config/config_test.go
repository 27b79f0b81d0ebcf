package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidatesWithMocks(t *testing.T) {
	cfg := Default()
	cfg.Recognizer.Mock = true
	cfg.Translator.Mock = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.ChunkDuration() != 30*time.Second {
		t.Fatalf("ChunkDuration() = %v", cfg.ChunkDuration())
	}
	if cfg.DecodeRetryDelay() != time.Second {
		t.Fatalf("DecodeRetryDelay() = %v", cfg.DecodeRetryDelay())
	}
}

func TestMergeFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
input_dir = "/data/mp3"
workers = 8
chunk_seconds = 20

[recognizer]
url = "http://whisper.local/v1"
model = "large-v3"

[translator]
url = "http://gateway.local/chat"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		t.Fatalf("mergeFile() error = %v", err)
	}
	env := map[string]string{
		"WORKERS":          "2",
		"DEST_LANG":        "fr",
		"AUDIO_EXTENSIONS": ".mp3,.m4a",
	}
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if cfg.InputDir != "/data/mp3" || cfg.ChunkSeconds != 20 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Workers != 2 {
		t.Fatalf("Workers = %d, env should win over file", cfg.Workers)
	}
	if cfg.Recognizer.Model != "large-v3" || cfg.Recognizer.TimeoutSeconds != 60 {
		t.Fatalf("Recognizer = %+v", cfg.Recognizer)
	}
	if cfg.DestLang != "fr" || len(cfg.Extensions) != 2 {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) string {
		if k == "WORKERS" {
			return "many"
		}
		return ""
	})
	if err == nil || !strings.Contains(err.Error(), "WORKERS") {
		t.Fatalf("applyEnv() error = %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	cfg.ChunkSeconds = -1
	cfg.SrcLang = "??"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"workers", "chunk_seconds", "src_lang", "recognizer url", "translator url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestMergeFileMissing(t *testing.T) {
	cfg := Default()
	if err := cfg.mergeFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
