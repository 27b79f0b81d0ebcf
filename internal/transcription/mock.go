package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// MockRecognizer returns a deterministic transcript for offline runs
// (USE_MOCK_TRANSCRIBE=true).
type MockRecognizer struct{}

func (MockRecognizer) Recognize(ctx context.Context, wavPath, lang string) (string, error) {
	info, err := os.Stat(wavPath)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	// header-only WAV: nothing to hear
	if info.Size() <= 44 {
		return "", ErrNoSpeech
	}
	return fmt.Sprintf("MOCK TRANSCRIPT [%s] %s (%d bytes)", lang, filepath.Base(wavPath), info.Size()), nil
}
