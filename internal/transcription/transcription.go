package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-translate-go/internal/language"
)

// ErrNoSpeech is returned when the service found nothing intelligible in the audio.
var ErrNoSpeech = errors.New("no intelligible speech")

// ServiceError is a transport or service-level failure for one request.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("recognition service error: status=%d %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("recognition service error: %v", e.Err)
	}
	return "recognition service error: " + e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Recognizer turns a WAV file into text in the given language.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath, lang string) (string, error)
}

// Config configures the HTTP recognizer.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPRecognizer talks to an OpenAI-compatible /audio/transcriptions endpoint
// (hosted Whisper, faster-whisper-server, whisper.cpp server).
type HTTPRecognizer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	log      *logrus.Entry
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// NewHTTPRecognizer validates cfg and returns a recognizer.
func NewHTTPRecognizer(cfg Config, log *logrus.Entry) (*HTTPRecognizer, error) {
	host := strings.TrimSpace(cfg.URL)
	if host == "" {
		return nil, errors.New("recognizer url not set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &HTTPRecognizer{
		endpoint: strings.TrimRight(host, "/") + "/audio/transcriptions",
		apiKey:   cfg.APIKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		log:      log.WithField("module", "transcription"),
	}, nil
}

// Recognize uploads one chunk. There is no retry here: a failed chunk is recorded
// as absent by the caller and the file moves on.
func (r *HTTPRecognizer) Recognize(ctx context.Context, wavPath, lang string) (string, error) {
	body, contentType, err := r.buildForm(wavPath, lang)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, body)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var out transcriptionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("json decode error: %v body=%s", err, string(raw))}
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	r.log.WithFields(logrus.Fields{"chunk_file": filepath.Base(wavPath), "chars": len(text)}).Debug("chunk recognized")
	return text, nil
}

func (r *HTTPRecognizer) buildForm(wavPath, lang string) (io.Reader, string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	_ = w.WriteField("model", r.model)
	_ = w.WriteField("response_format", "json")
	if lang != "" {
		// Whisper only takes ISO 639-1 codes
		_ = w.WriteField("language", language.Base(lang))
	}
	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}
