package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-translate-go/internal/language"
)

// ServiceError is a transport or service-level failure of the translation backend.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("translation service error: status=%d %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("translation service error: %v", e.Err)
	}
	return "translation service error: " + e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Translator translates text between two languages.
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (string, error)
}

type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LLMTranslator sends translation prompts to an OpenAI-style chat completions
// gateway (LLM_GATEWAY_URL).
type LLMTranslator struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	log    *logrus.Entry
}

func NewLLMTranslator(cfg Config, log *logrus.Entry) (*LLMTranslator, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("llm gateway not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &LLMTranslator{
		url:    strings.TrimSpace(cfg.URL),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
		log:    log.WithField("component", "translator"),
	}, nil
}

// BuildPrompt asks for a plain translation with nothing else in the reply.
func BuildPrompt(text, src, dest string) string {
	return fmt.Sprintf(`Translate the following %s transcript into %s.
Return ONLY the translated text. Do not add commentary, quotes, or notes.

%s`, language.DisplayName(src), language.DisplayName(dest), text)
}

// Translate makes a single request. Failures are not retried.
func (t *LLMTranslator) Translate(ctx context.Context, text, src, dest string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	reqBody := map[string]any{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "user", "content": BuildPrompt(text, src, dest)},
		},
		"temperature": 0.0,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(data))
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	t.log.WithField("http_status", resp.StatusCode).Debug("llm raw:\n" + string(body))

	if resp.StatusCode >= 300 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	out := extractContentFromChoices(body)
	if out == "" {
		return "", &ServiceError{Message: "no content in llm response"}
	}
	return out, nil
}

// extractContentFromChoices reads openai-style choices[0].message.content
func extractContentFromChoices(body []byte) string {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return ""
	}
	return stripFences(parsed.Choices[0].Message.Content)
}

// stripFences removes markdown fences some models wrap their answer in.
func stripFences(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], " ") {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// MockTranslator tags text instead of translating it (USE_MOCK_TRANSLATE=true).
type MockTranslator struct{}

func (MockTranslator) Translate(ctx context.Context, text, src, dest string) (string, error) {
	return fmt.Sprintf("[%s->%s] %s", src, dest, text), nil
}
