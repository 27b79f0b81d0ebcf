package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestTranslator(t *testing.T, h http.HandlerFunc) *LLMTranslator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	tr, err := NewLLMTranslator(Config{URL: srv.URL, APIKey: "k", Model: "m"}, testLog())
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestTranslateSuccess(t *testing.T) {
	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "m" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Spanish transcript into English") {
			t.Errorf("prompt = %+v", req.Messages)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"hello world\n"}}]}`)
	})

	got, err := tr.Translate(context.Background(), "hola mundo", "es", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "hello world" {
		t.Fatalf("Translate() = %q", got)
	}
}

func TestTranslateServerError(t *testing.T) {
	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	_, err := tr.Translate(context.Background(), "hola", "es", "en")
	var se *ServiceError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Translate() error = %v, want 429 ServiceError", err)
	}
}

func TestTranslateEmptyChoices(t *testing.T) {
	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})
	_, err := tr.Translate(context.Background(), "hola", "es", "en")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Translate() error = %v, want ServiceError", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"plain":                     "plain",
		"```\nhello\n```":           "hello",
		"```text\nhello there\n```": "hello there",
		"  spaced  ":                "spaced",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewLLMTranslatorRequiresURL(t *testing.T) {
	if _, err := NewLLMTranslator(Config{}, testLog()); err == nil {
		t.Fatal("expected error without gateway url")
	}
}
