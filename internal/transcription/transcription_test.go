package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func writeChunk(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_x_0.wav")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRecognizer(t *testing.T, h http.HandlerFunc) *HTTPRecognizer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	r, err := NewHTTPRecognizer(Config{URL: srv.URL + "/v1/", APIKey: "secret"}, testLog())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRecognizeSuccess(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		if got := req.FormValue("language"); got != "es" {
			t.Errorf("language = %q, want es", got)
		}
		if got := req.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if _, _, err := req.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		fmt.Fprint(w, `{"text":"  hola mundo "}`)
	})

	text, err := r.Recognize(context.Background(), writeChunk(t, 64), "es")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text != "hola mundo" {
		t.Fatalf("text = %q", text)
	}
}

func TestRecognizeEmptyTextIsNoSpeech(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"text":""}`)
	})
	_, err := r.Recognize(context.Background(), writeChunk(t, 64), "es")
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("Recognize() error = %v, want ErrNoSpeech", err)
	}
}

func TestRecognizeServerErrorIsServiceError(t *testing.T) {
	calls := 0
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	_, err := r.Recognize(context.Background(), writeChunk(t, 64), "es")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Recognize() error = %v, want *ServiceError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode = %d", se.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("server called %d times, want exactly 1 (no chunk retry)", calls)
	}
}

func TestRecognizeBadJSONIsServiceError(t *testing.T) {
	r := newTestRecognizer(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	_, err := r.Recognize(context.Background(), writeChunk(t, 64), "es")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Recognize() error = %v, want *ServiceError", err)
	}
}

func TestNewHTTPRecognizerRequiresURL(t *testing.T) {
	if _, err := NewHTTPRecognizer(Config{}, testLog()); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestMockRecognizer(t *testing.T) {
	var m MockRecognizer
	if _, err := m.Recognize(context.Background(), writeChunk(t, 44), "es"); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("header-only chunk error = %v, want ErrNoSpeech", err)
	}
	text, err := m.Recognize(context.Background(), writeChunk(t, 100), "es")
	if err != nil || text == "" {
		t.Fatalf("Recognize() = %q, %v", text, err)
	}
}
