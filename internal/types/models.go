package types

import (
	"path/filepath"
	"strings"
	"time"
)

// AudioFile is a source recording handed to the pipeline. Read-only.
type AudioFile struct {
	Path     string `json:"path"`
	BaseName string `json:"base_name"`
}

// NewAudioFile infers the base name (file name without extension) from path.
func NewAudioFile(path string) AudioFile {
	name := filepath.Base(path)
	return AudioFile{Path: path, BaseName: strings.TrimSuffix(name, filepath.Ext(name))}
}

// WorkUnit is one pipeline invocation over one AudioFile. The ID namespaces every
// temporary artifact the unit creates.
type WorkUnit struct {
	ID       string `json:"id"`
	SrcLang  string `json:"src_lang"`
	DestLang string `json:"dest_lang"`
}

// Chunk is a time window of decoded audio.
type Chunk struct {
	Index    int           `json:"index"`
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
}

// End returns the exclusive end offset of the window.
func (c Chunk) End() time.Duration {
	return c.Start + c.Duration
}

type ChunkStatus string

const (
	ChunkOK           ChunkStatus = "ok"
	ChunkNoSpeech     ChunkStatus = "no_speech"
	ChunkServiceError ChunkStatus = "service_error"
)

// ChunkResult is the outcome of recognizing and translating one chunk.
// Transcript and Translation are only meaningful when Status is ChunkOK.
type ChunkResult struct {
	Index       int         `json:"index"`
	Status      ChunkStatus `json:"status"`
	Transcript  string      `json:"transcript,omitempty"`
	Translation string      `json:"translation,omitempty"`
	Err         error       `json:"-"`
}

func (r ChunkResult) Present() bool {
	return r.Status == ChunkOK
}

// Outcome is the terminal record for one file, consumed by the orchestrator.
type Outcome struct {
	Source     AudioFile     `json:"source"`
	Output     string        `json:"output,omitempty"`
	Success    bool          `json:"success"`
	Err        error         `json:"-"`
	Chunks     int           `json:"chunks"`
	Recognized int           `json:"recognized"`
	Duration   time.Duration `json:"duration"`
}

// Error returns the failure reason, or "" for a successful outcome.
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary tallies outcomes over one batch run.
type Summary struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// FailedOutcomes returns only the failed entries, in completion order.
func (s Summary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}
