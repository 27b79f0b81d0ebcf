// Package pipeline turns one recording into one transcript/translation document.
//
// A run decodes the source to WAV (the only retried step), walks fixed windows of
// the decoded audio strictly in order, and assembles the recognized and
// translated text of every window that produced speech. All scratch files live in
// the unit's workspace namespace and are gone before Run returns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voice-translate-go/internal/audio"
	"voice-translate-go/internal/transcription"
	"voice-translate-go/internal/translation"
	"voice-translate-go/internal/types"
	"voice-translate-go/internal/workspace"
)

// Defaults for the knobs in Options.
const (
	DefaultDecodeAttempts = 3
	DefaultDecodeDelay    = time.Second
)

// Stage names logged with every event, in run order.
const (
	StageDecoding    = "decoding"
	StageChunking    = "chunking"
	StageExporting   = "exporting"
	StageRecognizing = "recognizing"
	StageTranslating = "translating"
	StageDiscarding  = "discarding"
	StageAssembling  = "assembling"
	StageWriting     = "writing"
	StageDone        = "done"
	StageFailed      = "failed"
)

type Options struct {
	ChunkDuration  time.Duration
	DecodeAttempts int
	DecodeDelay    time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChunkDuration <= 0 {
		o.ChunkDuration = audio.DefaultWindow
	}
	if o.DecodeAttempts <= 0 {
		o.DecodeAttempts = DefaultDecodeAttempts
	}
	if o.DecodeDelay < 0 {
		o.DecodeDelay = 0
	}
	return o
}

// Pipeline holds the collaborators shared by every run. It keeps no per-run state,
// so one Pipeline may serve many concurrent workers.
type Pipeline struct {
	decoder    audio.Decoder
	recognizer transcription.Recognizer
	translator translation.Translator
	ws         *workspace.Workspace
	log        *logrus.Entry
	opts       Options

	newID func() string
	now   func() time.Time
}

func New(dec audio.Decoder, rec transcription.Recognizer, tr translation.Translator, ws *workspace.Workspace, log *logrus.Entry, opts Options) *Pipeline {
	return &Pipeline{
		decoder:    dec,
		recognizer: rec,
		translator: tr,
		ws:         ws,
		log:        log.WithField("component", "pipeline"),
		opts:       opts.withDefaults(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Run processes one file and never returns an error: every failure, including a
// panic in a collaborator, is folded into a failed Outcome. The unit's scratch
// files are removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, file types.AudioFile, outputDir, src, dest string) (out types.Outcome) {
	unit := types.WorkUnit{ID: p.newID(), SrcLang: src, DestLang: dest}
	log := p.log.WithFields(logrus.Fields{"unit_id": unit.ID, "file": file.Path})
	start := p.now()
	out = types.Outcome{Source: file}

	defer func() {
		res := p.ws.Cleanup(unit.ID)
		for _, e := range res.Errors {
			log.WithField("path", e.Path).WithField("error", e.Error.Error()).Error("error removing temporary file")
		}
		out.Duration = p.now().Sub(start)
	}()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.WithField("stage", StageFailed).WithField("error", err.Error()).Error("error processing file")
			out = types.Outcome{Source: file, Err: err, Chunks: out.Chunks, Recognized: out.Recognized}
		}
	}()

	output, results, err := p.process(ctx, unit, file, outputDir, log)
	out.Chunks = len(results)
	for _, r := range results {
		if r.Present() {
			out.Recognized++
		}
	}
	if err != nil {
		log.WithField("stage", StageFailed).WithField("error", err.Error()).Error("error processing file")
		out.Err = err
		return out
	}

	out.Output = output
	out.Success = true
	log.WithFields(logrus.Fields{
		"stage":      StageDone,
		"output":     output,
		"chunks":     out.Chunks,
		"recognized": out.Recognized,
	}).Info("successfully processed")
	return out
}

func (p *Pipeline) process(ctx context.Context, unit types.WorkUnit, file types.AudioFile, outputDir string, log *logrus.Entry) (string, []types.ChunkResult, error) {
	wavPath, err := p.ws.Path(unit.ID, fmt.Sprintf("temp_audio_%s.wav", unit.ID))
	if err != nil {
		return "", nil, err
	}

	log.WithField("stage", StageDecoding).Debug("decoding source")
	clip, err := p.decode(ctx, file.Path, wavPath, log)
	if err != nil {
		return "", nil, err
	}

	chunks := audio.Windows(clip.Duration(), p.opts.ChunkDuration)
	log.WithFields(logrus.Fields{
		"stage":    StageChunking,
		"duration": clip.Duration().String(),
		"chunks":   len(chunks),
	}).Debug("audio partitioned")

	results := make([]types.ChunkResult, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", results, err
		}
		res, err := p.processChunk(ctx, unit, clip, chunk, log.WithField("chunk", chunk.Index+1))
		if err != nil {
			return "", results, err
		}
		results = append(results, res)
	}

	log.WithField("stage", StageAssembling).Debug("assembling document")
	doc := Assemble(results)

	path := OutputPath(outputDir, file.BaseName, p.now())
	log.WithField("stage", StageWriting).Debug("writing document")
	written, err := WriteDocument(path, unit.SrcLang, unit.DestLang, doc)
	if err != nil {
		return "", results, err
	}
	return written, results, nil
}

// decode attempts the decode step up to DecodeAttempts times with a fixed delay.
// This is the only retried step of a run.
func (p *Pipeline) decode(ctx context.Context, src, dst string, log *logrus.Entry) (*audio.Clip, error) {
	var clip *audio.Clip
	attempt := 0
	op := func() error {
		attempt++
		c, err := p.decoder.Decode(ctx, src, dst)
		if err != nil {
			return err
		}
		clip = c
		return nil
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.opts.DecodeDelay), uint64(p.opts.DecodeAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		log.WithFields(logrus.Fields{
			"stage":   StageDecoding,
			"attempt": attempt,
			"retry":   wait.String(),
			"error":   err.Error(),
		}).Warn("decode failed, retrying")
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("decode %s after %d attempts: %w", src, attempt, err)
	}
	return clip, nil
}

// processChunk exports, recognizes and translates one window. Recognition and
// translation service failures produce an absent result; anything else fails the
// file. The chunk artifact is removed before returning either way.
func (p *Pipeline) processChunk(ctx context.Context, unit types.WorkUnit, clip *audio.Clip, chunk types.Chunk, log *logrus.Entry) (types.ChunkResult, error) {
	result := types.ChunkResult{Index: chunk.Index}

	chunkPath, err := p.ws.Path(unit.ID, fmt.Sprintf("chunk_%s_%d.wav", unit.ID, chunk.Start.Milliseconds()))
	if err != nil {
		return result, err
	}
	defer func() {
		log.WithField("stage", StageDiscarding).Debug("removing chunk file")
		if err := os.Remove(chunkPath); err != nil && !os.IsNotExist(err) {
			log.WithField("path", chunkPath).WithField("error", err.Error()).Error("error removing chunk file")
		}
	}()

	log.WithField("stage", StageExporting).Debug("exporting chunk")
	if err := p.decoder.Export(clip, chunk, chunkPath); err != nil {
		return result, err
	}

	log.WithField("stage", StageRecognizing).Info("processing chunk")
	text, err := p.recognizer.Recognize(ctx, chunkPath, unit.SrcLang)
	var recErr *transcription.ServiceError
	switch {
	case errors.Is(err, transcription.ErrNoSpeech):
		log.Warn("could not understand audio")
		result.Status = types.ChunkNoSpeech
		result.Err = err
		return result, nil
	case errors.As(err, &recErr):
		log.WithField("error", err.Error()).Error("recognition error")
		result.Status = types.ChunkServiceError
		result.Err = err
		return result, nil
	case err != nil:
		return result, fmt.Errorf("recognize chunk %d: %w", chunk.Index+1, err)
	}

	log.WithField("stage", StageTranslating).Debug("translating chunk")
	translated, err := p.translator.Translate(ctx, text, unit.SrcLang, unit.DestLang)
	var trErr *translation.ServiceError
	switch {
	case errors.As(err, &trErr):
		log.WithField("error", err.Error()).Error("translation error")
		result.Status = types.ChunkServiceError
		result.Err = err
		return result, nil
	case err != nil:
		return result, fmt.Errorf("translate chunk %d: %w", chunk.Index+1, err)
	}

	result.Status = types.ChunkOK
	result.Transcript = text
	result.Translation = translated
	return result, nil
}
