// Package batch runs the pipeline over every audio file in a directory on a
// bounded pool of workers and reports the tally.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"voice-translate-go/internal/aggregator"
	"voice-translate-go/internal/report"
	"voice-translate-go/internal/types"
	"voice-translate-go/internal/workspace"
)

// DefaultWorkers bounds concurrency when the caller passes a non-positive value.
const DefaultWorkers = 4

// FileProcessor is the per-file unit of work. *pipeline.Pipeline implements it.
type FileProcessor interface {
	Run(ctx context.Context, file types.AudioFile, outputDir, src, dest string) types.Outcome
}

type Options struct {
	SrcLang    string
	DestLang   string
	Extensions []string
	// LogPath is echoed in the summary so users know where details went.
	LogPath string
	// ReportPath, when set, receives an XLSX workbook with one row per file.
	ReportPath string
}

// Runner is the batch orchestrator.
type Runner struct {
	proc     FileProcessor
	ws       *workspace.Workspace
	log      *logrus.Entry
	opts     Options
	out      io.Writer
	progress Progress
}

func NewRunner(proc FileProcessor, ws *workspace.Workspace, log *logrus.Entry, opts Options) *Runner {
	log = log.WithField("component", "batch")
	return &Runner{
		proc:     proc,
		ws:       ws,
		log:      log,
		opts:     opts,
		out:      os.Stdout,
		progress: NewProgress(os.Stderr, log),
	}
}

// SetOutput redirects the console summary (stdout by default).
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// SetProgress replaces the progress reporter; nil disables progress output.
func (r *Runner) SetProgress(p Progress) {
	if p == nil {
		p = noProgress{}
	}
	r.progress = p
}

// Run processes every matching file in inputDir. Only setup failures are returned
// as errors; a file that fails is counted and the batch keeps going.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string, maxWorkers int) (types.Summary, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return types.Summary{}, &SetupError{Op: "create output dir", Err: err}
	}
	paths, err := Discover(inputDir, r.opts.Extensions)
	if err != nil {
		return types.Summary{}, &SetupError{Op: "list input dir", Err: err}
	}
	if len(paths) == 0 {
		r.log.WithField("input_dir", inputDir).Warn("no audio files found")
		fmt.Fprintf(r.out, "No audio files found in %s\n", inputDir)
		return types.Summary{}, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers
	}
	workers := min(maxWorkers, len(paths))
	r.log.WithFields(logrus.Fields{"files": len(paths), "workers": workers}).Info("starting batch")

	jobs := make(chan types.AudioFile)
	results := make(chan types.Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				results <- r.proc.Run(ctx, file, outputDir, r.opts.SrcLang, r.opts.DestLang)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, p := range paths {
			jobs <- types.NewAudioFile(p)
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var tally aggregator.Tally
	r.progress.Start(len(paths))
	for o := range results {
		tally.Add(o)
		r.progress.Done(o)
	}
	r.progress.Finish()

	summary := tally.Summary()
	r.log.WithFields(logrus.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("batch complete")
	fmt.Fprint(r.out, report.RenderSummary(summary, r.opts.LogPath))

	if r.opts.ReportPath != "" {
		if err := report.WriteXLSX(r.opts.ReportPath, summary); err != nil {
			r.log.WithField("error", err.Error()).Error("failed to write batch report")
		} else {
			r.log.WithField("report", r.opts.ReportPath).Info("batch report written")
		}
	}

	res := r.ws.CleanupAll()
	for _, e := range res.Errors {
		r.log.WithFields(logrus.Fields{"path": e.Path, "error": e.Error.Error()}).Error("error cleaning up temporary file")
	}
	return summary, nil
}
