package batch

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"voice-translate-go/internal/types"
)

// Progress receives one call per finished file, in completion order.
type Progress interface {
	Start(total int)
	Done(o types.Outcome)
	Finish()
}

// NewProgress picks a terminal progress bar when w is a TTY and falls back to log
// lines otherwise.
func NewProgress(w io.Writer, log *logrus.Entry) Progress {
	if f, ok := w.(*os.File); ok && isTerminal(f.Fd()) {
		return &barProgress{w: w}
	}
	return &logProgress{log: log}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Processing files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { io.WriteString(p.w, "\n") }),
	)
}

func (p *barProgress) Done(types.Outcome) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type logProgress struct {
	log   *logrus.Entry
	total int
	done  int
}

func (p *logProgress) Start(total int) {
	p.total = total
}

func (p *logProgress) Done(o types.Outcome) {
	p.done++
	p.log.WithFields(logrus.Fields{
		"done":    p.done,
		"total":   p.total,
		"file":    o.Source.Path,
		"success": o.Success,
	}).Info("file finished")
}

func (p *logProgress) Finish() {}

type noProgress struct{}

func (noProgress) Start(int)          {}
func (noProgress) Done(types.Outcome) {}
func (noProgress) Finish()            {}
