package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"voice-translate-go/internal/types"
)

var (
	// ErrDecode marks a source container that could not be read or re-encoded.
	ErrDecode = errors.New("decode failed")
	// ErrEncode marks a failure writing a chunk artifact.
	ErrEncode = errors.New("encode failed")
)

// Decoder is the decode/encode collaborator used by the pipeline.
type Decoder interface {
	// Decode re-encodes src to an uncompressed WAV at dst and loads it.
	Decode(ctx context.Context, src, dst string) (*Clip, error)
	// Export writes the chunk's window of clip to path as WAV.
	Export(clip *Clip, chunk types.Chunk, path string) error
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := commandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	return res, err
}

// FFmpegDecoder decodes through an ffmpeg binary.
type FFmpegDecoder struct {
	ffmpegPath string
	sampleRate int
	runner     commandRunner
	readWAV    func(path string) (*Clip, error)
	writeWAV   func(path string, c *Clip) error
}

// NewFFmpegDecoder returns a decoder using ffmpegPath ("ffmpeg" when empty).
func NewFFmpegDecoder(ffmpegPath string) *FFmpegDecoder {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDecoder{
		ffmpegPath: ffmpegPath,
		sampleRate: 16000,
		runner:     execRunner{},
		readWAV:    ReadWAVFile,
		writeWAV:   WriteWAVFile,
	}
}

func (d *FFmpegDecoder) Decode(ctx context.Context, src, dst string) (*Clip, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", src,
		"-ac", "1", "-ar", fmt.Sprint(d.sampleRate),
		"-f", "wav",
		dst,
	}
	res, err := d.runner.Run(ctx, d.ffmpegPath, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg exit %d: %s", ErrDecode, res.ExitCode, lastLine(res.Stderr, err))
	}
	clip, err := d.readWAV(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return clip, nil
}

func (d *FFmpegDecoder) Export(clip *Clip, chunk types.Chunk, path string) error {
	if clip == nil {
		return fmt.Errorf("%w: no decoded audio", ErrEncode)
	}
	if err := d.writeWAV(path, clip.Slice(chunk.Start, chunk.Duration)); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func lastLine(stderr string, fallback error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	return fallback.Error()
}
