package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var errNotWAV = errors.New("not a RIFF/WAVE stream")

// Clip is decoded PCM audio held in memory.
type Clip struct {
	buf      *goaudio.IntBuffer
	bitDepth int
}

// NewClip wraps interleaved samples. bitDepth is the depth used when the clip is
// written back out.
func NewClip(sampleRate, channels, bitDepth int, samples []int) *Clip {
	return &Clip{
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           samples,
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
	}
}

// Silence returns a mono clip of d worth of zero samples.
func Silence(d time.Duration, sampleRate, bitDepth int) *Clip {
	frames := int(int64(d) * int64(sampleRate) / int64(time.Second))
	return NewClip(sampleRate, 1, bitDepth, make([]int, frames))
}

func (c *Clip) SampleRate() int {
	if c == nil || c.buf == nil || c.buf.Format == nil {
		return 0
	}
	return c.buf.Format.SampleRate
}

func (c *Clip) Channels() int {
	if c == nil || c.buf == nil || c.buf.Format == nil {
		return 0
	}
	return c.buf.Format.NumChannels
}

func (c *Clip) BitDepth() int {
	if c == nil {
		return 0
	}
	return c.bitDepth
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels() == 0 {
		return 0
	}
	return c.buf.NumFrames()
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	rate := c.SampleRate()
	if rate == 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(rate)
}

// Slice returns the sub-clip [start, start+dur), clamped to the end of the clip.
// The returned clip shares the underlying samples.
func (c *Clip) Slice(start, dur time.Duration) *Clip {
	frames := c.Frames()
	from := min(c.frameAt(start), frames)
	to := min(c.frameAt(start+dur), frames)
	if to < from {
		to = from
	}
	ch := c.Channels()
	return NewClip(c.SampleRate(), ch, c.bitDepth, c.buf.Data[from*ch:to*ch])
}

func (c *Clip) frameAt(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(c.SampleRate()) / int64(time.Second))
}

// ReadWAV parses a PCM WAV stream. Non-audio chunks (LIST, fact, ...) are skipped.
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errNotWAV
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("wav: unsupported format %d", d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: read data: %w", err)
	}
	return &Clip{buf: buf, bitDepth: int(d.BitDepth)}, nil
}

// ReadWAVFile opens and parses path.
func ReadWAVFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f)
}

// WriteWAV encodes the clip as PCM WAV. The encoder patches chunk sizes on close,
// so w must be seekable.
func WriteWAV(w io.WriteSeeker, c *Clip) error {
	enc := wav.NewEncoder(w, c.SampleRate(), c.bitDepth, c.Channels(), wavFormatPCM)
	// an empty clip still needs its header written
	if err := enc.Write(c.buf); err != nil {
		return err
	}
	return enc.Close()
}

// WriteWAVFile writes the clip to path, replacing any existing file.
func WriteWAVFile(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
