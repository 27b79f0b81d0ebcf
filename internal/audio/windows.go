package audio

import (
	"time"

	"voice-translate-go/internal/types"
)

// DefaultWindow is the fixed chunk duration used when none is configured.
const DefaultWindow = 30 * time.Second

// Windows partitions total into sequential, non-overlapping windows of size.
// The last window may be shorter. A non-positive total yields no windows.
func Windows(total, size time.Duration) []types.Chunk {
	if size <= 0 {
		size = DefaultWindow
	}
	if total <= 0 {
		return nil
	}
	chunks := make([]types.Chunk, 0, int((total+size-1)/size))
	for i, start := 0, time.Duration(0); start < total; i, start = i+1, start+size {
		chunks = append(chunks, types.Chunk{
			Index:    i,
			Start:    start,
			Duration: min(size, total-start),
		})
	}
	return chunks
}
