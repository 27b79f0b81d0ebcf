package aggregator

import "voice-translate-go/internal/types"

// Tally accumulates outcomes into a Summary. The count is commutative, so the
// order outcomes arrive in does not matter.
type Tally struct {
	summary types.Summary
}

func (t *Tally) Add(o types.Outcome) {
	t.summary.Total++
	if o.Success {
		t.summary.Succeeded++
	} else {
		t.summary.Failed++
	}
	t.summary.Outcomes = append(t.summary.Outcomes, o)
}

func (t *Tally) Summary() types.Summary {
	return t.summary
}

// Aggregate tallies a finished slice of outcomes.
func Aggregate(outcomes []types.Outcome) types.Summary {
	var t Tally
	for _, o := range outcomes {
		t.Add(o)
	}
	return t.Summary()
}

// ChunkStats totals chunk counts across every outcome in the summary.
func ChunkStats(s types.Summary) (attempted, recognized int) {
	for _, o := range s.Outcomes {
		attempted += o.Chunks
		recognized += o.Recognized
	}
	return attempted, recognized
}
