package timing

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RawEntry is one timing-like record as produced by an external source,
// usually the Gemini client. Producers disagree on field names (the model
// has returned "start"/"duration", "start_time"/"duration" and
// "start"/"end" over time), so every known variant is kept and reconciled
// during Normalize. Field types are left open: numbers, numeric strings
// and json.Number all occur in practice.
type RawEntry struct {
	Panel     any `json:"panel"`
	Index     any `json:"index"`
	Start     any `json:"start"`
	StartTime any `json:"start_time"`
	Duration  any `json:"duration"`
	End       any `json:"end"`
	EndTime   any `json:"end_time"`
}

// Normalize validates a raw timing batch against an expected panel count
// and produces the canonical sequence. It either returns exactly
// panelCount entries or an error wrapping ErrInvalidTimingData; partially
// valid output is never produced.
//
// Policies:
//   - more entries than panelCount: the first panelCount entries (in given
//     order) are used;
//   - fewer entries: the whole batch is invalid, no extrapolation;
//   - entry order is the canonical panel order, panel numbers are
//     reassigned 1..N; the record's stated panel index must be present
//     and numeric but is otherwise ignored;
//   - end times are re-derived from start+duration and never trusted.
func Normalize(raw []RawEntry, panelCount int) (Sequence, error) {
	if panelCount < 1 {
		return nil, ErrPanelCount
	}
	if len(raw) < panelCount {
		return nil, fmt.Errorf("%w: got %d entries, need %d", ErrInvalidTimingData, len(raw), panelCount)
	}
	raw = raw[:panelCount]

	seq := make(Sequence, 0, panelCount)
	for i, entry := range raw {
		if _, ok := toFloat(firstSet(entry.Panel, entry.Index)); !ok {
			return nil, fmt.Errorf("%w: entry %d: missing or non-numeric panel index", ErrInvalidTimingData, i)
		}

		start, ok := toFloat(firstSet(entry.Start, entry.StartTime))
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: missing or non-numeric start time", ErrInvalidTimingData, i)
		}
		if start < 0 {
			return nil, fmt.Errorf("%w: entry %d: negative start time %g", ErrInvalidTimingData, i, start)
		}

		duration, ok := toFloat(entry.Duration)
		if !ok {
			// start/end producers: derive duration once, at the boundary
			end, endOK := toFloat(firstSet(entry.End, entry.EndTime))
			if !endOK {
				return nil, fmt.Errorf("%w: entry %d: missing or non-numeric duration", ErrInvalidTimingData, i)
			}
			duration = end - start
		}
		if duration <= 0 {
			return nil, fmt.Errorf("%w: entry %d: non-positive duration %g", ErrInvalidTimingData, i, duration)
		}

		seq = append(seq, PanelTiming{
			Panel:    i + 1,
			Start:    start,
			Duration: duration,
		})
	}

	return seq, nil
}

// firstSet returns the first non-nil value.
func firstSet(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// toFloat coerces the loose types encoding/json can hand us into a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
