// Package timing builds the canonical per-panel timing sequence that drives
// the exported timeline. A sequence comes either from normalizing untrusted
// model output or from the even-split fallback; downstream code never needs
// to know which.
package timing

import "errors"

var (
	// ErrInvalidTimingData marks raw timing input that failed validation.
	// Callers recover from it by switching to the fallback generator.
	ErrInvalidTimingData = errors.New("invalid timing data")

	// ErrPanelCount and ErrDuration signal bad fallback-generator arguments.
	// These are caller bugs, not recoverable runtime conditions.
	ErrPanelCount = errors.New("panel count must be at least 1")
	ErrDuration   = errors.New("total duration must be positive")
)

// PanelTiming describes when one comic panel is visible relative to the
// audio track.
type PanelTiming struct {
	Panel    int     // 1-based, unique, used for labels only
	Start    float64 // seconds, >= 0
	Duration float64 // seconds, > 0
}

// End returns the moment the panel leaves the screen. It is always derived
// from Start+Duration; a separately stated end time is never trusted.
func (t PanelTiming) End() float64 {
	return t.Start + t.Duration
}

// Sequence is an ordered list of panel timings, one entry per panel,
// ordered by panel number. It is read-only once handed to the serializer.
type Sequence []PanelTiming

// TotalSpan returns the end of the last entry, which defines the video
// timeline's total duration.
func (s Sequence) TotalSpan() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].End()
}
