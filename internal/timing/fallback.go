package timing

// EvenSplit divides totalDuration into panelCount equal contiguous spans
// starting at zero. It is the universal safety net for the pipeline: for
// valid inputs it always succeeds, so a timeline can be produced even when
// audio analysis returns nothing usable.
func EvenSplit(panelCount int, totalDuration float64) (Sequence, error) {
	if panelCount < 1 {
		return nil, ErrPanelCount
	}
	if totalDuration <= 0 {
		return nil, ErrDuration
	}

	per := totalDuration / float64(panelCount)
	seq := make(Sequence, panelCount)
	for i := range seq {
		seq[i] = PanelTiming{
			Panel:    i + 1,
			Start:    float64(i) * per,
			Duration: per,
		}
	}
	return seq, nil
}

// DefaultDuration estimates a total narration length when no audio-derived
// duration is available.
func DefaultDuration(panelCount int, secondsPerPanel float64) float64 {
	return float64(panelCount) * secondsPerPanel
}
