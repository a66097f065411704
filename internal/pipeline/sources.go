package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/gemini"
	"github.com/ivlev/comic2premiere/internal/timing"
)

// TimingSource produces a canonical timing sequence for panelCount panels,
// or an error meaning "this producer has nothing usable". Sources are
// tried in order; the even-split safety net always terminates the chain.
type TimingSource interface {
	Name() string
	Timings(ctx context.Context, panelCount int) (timing.Sequence, error)
}

// GeminiSource derives timings from the narration audio and script via the
// model, then validates them. Model failure and validation failure look
// the same from outside: the chain moves on.
type GeminiSource struct {
	Client    *gemini.Client
	AudioPath string
	Script    string
	Timeout   float64 // seconds; caller-level timeout is the only cancellation point
	Logger    *zap.Logger
}

func (s *GeminiSource) Name() string { return "gemini" }

func (s *GeminiSource) Timings(ctx context.Context, panelCount int) (timing.Sequence, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, secondsToDuration(s.Timeout))
		defer cancel()
	}

	raw, err := s.Client.AnalyzeTiming(ctx, s.AudioPath, s.Script, panelCount)
	if err != nil {
		return nil, err
	}

	seq, err := timing.Normalize(raw, panelCount)
	if err != nil {
		s.Logger.Warn("model timings failed validation", zap.Error(err))
		return nil, err
	}
	return seq, nil
}

// evenSource is the terminal fallback: an even split of the resolved total
// duration. It cannot fail for the inputs the pipeline feeds it.
type evenSource struct {
	totalDuration float64
}

func (s *evenSource) Name() string { return "even-split" }

func (s *evenSource) Timings(_ context.Context, panelCount int) (timing.Sequence, error) {
	return timing.EvenSplit(panelCount, s.totalDuration)
}
