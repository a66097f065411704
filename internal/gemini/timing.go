package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/timing"
)

const timingPromptTemplate = `You are an expert audio timing analyst for comic-to-video conversion.

I have %d comic panels and this audio narration. The script for the narration is:

%s

Analyze the audio and determine:
1. When each panel's dialogue/narration starts (start_time in seconds)
2. How long each panel should be displayed (duration in seconds)

Return ONLY a JSON array with this exact format:
[
  {"panel": 1, "start_time": 0.0, "duration": 2.5},
  {"panel": 2, "start_time": 2.5, "duration": 3.0}
]

Rules:
- Must have exactly %d entries
- Times must be accurate to the audio
- Each panel's start_time should equal the previous panel's start_time + duration
- Return ONLY the JSON array, no other text
`

// AnalyzeTiming asks the model to align panels with the narration. The
// returned entries are raw and untrusted; timing.Normalize decides whether
// they are usable. Any error means "no result" to the caller.
func (c *Client) AnalyzeTiming(ctx context.Context, audioPath, script string, panelCount int) ([]timing.RawEntry, error) {
	prompt := fmt.Sprintf(timingPromptTemplate, panelCount, script, panelCount)

	text, err := c.generate(ctx, audioPath, prompt)
	if err != nil {
		return nil, err
	}

	entries, err := parseTimingResponse(text)
	if err != nil {
		c.logger.Warn("unparseable timing response",
			zap.Int("response_len", len(text)), zap.Error(err))
		return nil, err
	}

	c.logger.Info("timing analysis complete",
		zap.Int("panels", panelCount), zap.Int("entries", len(entries)))
	return entries, nil
}

// Models wrap JSON in prose or markdown fences no matter how firmly the
// prompt forbids it; take the first array-shaped chunk we can find.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

func parseTimingResponse(text string) ([]timing.RawEntry, error) {
	match := jsonArrayRe.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var entries []timing.RawEntry
	if err := json.Unmarshal([]byte(match), &entries); err != nil {
		return nil, fmt.Errorf("decoding timing array: %w", err)
	}
	return entries, nil
}
