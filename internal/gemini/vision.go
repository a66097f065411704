package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"regexp"
)

const bubblePrompt = `Find every speech bubble, dialogue balloon and caption box containing text in this comic panel.

Return ONLY a JSON array of pixel-coordinate bounding boxes:
[
  {"x": 120, "y": 40, "width": 300, "height": 180}
]

Return an empty array [] if the panel has no text. Return ONLY the JSON array, no other text.
`

type bubbleBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectBubbles returns speech-bubble regions for one panel image. An
// error here never fails the pipeline; the panel is just left uncropped.
func (c *Client) DetectBubbles(ctx context.Context, imagePath string) ([]image.Rectangle, error) {
	text, err := c.generate(ctx, imagePath, bubblePrompt)
	if err != nil {
		return nil, err
	}
	return parseBubbleResponse(text)
}

var bubbleArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

func parseBubbleResponse(text string) ([]image.Rectangle, error) {
	match := bubbleArrayRe.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var boxes []bubbleBox
	if err := json.Unmarshal([]byte(match), &boxes); err != nil {
		return nil, fmt.Errorf("decoding bubble boxes: %w", err)
	}

	rects := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		if b.Width <= 0 || b.Height <= 0 {
			continue
		}
		rects = append(rects, image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height))
	}
	return rects, nil
}
