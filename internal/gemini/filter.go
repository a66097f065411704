package gemini

import (
	"context"
	"image"
	"image/png"
	"os"

	"github.com/ivlev/comic2premiere/internal/compositor"
)

// BubbleFilter adapts bubble detection into a compositor pre-filter. The
// panel is spilled to a temp PNG because the model only accepts file
// uploads. A filter error leaves the panel unmasked.
func BubbleFilter(c *Client) compositor.Filter {
	return func(ctx context.Context, panel int, img image.Image) (image.Image, error) {
		path, err := writeTempPNG(img)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path)

		rects, err := c.DetectBubbles(ctx, path)
		if err != nil {
			return nil, err
		}
		if len(rects) == 0 {
			return img, nil
		}
		return compositor.MaskRegions(img, rects), nil
	}
}

func writeTempPNG(img image.Image) (string, error) {
	f, err := os.CreateTemp("", "panel_*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
