package compositor

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func solidPanel(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCompositeCanvasSize(t *testing.T) {
	p := &Processor{Width: 1920, Height: 1080, Logger: zap.NewNop()}

	// Tall portrait panel: must still fill the full canvas
	out := p.Composite(solidPanel(300, 900, color.RGBA{R: 200, A: 255}))

	if out.Bounds().Dx() != 1920 || out.Bounds().Dy() != 1080 {
		t.Errorf("Expected 1920x1080 canvas, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}

	// Center pixel comes from the foreground panel, corners from the
	// dimmed blurred background
	center := out.RGBAAt(960, 540)
	if center.R < 150 {
		t.Errorf("Center should show the bright panel, got %v", center)
	}
	corner := out.RGBAAt(5, 5)
	if corner.R >= center.R {
		t.Errorf("Corner background should be dimmer than the panel: corner=%v center=%v", corner, center)
	}
}

func TestCompositeFillsCanvasForAwkwardSizes(t *testing.T) {
	// Panel sizes whose cover scale is a repeating fraction; the scaled
	// background must still cover every canvas pixel.
	p := &Processor{Width: 1000, Height: 1000, Logger: zap.NewNop()}

	for _, side := range []int{717, 719, 997} {
		out := p.Composite(solidPanel(side, side, color.RGBA{R: 180, G: 40, B: 40, A: 255}))
		for _, pt := range []image.Point{{0, 0}, {999, 0}, {0, 999}, {999, 999}} {
			if got := out.RGBAAt(pt.X, pt.Y); got.A != 255 {
				t.Errorf("Panel side %d: corner %v left unfilled: %v", side, pt, got)
			}
		}
	}
}

func TestProcessAllWritesOrderedJPEGs(t *testing.T) {
	outDir := t.TempDir()
	p := &Processor{Width: 640, Height: 360, Workers: 3, Logger: zap.NewNop()}

	src := &memSource{panels: []image.Image{
		solidPanel(100, 100, color.RGBA{R: 255, A: 255}),
		solidPanel(200, 100, color.RGBA{G: 255, A: 255}),
	}}

	names, err := p.ProcessAll(context.Background(), src, outDir)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	want := []string{"panel_001.jpg", "panel_002.jpg"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Expected name %s, got %s", name, names[i])
		}
		f, err := os.Open(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("Panel file missing: %v", err)
		}
		cfgImg, err := jpeg.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("Panel %s is not a JPEG: %v", name, err)
		}
		if cfgImg.Width != 640 || cfgImg.Height != 360 {
			t.Errorf("Panel %s: expected 640x360, got %dx%d", name, cfgImg.Width, cfgImg.Height)
		}
	}
}

func TestProcessAllFilterFailureIsNonFatal(t *testing.T) {
	outDir := t.TempDir()
	p := &Processor{
		Width:   320,
		Height:  180,
		Workers: 1,
		Logger:  zap.NewNop(),
		Filter: func(ctx context.Context, panel int, img image.Image) (image.Image, error) {
			return nil, context.DeadlineExceeded
		},
	}

	src := &memSource{panels: []image.Image{solidPanel(64, 64, color.RGBA{B: 255, A: 255})}}
	names, err := p.ProcessAll(context.Background(), src, outDir)
	if err != nil {
		t.Fatalf("ProcessAll should survive filter failure: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("Expected 1 panel, got %d", len(names))
	}
}

func TestMaskRegionsBlursOnlyInside(t *testing.T) {
	// Black panel with a small white box; masking the box region should
	// soften it without touching far-away pixels.
	img := solidPanel(200, 200, color.RGBA{A: 255})
	for y := 80; y < 120; y++ {
		for x := 80; x < 120; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	out := MaskRegions(img, []image.Rectangle{image.Rect(70, 70, 130, 130)})

	if got := out.RGBAAt(100, 100); got.R == 255 {
		t.Errorf("Masked center should no longer be pure white, got %v", got)
	}
	if got := out.RGBAAt(10, 10); got.R != 0 {
		t.Errorf("Pixels outside the region must be untouched, got %v", got)
	}
}

func TestMaskRegionsClampsToBounds(t *testing.T) {
	img := solidPanel(50, 50, color.RGBA{R: 100, A: 255})
	out := MaskRegions(img, []image.Rectangle{image.Rect(-20, -20, 500, 500), image.Rect(60, 60, 70, 70)})
	if out.Bounds() != img.Bounds() {
		t.Errorf("Output bounds changed: %v", out.Bounds())
	}
}

type memSource struct {
	panels []image.Image
}

func (s *memSource) Count() int                      { return len(s.panels) }
func (s *memSource) Panel(i int) (image.Image, error) { return s.panels[i], nil }
func (s *memSource) Close() error                    { return nil }
