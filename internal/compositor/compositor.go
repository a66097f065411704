// Package compositor renders uploaded comic panels onto a fixed-size
// canvas: the panel is centered over a blurred, darkened, cover-scaled
// copy of itself, the way the editor-facing images are expected to look.
package compositor

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/comic2premiere/internal/source"
)

const (
	blurRadius     = 30
	blurPasses     = 2    // two box passes approximate a gaussian well enough
	backgroundDim  = 0.5  // brightness multiplier behind the panel
	foregroundFill = 0.9  // panel occupies 90% of the available canvas
	jpegQuality    = 95
)

// Filter optionally transforms a decoded panel before compositing.
// The bubble-cropping step plugs in here; a nil Filter is a passthrough.
type Filter func(ctx context.Context, panel int, img image.Image) (image.Image, error)

// Processor composites all panels of a source into an output directory.
type Processor struct {
	Width    int
	Height   int
	Workers  int
	Filter   Filter
	Logger   *zap.Logger
	Progress func(done, total int)
}

// ProcessAll composites every panel in parallel and writes
// panel_001.jpg, panel_002.jpg, ... into outDir. The returned names are in
// panel order and relative to outDir, ready for the timeline serializer.
func (p *Processor) ProcessAll(ctx context.Context, src source.PanelSource, outDir string) ([]string, error) {
	total := src.Count()
	if total == 0 {
		return nil, fmt.Errorf("panel source is empty")
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	names := make([]string, total)
	var done int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < total; i++ {
		g.Go(func() error {
			img, err := src.Panel(i)
			if err != nil {
				return fmt.Errorf("panel %d: %w", i+1, err)
			}

			if p.Filter != nil {
				filtered, err := p.Filter(ctx, i+1, img)
				if err != nil {
					// Filters are best-effort; the raw panel still works
					p.Logger.Warn("panel filter failed, using original",
						zap.Int("panel", i+1), zap.Error(err))
				} else {
					img = filtered
				}
			}

			composed := p.Composite(img)

			name := fmt.Sprintf("panel_%03d.jpg", i+1)
			if err := writeJPEG(filepath.Join(outDir, name), composed); err != nil {
				return fmt.Errorf("panel %d: %w", i+1, err)
			}
			names[i] = name

			if p.Progress != nil {
				p.Progress(int(atomic.AddInt64(&done, 1)), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// Composite renders one panel onto the canvas.
func (p *Processor) Composite(img image.Image) *image.RGBA {
	w, h := p.Width, p.Height
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	// Background: cover-scale, center-crop, blur, dim
	srcBounds := img.Bounds()
	coverScale := maxf(float64(w)/float64(srcBounds.Dx()), float64(h)/float64(srcBounds.Dy()))
	// Ceil so float rounding never leaves the background a pixel short of
	// the canvas
	bgW := int(math.Ceil(float64(srcBounds.Dx()) * coverScale))
	bgH := int(math.Ceil(float64(srcBounds.Dy()) * coverScale))

	bg := image.NewRGBA(image.Rect(0, 0, bgW, bgH))
	// Bilinear is plenty here, the result is blurred anyway
	draw.ApproxBiLinear.Scale(bg, bg.Bounds(), img, srcBounds, draw.Src, nil)

	cropX := (bgW - w) / 2
	cropY := (bgH - h) / 2
	draw.Draw(canvas, canvas.Bounds(), bg, image.Pt(cropX, cropY), draw.Src)

	for pass := 0; pass < blurPasses; pass++ {
		boxBlur(canvas, blurRadius)
	}
	dim(canvas, backgroundDim)

	// Foreground: fit-scale with padding, centered
	fitScale := minf(float64(w)/float64(srcBounds.Dx()), float64(h)/float64(srcBounds.Dy())) * foregroundFill
	fgW := int(float64(srcBounds.Dx()) * fitScale)
	fgH := int(float64(srcBounds.Dy()) * fitScale)

	fgRect := image.Rect((w-fgW)/2, (h-fgH)/2, (w-fgW)/2+fgW, (h-fgH)/2+fgH)
	draw.CatmullRom.Scale(canvas, fgRect, img, srcBounds, draw.Over, nil)

	return canvas
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
