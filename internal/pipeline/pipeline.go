// Package pipeline runs one complete processing request: composite the
// panels, obtain a timing sequence (model first, even split as the safety
// net), serialize the timeline document and package everything into a ZIP.
// A Project is built per request and owns its data; nothing is shared
// between concurrent runs.
package pipeline

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/compositor"
	"github.com/ivlev/comic2premiere/internal/config"
	"github.com/ivlev/comic2premiere/internal/source"
	"github.com/ivlev/comic2premiere/internal/system"
	"github.com/ivlev/comic2premiere/internal/timeline"
	"github.com/ivlev/comic2premiere/internal/timing"
)

// DocumentName is the timeline document's entry name inside the archive,
// fixed by convention with the import instructions shown to the user.
const DocumentName = "comic_sequence.xml"

// Progress receives coarse stage updates for UI display.
type Progress func(stage string, pct int)

type Project struct {
	Config *config.Config
	Source source.PanelSource

	// AudioPath is the narration file on disk; AudioName is the filename
	// the timeline document references and the archive stores.
	AudioPath string
	AudioName string

	// Preferred timing sources, tried in order. The even-split fallback
	// is always appended implicitly and never fails.
	Timing []TimingSource

	// Optional panel pre-filter (speech bubble masking)
	Filter compositor.Filter

	Logger   *zap.Logger
	Progress Progress
}

// Run executes the pipeline and returns the path of the finished archive
// inside workDir. Timing-source failures are recovered internally;
// serializer errors abort the request.
func (p *Project) Run(ctx context.Context, workDir string) (string, error) {
	start := time.Now()
	panelCount := p.Source.Count()
	if panelCount == 0 {
		return "", fmt.Errorf("%w: panel source is empty", timeline.ErrSerialization)
	}

	p.report("processing images", 10)

	stageDir := filepath.Join(workDir, "panels")
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", err
	}

	workers := p.Config.Workers
	if workers == 0 {
		workers = system.Workers()
	}

	proc := &compositor.Processor{
		Width:   p.Config.Width,
		Height:  p.Config.Height,
		Workers: workers,
		Filter:  p.Filter,
		Logger:  p.Logger,
	}
	imageNames, err := proc.ProcessAll(ctx, p.Source, stageDir)
	if err != nil {
		return "", fmt.Errorf("compositing panels: %w", err)
	}

	p.report("analyzing audio", 40)

	measured := p.measureAudio()
	seq, err := p.resolveTimings(ctx, panelCount, measured)
	if err != nil {
		return "", err
	}

	// Declared sequence length: measured audio wins; otherwise the
	// timings themselves are the best estimate we have.
	audioDuration := measured
	if audioDuration <= 0 {
		audioDuration = seq.TotalSpan()
	}

	p.report("generating timeline", 70)

	doc, err := timeline.Serialize(imageNames, seq, p.AudioName, audioDuration)
	if err != nil {
		return "", fmt.Errorf("could not generate project file: %w", err)
	}

	p.report("packaging", 85)

	zipPath := filepath.Join(workDir, "comic_to_premiere.zip")
	if err := p.writeArchive(zipPath, doc, stageDir, imageNames); err != nil {
		return "", fmt.Errorf("packaging archive: %w", err)
	}

	p.report("done", 100)
	p.Logger.Info("pipeline complete",
		zap.Int("panels", panelCount),
		zap.Float64("duration_seconds", audioDuration),
		zap.Duration("elapsed", time.Since(start)))
	return zipPath, nil
}

// measureAudio returns the narration length in seconds, or 0 when it
// cannot be measured.
func (p *Project) measureAudio() float64 {
	if p.AudioPath == "" {
		return 0
	}
	d, err := system.AudioDuration(p.AudioPath)
	if err != nil {
		p.Logger.Warn("could not measure audio duration", zap.Error(err))
		return 0
	}
	return d
}

// resolveTimings walks the source chain. The even split terminates it, so
// a sequence is always produced unless the configuration itself is broken
// (no measurable audio and a non-positive seconds-per-panel).
func (p *Project) resolveTimings(ctx context.Context, panelCount int, measured float64) (timing.Sequence, error) {
	for _, src := range p.Timing {
		seq, err := src.Timings(ctx, panelCount)
		if err != nil {
			p.Logger.Warn("timing source failed, trying next",
				zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		p.Logger.Info("timings resolved", zap.String("source", src.Name()))
		return seq, nil
	}

	total := measured
	if total <= 0 {
		total = timing.DefaultDuration(panelCount, p.Config.SecondsPerPanel)
	}

	fallback := &evenSource{totalDuration: total}
	seq, err := fallback.Timings(ctx, panelCount)
	if err != nil {
		return nil, fmt.Errorf("even-split fallback rejected its inputs: %w", err)
	}
	p.Logger.Info("timings resolved", zap.String("source", fallback.Name()),
		zap.Float64("total_duration", total))
	return seq, nil
}

// writeArchive assembles the deliverable: document first, then panels in
// order, then the original audio.
func (p *Project) writeArchive(zipPath string, doc []byte, stageDir string, imageNames []string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	w, err := zw.Create(DocumentName)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return err
	}

	for _, name := range imageNames {
		if err := addFile(zw, name, filepath.Join(stageDir, name)); err != nil {
			return err
		}
	}

	if p.AudioPath != "" {
		if err := addFile(zw, p.AudioName, p.AudioPath); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func (p *Project) report(stage string, pct int) {
	if p.Progress != nil {
		p.Progress(stage, pct)
	}
	p.Logger.Debug("stage", zap.String("stage", stage), zap.Int("pct", pct))
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
