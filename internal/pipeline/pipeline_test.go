package pipeline

import (
	"archive/zip"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/config"
	"github.com/ivlev/comic2premiere/internal/timing"
)

// fakeSource serves solid-color panels from memory.
type fakeSource struct {
	count int
}

func (s *fakeSource) Count() int { return s.count }

func (s *fakeSource) Panel(i int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	c := color.RGBA{R: uint8(40 * (i + 1)), G: 80, B: 120, A: 255}
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (s *fakeSource) Close() error { return nil }

// shortSource mimics a model that returned fewer entries than panels:
// normalization rejects the batch and the chain must move on.
type shortSource struct{}

func (s *shortSource) Name() string { return "short-model" }

func (s *shortSource) Timings(_ context.Context, panelCount int) (timing.Sequence, error) {
	raw := []timing.RawEntry{
		{Panel: float64(1), Start: float64(0), Duration: float64(2)},
		{Panel: float64(2), Start: float64(2), Duration: float64(2)},
	}
	return timing.Normalize(raw, panelCount)
}

func testProject(t *testing.T, workDir string, sources ...TimingSource) *Project {
	t.Helper()

	audioPath := filepath.Join(workDir, "voice.mp3")
	if err := os.WriteFile(audioPath, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("writing fake audio: %v", err)
	}

	cfg := config.Default()
	cfg.Width = 640
	cfg.Height = 360
	cfg.Workers = 2

	return &Project{
		Config:    cfg,
		Source:    &fakeSource{count: 3},
		AudioPath: audioPath,
		AudioName: "voice.mp3",
		Timing:    sources,
		Logger:    zap.NewNop(),
	}
}

func TestRunFallsBackWhenModelOutputIsShort(t *testing.T) {
	workDir := t.TempDir()
	project := testProject(t, workDir, &shortSource{})

	zipPath, err := project.Run(context.Background(), workDir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("Opening archive: %v", err)
	}
	defer r.Close()

	entries := map[string]bool{}
	for _, f := range r.File {
		entries[f.Name] = true
	}

	for _, want := range []string{DocumentName, "panel_001.jpg", "panel_002.jpg", "panel_003.jpg", "voice.mp3"} {
		if !entries[want] {
			t.Errorf("Archive missing entry %s (have %v)", want, entries)
		}
	}

	// The document must be valid despite the model failure
	docFile, err := r.Open(DocumentName)
	if err != nil {
		t.Fatalf("Opening document entry: %v", err)
	}
	defer docFile.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(docFile); err != nil {
		t.Fatalf("Document is not well-formed: %v", err)
	}

	clips := doc.FindElements("//media/video/track/clipitem")
	if len(clips) != 3 {
		t.Errorf("Expected 3 video clipitems, got %d", len(clips))
	}

	// No measurable audio: fallback total is 3 panels x 3s = 9s = 270 frames
	if got := doc.FindElement("//sequence/duration").Text(); got != "270" {
		t.Errorf("Expected sequence duration 270, got %s", got)
	}
}

func TestRunWithoutTimingSources(t *testing.T) {
	workDir := t.TempDir()
	project := testProject(t, workDir)

	zipPath, err := project.Run(context.Background(), workDir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(zipPath); err != nil {
		t.Errorf("Archive not written: %v", err)
	}
}

func TestRunReportsProgressStages(t *testing.T) {
	workDir := t.TempDir()
	project := testProject(t, workDir)

	var stages []string
	project.Progress = func(stage string, pct int) {
		stages = append(stages, stage)
	}

	if _, err := project.Run(context.Background(), workDir); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(stages) == 0 || stages[len(stages)-1] != "done" {
		t.Errorf("Expected final stage done, got %v", stages)
	}
}

func TestRunEmptySourceFails(t *testing.T) {
	workDir := t.TempDir()
	project := testProject(t, workDir)
	project.Source = &fakeSource{count: 0}

	if _, err := project.Run(context.Background(), workDir); err == nil {
		t.Error("Expected error for empty panel source")
	}
}
