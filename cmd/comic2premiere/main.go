package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/comic2premiere/internal/config"
	"github.com/ivlev/comic2premiere/internal/gemini"
	"github.com/ivlev/comic2premiere/internal/pipeline"
	"github.com/ivlev/comic2premiere/internal/source"
	"github.com/ivlev/comic2premiere/internal/system"
)

func main() {
	// Create the working directories if they are missing
	dirs := []string{"input/audio", "input/comic", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Path to a comic PDF or a folder with panel images (default: newest file in input/comic/)")
	audioPtr := flag.String("audio", "", "Path to the voice-over audio (default: newest file in input/audio/)")
	scriptPtr := flag.String("script", "", "Path to a text file with the comic script (optional, helps the timing model)")
	outputPtr := flag.String("output", "", "Path to the result ZIP (if empty, generated automatically in output/)")
	configPtr := flag.String("config", "comic2premiere.yaml", "Path to the YAML config file")
	widthPtr := flag.Int("width", 0, "Canvas width (overrides config)")
	heightPtr := flag.Int("height", 0, "Canvas height (overrides config)")
	dpiPtr := flag.Int("dpi", 0, "PDF rendering DPI (overrides config)")
	workersPtr := flag.Int("workers", 0, "Compositing threads (0 - auto)")
	removeTextPtr := flag.Bool("remove-text", true, "Mask speech bubbles via the vision model")
	debugPtr := flag.Bool("debug", false, "Verbose logging")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *widthPtr > 0 {
		cfg.Width = *widthPtr
	}
	if *heightPtr > 0 {
		cfg.Height = *heightPtr
	}
	if *dpiPtr > 0 {
		cfg.DPI = *dpiPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	cfg.RemoveText = *removeTextPtr

	logger := newLogger(*debugPtr)
	defer logger.Sync()

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestComic("input/comic")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a PDF or panel images into input/comic/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Selected comic: %s\n", inputPath)
	}

	audioPath := *audioPtr
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put the voice-over into input/audio/", err)
		}
		audioPath = latest
		fmt.Printf("[*] Selected audio: %s\n", audioPath)
	}

	script := ""
	if *scriptPtr != "" {
		data, err := os.ReadFile(*scriptPtr)
		if err != nil {
			log.Fatalf("[-] Could not read script: %v", err)
		}
		script = string(data)
	}

	var src source.PanelSource
	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		src, err = source.NewPDFSource(inputPath, cfg.DPI)
	} else {
		src, err = source.NewImageSource(inputPath)
	}
	if err != nil {
		log.Fatalf("[-] Could not open panel source: %v", err)
	}
	defer src.Close()

	if src.Count() == 0 {
		log.Fatalf("[-] Error: no panels found in %s", inputPath)
	}
	fmt.Printf("[*] Panels: %d\n", src.Count())

	ctx := context.Background()

	project := &pipeline.Project{
		Config:    cfg,
		Source:    src,
		AudioPath: audioPath,
		AudioName: filepath.Base(audioPath),
		Logger:    logger,
		Progress: func(stage string, pct int) {
			fmt.Printf("[*] %3d%% %s\n", pct, stage)
		},
	}

	if cfg.APIKey == "" {
		fmt.Println("[!] GEMINI_API_KEY is not set, timings will be an even split")
	} else {
		client, err := gemini.New(ctx, cfg.APIKey, cfg.GeminiModel, logger)
		if err != nil {
			log.Fatalf("[-] Could not create Gemini client: %v", err)
		}
		defer client.Close()

		project.Timing = []pipeline.TimingSource{&pipeline.GeminiSource{
			Client:    client,
			AudioPath: audioPath,
			Script:    script,
			Timeout:   cfg.GeminiTimeout,
			Logger:    logger,
		}}
		if cfg.RemoveText {
			project.Filter = gemini.BubbleFilter(client)
		}
	}

	workDir, err := os.MkdirTemp("", "comic2premiere_")
	if err != nil {
		log.Fatalf("[-] Could not create working directory: %v", err)
	}
	defer os.RemoveAll(workDir)

	zipPath, err := project.Run(ctx, workDir)
	if err != nil {
		log.Fatalf("[-] Pipeline error: %v", err)
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(audioPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.zip", cleanName, timestamp))
	}
	os.MkdirAll(filepath.Dir(finalOutput), 0755)

	if err := os.Rename(zipPath, finalOutput); err != nil {
		// Rename fails across filesystems; fall back to a copy
		if err := copyFile(zipPath, finalOutput); err != nil {
			log.Fatalf("[-] Could not write result: %v", err)
		}
	}

	fmt.Printf("[+++] Done! Result: %s\n", finalOutput)
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("[-] Logger error: %v", err)
	}
	return logger
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
