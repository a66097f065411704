// Package system wraps host-level concerns: sizing the compositing pool,
// measuring audio, and locating the newest input files for CLI runs.
package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// perWorkerBytes is a rough ceiling for one in-flight composite: source
// decode plus two full 1920x1080 RGBA canvases plus JPEG encode buffers.
const perWorkerBytes = 256 << 20

// Workers picks a compositing pool size from the host: one worker per
// logical CPU, capped so the pool cannot plausibly exhaust available
// memory on small machines.
func Workers() int {
	n := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		n = counts
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		byMem := int(vm.Available / perWorkerBytes)
		if byMem < 1 {
			byMem = 1
		}
		if byMem < n {
			n = byMem
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}

// AudioDuration measures an audio file in seconds via ffprobe. When
// ffprobe is missing or fails the caller falls back to other estimates, so
// the error is informational.
func AudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parsing ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

// FindLatestAudio returns the most recently modified audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, audioExtensions)
}

// FindLatestComic returns the most recently modified comic input in dir,
// either a PDF or a standalone panel image.
func FindLatestComic(dir string) (string, error) {
	return findLatest(dir, []string{".pdf", ".jpg", ".jpeg", ".png", ".webp"})
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no matching files in %s", dir)
	}
	return latestFile, nil
}
