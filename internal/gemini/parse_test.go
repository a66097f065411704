package gemini

import (
	"testing"
)

func TestParseTimingResponsePlainArray(t *testing.T) {
	text := `[{"panel": 1, "start_time": 0.0, "duration": 2.5}, {"panel": 2, "start_time": 2.5, "duration": 3.0}]`

	entries, err := parseTimingResponse(text)
	if err != nil {
		t.Fatalf("parseTimingResponse failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].StartTime != 0.0 || entries[1].Duration != 3.0 {
		t.Errorf("Fields not decoded: %+v", entries)
	}
}

func TestParseTimingResponseMarkdownFence(t *testing.T) {
	text := "Here are the timings you asked for:\n```json\n[\n  {\"panel\": 1, \"start\": 0, \"duration\": 4}\n]\n```\nLet me know if you need anything else."

	entries, err := parseTimingResponse(text)
	if err != nil {
		t.Fatalf("parseTimingResponse failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Start == nil || entries[0].Duration == nil {
		t.Errorf("Fields missing after fenced decode: %+v", entries[0])
	}
}

func TestParseTimingResponseNoArray(t *testing.T) {
	if _, err := parseTimingResponse("I could not determine the timing, sorry."); err == nil {
		t.Error("Expected error for prose-only response")
	}
}

func TestParseTimingResponseMalformedJSON(t *testing.T) {
	if _, err := parseTimingResponse(`[{"panel": 1, "start":]`); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestParseBubbleResponse(t *testing.T) {
	text := "```json\n[{\"x\": 10, \"y\": 20, \"width\": 100, \"height\": 50}, {\"x\": 5, \"y\": 5, \"width\": 0, \"height\": 10}]\n```"

	rects, err := parseBubbleResponse(text)
	if err != nil {
		t.Fatalf("parseBubbleResponse failed: %v", err)
	}

	// Degenerate boxes are filtered out
	if len(rects) != 1 {
		t.Fatalf("Expected 1 rect, got %d", len(rects))
	}
	r := rects[0]
	if r.Min.X != 10 || r.Min.Y != 20 || r.Dx() != 100 || r.Dy() != 50 {
		t.Errorf("Unexpected rect %v", r)
	}
}

func TestParseBubbleResponseEmpty(t *testing.T) {
	rects, err := parseBubbleResponse("[]")
	if err != nil {
		t.Fatalf("parseBubbleResponse failed: %v", err)
	}
	if len(rects) != 0 {
		t.Errorf("Expected no rects, got %d", len(rects))
	}
}
