package timing

import (
	"errors"
	"math"
	"testing"
)

func TestEvenSplitThreePanels(t *testing.T) {
	seq, err := EvenSplit(3, 9.0)
	if err != nil {
		t.Fatalf("EvenSplit failed: %v", err)
	}

	expected := Sequence{
		{Panel: 1, Start: 0, Duration: 3},
		{Panel: 2, Start: 3, Duration: 3},
		{Panel: 3, Start: 6, Duration: 3},
	}

	for i, want := range expected {
		got := seq[i]
		if got.Panel != want.Panel || math.Abs(got.Start-want.Start) > 1e-9 || math.Abs(got.Duration-want.Duration) > 1e-9 {
			t.Errorf("Entry %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestEvenSplitProperties(t *testing.T) {
	cases := []struct {
		n int
		d float64
	}{
		{1, 0.5},
		{7, 31.4},
		{60, 181.0},
	}

	for _, tc := range cases {
		seq, err := EvenSplit(tc.n, tc.d)
		if err != nil {
			t.Fatalf("EvenSplit(%d, %f) failed: %v", tc.n, tc.d, err)
		}
		if len(seq) != tc.n {
			t.Fatalf("EvenSplit(%d, %f): got %d entries", tc.n, tc.d, len(seq))
		}

		if seq[0].Start != 0 {
			t.Errorf("EvenSplit(%d, %f): first start is %f", tc.n, tc.d, seq[0].Start)
		}

		per := tc.d / float64(tc.n)
		for i, pt := range seq {
			if math.Abs(pt.Duration-per) > 1e-9 {
				t.Errorf("Entry %d: expected duration %f, got %f", i, per, pt.Duration)
			}
			if i > 0 && math.Abs(pt.Start-seq[i-1].End()) > 1e-9 {
				t.Errorf("Entry %d: gap between %f and %f", i, seq[i-1].End(), pt.Start)
			}
		}

		if math.Abs(seq.TotalSpan()-tc.d) > 1e-9 {
			t.Errorf("EvenSplit(%d, %f): total span %f", tc.n, tc.d, seq.TotalSpan())
		}
	}
}

func TestEvenSplitRejectsBadArguments(t *testing.T) {
	if _, err := EvenSplit(0, 10); !errors.Is(err, ErrPanelCount) {
		t.Errorf("Expected ErrPanelCount, got %v", err)
	}
	if _, err := EvenSplit(3, 0); !errors.Is(err, ErrDuration) {
		t.Errorf("Expected ErrDuration for zero duration, got %v", err)
	}
	if _, err := EvenSplit(3, -1); !errors.Is(err, ErrDuration) {
		t.Errorf("Expected ErrDuration for negative duration, got %v", err)
	}
}

func TestDefaultDuration(t *testing.T) {
	if d := DefaultDuration(4, 3.0); d != 12.0 {
		t.Errorf("Expected 12.0, got %f", d)
	}
}

func TestTotalSpanEmpty(t *testing.T) {
	if span := (Sequence{}).TotalSpan(); span != 0 {
		t.Errorf("Expected 0 span for empty sequence, got %f", span)
	}
}
