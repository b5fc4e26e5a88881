package readings

import (
	"testing"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
)

func makeReadings(start time.Time, step time.Duration, depths ...float64) []models.Reading {
	out := make([]models.Reading, 0, len(depths))
	for i, d := range depths {
		out = append(out, models.Reading{
			MachineCode: "RG-001",
			RecordedAt:  start.Add(time.Duration(i) * step),
			DepthCM:     d,
		})
	}
	return out
}

func TestWindowBoundaries(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	readings := makeReadings(base, time.Hour, 1, 2, 3, 4)

	got := Window(readings, base, base.Add(3*time.Hour))
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	// from is inclusive, to is exclusive.
	if got[0].DepthCM != 1 || got[2].DepthCM != 3 {
		t.Errorf("unexpected window contents: %v .. %v", got[0].DepthCM, got[2].DepthCM)
	}

	if got := Window(readings, base.Add(10*time.Hour), base.Add(20*time.Hour)); len(got) != 0 {
		t.Errorf("expected empty window, got %d readings", len(got))
	}
}

func TestDownsamplePassthrough(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	readings := makeReadings(base, time.Hour, 1, 2, 3)

	got := Downsample(readings, 10)
	if len(got) != 3 {
		t.Fatalf("expected passthrough of 3 points, got %d", len(got))
	}
	for i := range readings {
		if !got[i].T.Equal(readings[i].RecordedAt) || got[i].DepthCM != readings[i].DepthCM {
			t.Errorf("point %d altered: %+v", i, got[i])
		}
	}
}

func TestDownsampleEmpty(t *testing.T) {
	if got := Downsample(nil, 10); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestDownsampleReduces(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	depths := make([]float64, 100)
	for i := range depths {
		depths[i] = float64(i)
	}
	readings := makeReadings(base, time.Minute, depths...)

	got := Downsample(readings, 10)
	if len(got) > 10 {
		t.Fatalf("expected at most 10 points, got %d", len(got))
	}
	if len(got) < 3 {
		t.Fatalf("expected a reduced series, got %d points", len(got))
	}

	// Endpoints are exact.
	if !got[0].T.Equal(readings[0].RecordedAt) || got[0].DepthCM != 0 {
		t.Errorf("first point altered: %+v", got[0])
	}
	lastIn := readings[len(readings)-1]
	lastOut := got[len(got)-1]
	if !lastOut.T.Equal(lastIn.RecordedAt) || lastOut.DepthCM != 99 {
		t.Errorf("last point altered: %+v", lastOut)
	}

	// Time stays monotonic through the averaged interior.
	for i := 1; i < len(got); i++ {
		if !got[i-1].T.Before(got[i].T) {
			t.Errorf("points out of order at %d: %v then %v", i, got[i-1].T, got[i].T)
		}
	}
}

func TestDownsampleAveragesBuckets(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// 4 readings into 3 points: the two interior readings share one bucket.
	readings := makeReadings(base, time.Hour, 0, 10, 20, 30)

	got := Downsample(readings, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].DepthCM != 0 || got[2].DepthCM != 30 {
		t.Errorf("endpoints altered: %v, %v", got[0].DepthCM, got[2].DepthCM)
	}
	if got[1].DepthCM != 15 {
		t.Errorf("expected interior average 15, got %v", got[1].DepthCM)
	}
	wantT := base.Add(90 * time.Minute)
	if !got[1].T.Equal(wantT) {
		t.Errorf("expected interior timestamp %v, got %v", wantT, got[1].T)
	}
}

func TestDownsampleTwoPointFloor(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	readings := makeReadings(base, time.Hour, 1, 2, 3, 4, 5)

	// maxPoints 2 leaves no interior buckets; only the endpoints survive.
	got := Downsample(readings, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].DepthCM != 1 || got[1].DepthCM != 5 {
		t.Errorf("unexpected endpoints: %v, %v", got[0].DepthCM, got[1].DepthCM)
	}

	// Values below the floor are clamped to it, not rejected.
	got = Downsample(readings, 0)
	if len(got) != 2 {
		t.Fatalf("expected clamp to 2 points, got %d", len(got))
	}
}

func TestDownsampleDegenerateTimestamps(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	readings := makeReadings(base, 0, 1, 2, 3, 4, 5)

	got := Downsample(readings, 3)
	if len(got) != 2 {
		t.Fatalf("expected first and last only, got %d points", len(got))
	}
	if got[0].DepthCM != 1 || got[1].DepthCM != 5 {
		t.Errorf("unexpected endpoints: %v, %v", got[0].DepthCM, got[1].DepthCM)
	}
}
