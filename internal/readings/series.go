package readings

import (
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
)

// SeriesPoint is one chart-ready sample.
type SeriesPoint struct {
	T          time.Time `json:"t"`
	DepthCM    float64   `json:"depth_cm"`
	RainfallMM float64   `json:"rainfall_mm"`
	VelocityMS float64   `json:"velocity_ms"`
}

// Window returns the readings with from <= recorded_at < to, preserving order.
func Window(readings []models.Reading, from, to time.Time) []models.Reading {
	var out []models.Reading
	for _, r := range readings {
		if r.RecordedAt.Before(from) || !r.RecordedAt.Before(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Downsample reduces a time-ordered series to at most maxPoints samples by
// averaging equal-width time buckets. The first and last readings are always
// preserved exactly so the chart endpoints stay truthful; empty buckets are
// skipped rather than emitted as zeros.
func Downsample(readings []models.Reading, maxPoints int) []SeriesPoint {
	if len(readings) == 0 {
		return nil
	}
	if maxPoints < 2 {
		maxPoints = 2
	}
	if len(readings) <= maxPoints {
		out := make([]SeriesPoint, 0, len(readings))
		for _, r := range readings {
			out = append(out, toPoint(r))
		}
		return out
	}

	first := readings[0]
	last := readings[len(readings)-1]
	if maxPoints == 2 {
		// No room for interior buckets; the endpoints are the whole series.
		return []SeriesPoint{toPoint(first), toPoint(last)}
	}
	span := last.RecordedAt.Sub(first.RecordedAt)
	if span <= 0 {
		// Degenerate series: every reading shares one timestamp.
		return []SeriesPoint{toPoint(first), toPoint(last)}
	}

	type bucket struct {
		count       int
		timeSum     int64
		depthSum    float64
		rainSum     float64
		velocitySum float64
	}

	buckets := make([]bucket, maxPoints-2)
	for _, r := range readings[1 : len(readings)-1] {
		idx := int(int64(len(buckets)) * int64(r.RecordedAt.Sub(first.RecordedAt)) / int64(span))
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		b := &buckets[idx]
		b.count++
		b.timeSum += r.RecordedAt.UnixNano()
		b.depthSum += r.DepthCM
		b.rainSum += r.RainfallMM
		b.velocitySum += r.VelocityMS
	}

	out := make([]SeriesPoint, 0, maxPoints)
	out = append(out, toPoint(first))
	for _, b := range buckets {
		if b.count == 0 {
			continue
		}
		n := float64(b.count)
		out = append(out, SeriesPoint{
			T:          time.Unix(0, b.timeSum/int64(b.count)).UTC(),
			DepthCM:    b.depthSum / n,
			RainfallMM: b.rainSum / n,
			VelocityMS: b.velocitySum / n,
		})
	}
	out = append(out, toPoint(last))
	return out
}

func toPoint(r models.Reading) SeriesPoint {
	return SeriesPoint{
		T:          r.RecordedAt,
		DepthCM:    r.DepthCM,
		RainfallMM: r.RainfallMM,
		VelocityMS: r.VelocityMS,
	}
}
