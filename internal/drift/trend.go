package drift

import (
	"context"
	"fmt"
)

const (
	// DefaultWindow is how many recent checks the trend fit considers.
	DefaultWindow = 10
	// DefaultSlopeThreshold flags similarity declining faster than two
	// percentage points per check.
	DefaultSlopeThreshold = -0.02
	// minTrendPoints: below three points a slope is indistinguishable
	// from noise.
	minTrendPoints = 3
)

// DetectGradualDrift fits an ordinary-least-squares line through the
// output-similarity values of the most recent checks for a test and
// reports a human-readable warning when the slope falls below the
// threshold. Returns ok=false when there is no warning, including when
// fewer than three checks exist.
//
// A first-vs-last comparison would be hostage to a single outlier at
// either end of the window; the regression slope uses every point.
func (t *Tracker) DetectGradualDrift(ctx context.Context, testName string, window int, slopeThreshold float64) (string, bool) {
	if window <= 0 {
		window = DefaultWindow
	}

	recent := t.TestHistory(ctx, testName, window)
	if len(recent) < minTrendPoints {
		return "", false
	}

	// TestHistory is newest first; the fit wants chronological order.
	values := make([]float64, len(recent))
	for i, entry := range recent {
		values[len(recent)-1-i] = entry.OutputSimilarity
	}

	slope := computeSlope(values)
	if slope >= slopeThreshold {
		return "", false
	}

	warning := fmt.Sprintf(
		"gradual drift in %q: output similarity slid from %.2f to %.2f across the last %d checks (%.1f%% per check)",
		testName, values[0], values[len(values)-1], len(values), slope*100)
	return warning, true
}

// computeSlope returns the OLS regression slope of values against their
// index 0..n-1: sum((x-x̄)(y-ȳ)) / sum((x-x̄)²). Degenerate inputs (fewer
// than two points, zero denominator) yield 0.
func computeSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0.0
	}

	xMean := float64(n-1) / 2.0
	yMean := 0.0
	for _, y := range values {
		yMean += y
	}
	yMean /= float64(n)

	num, den := 0.0, 0.0
	for i, y := range values {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0.0
	}
	return num / den
}
