package drift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evalview/evalview/internal/diff"
)

func recordSimilarities(t *testing.T, tracker *Tracker, testName string, similarities ...float64) {
	t.Helper()
	ctx := context.Background()
	for _, sim := range similarities {
		d := diff.TraceDiff{
			TestName: testName,
			Status:   diff.StatusPassed,
			Output:   &diff.OutputDiff{Similarity: sim},
		}
		tracker.RecordCheck(ctx, d, false)
	}
}

func TestComputeSlopeConstantSeries(t *testing.T) {
	// A flat series must yield exactly zero, not a float approximation.
	slope := computeSlope([]float64{0.9, 0.9, 0.9, 0.9, 0.9})
	require.Equal(t, 0.0, slope)
}

func TestComputeSlopeDegenerateInputs(t *testing.T) {
	require.Equal(t, 0.0, computeSlope(nil))
	require.Equal(t, 0.0, computeSlope([]float64{0.5}))
}

func TestComputeSlopeSteadyDecline(t *testing.T) {
	slope := computeSlope([]float64{1.0, 0.96, 0.92, 0.88, 0.84})
	require.InDelta(t, -0.04, slope, 1e-9)
}

func TestComputeSlopeResistsSingleOutlier(t *testing.T) {
	// First and last points are equal, so an endpoint comparison would call
	// this flat. The regression fit sees the dip recover and reports a
	// slightly positive slope instead.
	values := []float64{0.9, 0.5, 0.9, 0.9, 0.9}
	slope := computeSlope(values)
	require.InDelta(t, 0.04, slope, 1e-9)
	require.NotEqual(t, values[len(values)-1]-values[0], slope)
}

func TestDetectGradualDriftTooFewChecks(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	recordSimilarities(t, tracker, "summarize", 1.0, 0.5)

	_, ok := tracker.DetectGradualDrift(context.Background(), "summarize", DefaultWindow, DefaultSlopeThreshold)
	require.False(t, ok)
}

func TestDetectGradualDriftDecliningSeries(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	recordSimilarities(t, tracker, "summarize", 1.0, 0.96, 0.92, 0.88, 0.84)

	warning, ok := tracker.DetectGradualDrift(context.Background(), "summarize", DefaultWindow, DefaultSlopeThreshold)
	require.True(t, ok)
	require.Contains(t, warning, `"summarize"`)
	require.Contains(t, warning, "1.00 to 0.84")
	require.Contains(t, warning, "5 checks")
}

func TestDetectGradualDriftFlatSeries(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	recordSimilarities(t, tracker, "summarize", 0.9, 0.9, 0.9, 0.9, 0.9)

	_, ok := tracker.DetectGradualDrift(context.Background(), "summarize", DefaultWindow, DefaultSlopeThreshold)
	require.False(t, ok)
}

func TestDetectGradualDriftImprovingSeries(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	recordSimilarities(t, tracker, "summarize", 0.8, 0.85, 0.9, 0.95, 1.0)

	_, ok := tracker.DetectGradualDrift(context.Background(), "summarize", DefaultWindow, DefaultSlopeThreshold)
	require.False(t, ok)
}

func TestDetectGradualDriftWindowLimitsFit(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	// Long stable history followed by a sharp recent decline. The full
	// series looks almost flat; a small window isolates the decline.
	recordSimilarities(t, tracker, "summarize",
		1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0,
		0.9, 0.8, 0.7)

	_, ok := tracker.DetectGradualDrift(context.Background(), "summarize", 3, DefaultSlopeThreshold)
	require.True(t, ok)
}

func TestDetectGradualDriftIgnoresOtherTests(t *testing.T) {
	tracker := NewTracker(t.TempDir(), 0)
	recordSimilarities(t, tracker, "other", 1.0, 0.9, 0.8, 0.7, 0.6)
	recordSimilarities(t, tracker, "summarize", 0.9, 0.9, 0.9)

	_, ok := tracker.DetectGradualDrift(context.Background(), "summarize", DefaultWindow, DefaultSlopeThreshold)
	require.False(t, ok)
}
