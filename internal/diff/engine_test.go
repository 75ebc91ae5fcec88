package diff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evalview/evalview/internal/golden"
	"github.com/evalview/evalview/internal/trace"
)

func makeTrace(output string, steps ...trace.StepTrace) *trace.ExecutionTrace {
	return &trace.ExecutionTrace{
		SessionID:   "session",
		StartedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Steps:       steps,
		FinalOutput: output,
	}
}

func makeGolden(t *testing.T, testName string, score float64, tr *trace.ExecutionTrace) golden.GoldenTrace {
	t.Helper()
	return golden.FromRun(trace.RunRecord{
		RunID:    "run-1",
		TestName: testName,
		Score:    score,
		Trace:    *tr,
	}, "tester", "")
}

func step(tool string, params map[string]trace.Value) trace.StepTrace {
	return trace.StepTrace{
		StepID:  "step-" + tool,
		Tool:    tool,
		Params:  params,
		Output:  trace.String("ok"),
		Success: true,
	}
}

func TestCompareIdenticalTraces(t *testing.T) {
	tr := makeTrace("The weather in Paris is 18°C and sunny",
		step("get_weather", map[string]trace.Value{"city": trace.String("Paris")}),
		step("format_response", nil),
	)
	g := makeGolden(t, "weather-lookup", 92.0, tr)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, tr, 92.0)

	require.Equal(t, StatusPassed, d.Status)
	require.False(t, d.HasDifferences)
	require.Empty(t, d.ToolDiffs)
	require.Nil(t, d.Output)
	require.Equal(t, 1.0, d.OutputSimilarity())
	require.Equal(t, 0.0, d.ScoreDiff)
}

func TestCompareRegressionBeatsToolChanges(t *testing.T) {
	g := makeGolden(t, "weather-lookup", 92.0, makeTrace("sunny",
		step("get_weather", nil),
		step("format_response", nil),
	))
	actual := makeTrace("sunny",
		step("get_weather", nil),
		step("guess_response", nil),
	)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, actual, 80.0)

	require.Equal(t, StatusRegression, d.Status)
	require.NotEmpty(t, d.ToolDiffs)
	require.Equal(t, -12.0, d.ScoreDiff)
}

func TestCompareScoreDropWithinThresholdIsNotRegression(t *testing.T) {
	tr := makeTrace("sunny", step("get_weather", nil))
	g := makeGolden(t, "weather-lookup", 92.0, tr)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, tr, 88.0)

	require.Equal(t, StatusPassed, d.Status)
	require.Equal(t, -4.0, d.ScoreDiff)
}

func TestCompareToolsChanged(t *testing.T) {
	g := makeGolden(t, "weather-lookup", 92.0, makeTrace("sunny",
		step("get_weather", nil),
		step("format_response", nil),
	))
	actual := makeTrace("sunny",
		step("get_weather", nil),
		step("get_forecast", nil),
		step("format_response", nil),
	)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, actual, 92.0)

	require.Equal(t, StatusToolsChanged, d.Status)
	require.Len(t, d.ToolDiffs, 1)
	require.Equal(t, ToolAdded, d.ToolDiffs[0].Change)
	require.Equal(t, "get_forecast", d.ToolDiffs[0].ActualTool)
	require.Equal(t, 1, d.ToolDiffs[0].Position)
}

func TestCompareOutputChanged(t *testing.T) {
	g := makeGolden(t, "weather-lookup", 92.0, makeTrace("The weather in Paris is sunny",
		step("get_weather", nil),
	))
	actual := makeTrace("Expect heavy thunderstorms across Normandy",
		step("get_weather", nil),
	)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, actual, 92.0)

	require.Equal(t, StatusOutputChanged, d.Status)
	require.Empty(t, d.ToolDiffs)
	require.NotNil(t, d.Output)
	require.Less(t, d.Output.Similarity, 0.95)
}

func TestCompareWhitespaceOnlyChangePasses(t *testing.T) {
	g := makeGolden(t, "weather-lookup", 92.0, makeTrace("sunny  and   warm",
		step("get_weather", nil),
	))
	actual := makeTrace("sunny and warm", step("get_weather", nil))

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, actual, 92.0)

	// The byte-level hash differs so an output diff is recorded, but the
	// normalized similarity is perfect and the check passes.
	require.Equal(t, StatusPassed, d.Status)
	require.True(t, d.HasDifferences)
	require.NotNil(t, d.Output)
	require.Equal(t, 1.0, d.Output.Similarity)
}

func TestCompareParametersCoversKeyUnion(t *testing.T) {
	goldenStep := step("get_weather", map[string]trace.Value{
		"city":    trace.String("Paris"),
		"units":   trace.String("metric"),
		"verbose": trace.Bool(true),
	})
	actualStep := step("get_weather", map[string]trace.Value{
		"city":  trace.String("Paris"),
		"units": trace.String("imperial"),
		"limit": trace.Number(5),
	})

	diffs := CompareParameters(goldenStep, actualStep)
	require.Len(t, diffs, 3)

	// Sorted key order: limit, units, verbose. The unchanged city key
	// produces no entry.
	require.Equal(t, "limit", diffs[0].Key)
	require.Equal(t, ParamAdded, diffs[0].Change)
	require.Equal(t, "number", diffs[0].ActualType)

	require.Equal(t, "units", diffs[1].Key)
	require.Equal(t, ParamValueChanged, diffs[1].Change)
	require.NotNil(t, diffs[1].Similarity)
	require.Greater(t, *diffs[1].Similarity, 0.0)

	require.Equal(t, "verbose", diffs[2].Key)
	require.Equal(t, ParamMissing, diffs[2].Change)
	require.Equal(t, "bool", diffs[2].GoldenType)
}

func TestCompareParametersTypeChanged(t *testing.T) {
	goldenStep := step("search", map[string]trace.Value{"limit": trace.Number(5)})
	actualStep := step("search", map[string]trace.Value{"limit": trace.String("5")})

	diffs := CompareParameters(goldenStep, actualStep)
	require.Len(t, diffs, 1)
	require.Equal(t, ParamTypeChanged, diffs[0].Change)
	require.Equal(t, "number", diffs[0].GoldenType)
	require.Equal(t, "string", diffs[0].ActualType)
	require.Nil(t, diffs[0].Similarity)
}

func TestCompareParamChangeOnMatchedToolClassifiesToolsChanged(t *testing.T) {
	g := makeGolden(t, "search-flow", 90.0, makeTrace("results",
		step("search", map[string]trace.Value{"query": trace.String("golang lcs")}),
	))
	actual := makeTrace("results",
		step("search", map[string]trace.Value{"query": trace.String("golang diff")}),
	)

	engine := NewEngine(DefaultOptions())
	d := engine.Compare(g, actual, 90.0)

	require.Equal(t, StatusToolsChanged, d.Status)
	require.Len(t, d.ToolDiffs, 1)
	require.Equal(t, ToolParamsChanged, d.ToolDiffs[0].Change)
	require.Len(t, d.ToolDiffs[0].ParamDiffs, 1)
	require.Equal(t, "query", d.ToolDiffs[0].ParamDiffs[0].Key)
}

func TestCompareMultiReferencePicksExactMatch(t *testing.T) {
	actual := makeTrace("rainy", step("get_weather", nil))

	variants := []golden.GoldenTrace{
		makeGolden(t, "weather-lookup", 92.0, makeTrace("sunny", step("get_weather", nil), step("retry", nil))),
		makeGolden(t, "weather-lookup", 92.0, makeTrace("cloudy", step("get_weather", nil))),
		makeGolden(t, "weather-lookup", 92.0, makeTrace("rainy", step("get_weather", nil))),
	}

	engine := NewEngine(DefaultOptions())
	d, err := engine.CompareMultiReference(variants, actual, 92.0)
	require.NoError(t, err)
	require.Equal(t, StatusPassed, d.Status)
	require.Equal(t, "variant_2", d.MatchedVariant)
	require.False(t, d.HasDifferences)
}

func TestCompareMultiReferenceDefaultVariantName(t *testing.T) {
	actual := makeTrace("sunny", step("get_weather", nil))

	variants := []golden.GoldenTrace{
		makeGolden(t, "weather-lookup", 92.0, makeTrace("sunny", step("get_weather", nil))),
		makeGolden(t, "weather-lookup", 92.0, makeTrace("cloudy", step("get_weather", nil))),
	}

	engine := NewEngine(DefaultOptions())
	d, err := engine.CompareMultiReference(variants, actual, 92.0)
	require.NoError(t, err)
	require.Equal(t, "default", d.MatchedVariant)
	require.Equal(t, StatusPassed, d.Status)
}

func TestCompareMultiReferenceEmptyVariants(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	_, err := engine.CompareMultiReference(nil, makeTrace("x"), 0)
	require.ErrorIs(t, err, ErrNoVariants)
}

func TestCompareMultiReferenceTieBreaksOnScoreDelta(t *testing.T) {
	actual := makeTrace("sunny", step("get_weather", nil))

	// Both variants pass; the second sits closer to the actual score.
	variants := []golden.GoldenTrace{
		makeGolden(t, "weather-lookup", 95.0, makeTrace("sunny", step("get_weather", nil))),
		makeGolden(t, "weather-lookup", 91.0, makeTrace("sunny", step("get_weather", nil))),
	}

	engine := NewEngine(DefaultOptions())
	d, err := engine.CompareMultiReference(variants, actual, 90.0)
	require.NoError(t, err)
	require.Equal(t, "variant_1", d.MatchedVariant)
}
