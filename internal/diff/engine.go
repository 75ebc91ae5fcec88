package diff

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evalview/evalview/internal/golden"
	"github.com/evalview/evalview/internal/trace"
	"github.com/evalview/evalview/internal/util"
)

// ErrNoVariants is returned by CompareMultiReference when the caller passes
// an empty baseline list. An empty list is a contract violation, not a
// degraded comparison.
var ErrNoVariants = errors.New("no golden variants to compare against")

// Options mirror the diff section of the project config.
type Options struct {
	// ToolSimilarityThreshold is reserved for fuzzy tool-name matching; the
	// current alignment is exact.
	ToolSimilarityThreshold float64
	// OutputSimilarityThreshold is the cutoff below which a comparison with
	// an otherwise identical tool sequence classifies as OUTPUT_CHANGED.
	OutputSimilarityThreshold float64
	// ScoreRegressionThreshold is the score drop (in points) that escalates
	// a comparison to REGRESSION regardless of anything else.
	ScoreRegressionThreshold float64
	IgnoreWhitespace         bool
	IgnoreCaseInOutput       bool
}

func DefaultOptions() Options {
	return Options{
		ToolSimilarityThreshold:   0.8,
		OutputSimilarityThreshold: 0.95,
		ScoreRegressionThreshold:  5.0,
		IgnoreWhitespace:          true,
		IgnoreCaseInOutput:        false,
	}
}

// Engine performs golden-vs-actual comparisons. It holds only options and
// is safe for concurrent use.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Compare aligns the actual trace against one golden and classifies the
// divergence. The classification precedence is fixed: regression beats
// tool changes beats output changes.
func (e *Engine) Compare(g golden.GoldenTrace, actual *trace.ExecutionTrace, actualScore float64) TraceDiff {
	d := TraceDiff{
		TestName:    g.Metadata.TestName,
		ScoreDiff:   actualScore - g.Metadata.Score,
		LatencyDiff: actual.Metrics.TotalLatencyMS - g.Trace.Metrics.TotalLatencyMS,
	}

	d.ToolDiffs = e.compareToolSequences(g.Trace.Steps, actual.Steps, g.ToolSequence, actual.ToolSequence())

	// Cached hash short-circuits the similarity pass for identical outputs.
	if util.HashString(actual.FinalOutput) != g.OutputHash {
		d.Output = &OutputDiff{
			Similarity:   e.outputSimilarity(g.Trace.FinalOutput, actual.FinalOutput),
			GoldenOutput: g.Trace.FinalOutput,
			ActualOutput: actual.FinalOutput,
		}
	}

	d.HasDifferences = len(d.ToolDiffs) > 0 || d.Output != nil
	d.Status = e.classify(d)
	return d
}

// CompareMultiReference compares the actual trace against every golden
// variant and keeps the best outcome: lowest status rank, ties broken by
// the smaller absolute score delta. The winner is annotated with the
// variant that matched ("default" for the first, "variant_N" after).
func (e *Engine) CompareMultiReference(variants []golden.GoldenTrace, actual *trace.ExecutionTrace, actualScore float64) (TraceDiff, error) {
	if len(variants) == 0 {
		return TraceDiff{}, ErrNoVariants
	}

	var best TraceDiff
	for i, variant := range variants {
		d := e.Compare(variant, actual, actualScore)
		if i == 0 {
			d.MatchedVariant = "default"
		} else {
			d.MatchedVariant = fmt.Sprintf("variant_%d", i)
		}
		if i == 0 || better(d, best) {
			best = d
		}
	}
	return best, nil
}

func better(a, b TraceDiff) bool {
	if a.Status.Rank() != b.Status.Rank() {
		return a.Status.Rank() < b.Status.Rank()
	}
	return abs(a.ScoreDiff) < abs(b.ScoreDiff)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func (e *Engine) classify(d TraceDiff) Status {
	switch {
	case d.ScoreDiff < -e.opts.ScoreRegressionThreshold:
		return StatusRegression
	case len(d.ToolDiffs) > 0:
		return StatusToolsChanged
	case d.OutputSimilarity() < e.opts.OutputSimilarityThreshold:
		return StatusOutputChanged
	default:
		return StatusPassed
	}
}

func (e *Engine) compareToolSequences(goldenSteps, actualSteps []trace.StepTrace, goldenSeq, actualSeq []string) []ToolDiff {
	var diffs []ToolDiff
	for _, op := range AlignSequences(goldenSeq, actualSeq) {
		switch op.Tag {
		case OpEqual:
			for k := 0; k < op.I2-op.I1; k++ {
				gi, aj := op.I1+k, op.J1+k
				params := CompareParameters(goldenSteps[gi], actualSteps[aj])
				if len(params) > 0 {
					diffs = append(diffs, ToolDiff{
						Position:   aj,
						Change:     ToolParamsChanged,
						GoldenTool: goldenSeq[gi],
						ActualTool: actualSeq[aj],
						ParamDiffs: params,
					})
				}
			}
		case OpReplace:
			glen, alen := op.I2-op.I1, op.J2-op.J1
			for k := 0; k < glen || k < alen; k++ {
				gi, aj := op.I1+k, op.J1+k
				switch {
				case k < glen && k < alen:
					td := ToolDiff{
						Position:   aj,
						Change:     ToolChanged,
						GoldenTool: goldenSeq[gi],
						ActualTool: actualSeq[aj],
					}
					// Replace pairs can still carry the same name when the
					// surrounding context shifted; compare parameters then.
					if goldenSeq[gi] == actualSeq[aj] {
						td.ParamDiffs = CompareParameters(goldenSteps[gi], actualSteps[aj])
					}
					diffs = append(diffs, td)
				case k < glen:
					diffs = append(diffs, ToolDiff{
						Position:   gi,
						Change:     ToolRemoved,
						GoldenTool: goldenSeq[gi],
					})
				default:
					diffs = append(diffs, ToolDiff{
						Position:   aj,
						Change:     ToolAdded,
						ActualTool: actualSeq[aj],
					})
				}
			}
		case OpDelete:
			for gi := op.I1; gi < op.I2; gi++ {
				diffs = append(diffs, ToolDiff{
					Position:   gi,
					Change:     ToolRemoved,
					GoldenTool: goldenSeq[gi],
				})
			}
		case OpInsert:
			for aj := op.J1; aj < op.J2; aj++ {
				diffs = append(diffs, ToolDiff{
					Position:   aj,
					Change:     ToolAdded,
					ActualTool: actualSeq[aj],
				})
			}
		}
	}
	return diffs
}

// CompareParameters diffs the parameter maps of two aligned steps over the
// sorted union of their keys. Every key lands in exactly one bucket: equal
// (no entry), missing, added, type_changed, or value_changed.
func CompareParameters(goldenStep, actualStep trace.StepTrace) []ParameterDiff {
	keys := make(map[string]bool, len(goldenStep.Params)+len(actualStep.Params))
	for key := range goldenStep.Params {
		keys[key] = true
	}
	for key := range actualStep.Params {
		keys[key] = true
	}
	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	var diffs []ParameterDiff
	for _, key := range sorted {
		gv, inGolden := goldenStep.Params[key]
		av, inActual := actualStep.Params[key]

		switch {
		case inGolden && !inActual:
			diffs = append(diffs, ParameterDiff{
				Key:         key,
				Change:      ParamMissing,
				GoldenValue: gv,
				GoldenType:  gv.Kind().String(),
			})
		case !inGolden && inActual:
			diffs = append(diffs, ParameterDiff{
				Key:         key,
				Change:      ParamAdded,
				ActualValue: av,
				ActualType:  av.Kind().String(),
			})
		case gv.Kind() != av.Kind():
			diffs = append(diffs, ParameterDiff{
				Key:         key,
				Change:      ParamTypeChanged,
				GoldenValue: gv,
				ActualValue: av,
				GoldenType:  gv.Kind().String(),
				ActualType:  av.Kind().String(),
			})
		case !gv.Equal(av):
			pd := ParameterDiff{
				Key:         key,
				Change:      ParamValueChanged,
				GoldenValue: gv,
				ActualValue: av,
				GoldenType:  gv.Kind().String(),
				ActualType:  av.Kind().String(),
			}
			gs, gok := gv.Str()
			as, aok := av.Str()
			if gok && aok {
				sim := Similarity(gs, as)
				pd.Similarity = &sim
			}
			diffs = append(diffs, pd)
		}
	}
	return diffs
}

func (e *Engine) outputSimilarity(goldenOut, actualOut string) float64 {
	a, b := goldenOut, actualOut
	if e.opts.IgnoreWhitespace {
		a = strings.Join(strings.Fields(a), " ")
		b = strings.Join(strings.Fields(b), " ")
	}
	if e.opts.IgnoreCaseInOutput {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	return Similarity(a, b)
}
