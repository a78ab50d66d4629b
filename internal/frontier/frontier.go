package frontier

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Jingtingtina/pragact-router/internal/gate"
)

// #region reporter
// Reporter sweeps gating policies over a fixed item set.
type Reporter struct {
	model  gate.GainModel
	config Config
}

// NewReporter creates a reporter. model may be nil when only margin sweeps run.
func NewReporter(model gate.GainModel, config Config) *Reporter {
	return &Reporter{model: model, config: config}
}

// SweepLearned evaluates the value-of-compute gate at each parameter setting.
// Points are returned in the order of params.
func (r *Reporter) SweepLearned(ctx context.Context, items []Item, params []gate.Params) ([]Point, error) {
	if r.model == nil {
		return nil, gate.ErrNoModel
	}
	probs := make([]float64, len(items))
	for i, it := range items {
		probs[i] = r.model.PredictProba(it.Features)
	}
	points, err := r.sweep(ctx, len(params), func(k int) Point {
		pt := summarize(items, func(i int) bool {
			return !items[i].Failed && gate.Escalate(probs[i], items[i].Cost, params[k])
		})
		pt.Kind = KindLearned
		pt.Params = params[k]
		return pt
	})
	if err != nil {
		return nil, fmt.Errorf("sweep learned: %w", err)
	}
	return points, nil
}

// SweepMargin evaluates the margin gate at each tau.
func (r *Reporter) SweepMargin(ctx context.Context, items []Item, taus []float64) ([]Point, error) {
	points, err := r.sweep(ctx, len(taus), func(k int) Point {
		pt := summarize(items, func(i int) bool {
			return !items[i].Failed && items[i].Margin < taus[k]
		})
		pt.Kind = KindMargin
		pt.Tau = taus[k]
		return pt
	})
	if err != nil {
		return nil, fmt.Errorf("sweep margin: %w", err)
	}
	return points, nil
}

func (r *Reporter) sweep(ctx context.Context, n int, eval func(k int) Point) ([]Point, error) {
	points := make([]Point, n)
	g, gCtx := errgroup.WithContext(ctx)
	if r.config.Concurrency > 0 {
		g.SetLimit(r.config.Concurrency)
	}
	for k := 0; k < n; k++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			points[k] = eval(k)
			log.Printf("[SWEEP] %s", points[k])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// #endregion reporter

// #region summarize
// summarize aggregates quality and tokens: an escalated item contributes its
// heavy quality and heavy cost, any other item its base quality and no cost.
func summarize(items []Item, escalate func(i int) bool) Point {
	pt := Point{N: len(items)}
	var quality float64
	for i, it := range items {
		if escalate(i) {
			quality += it.HeavyQuality
			pt.TotalTokens += it.Cost
			pt.Escalated++
		} else {
			quality += it.BaseQuality
		}
	}
	pt.AvgQuality = quality / float64(max(len(items), 1))
	return pt
}

// Baselines returns the all-base and all-heavy reference points. Failed
// items stay on base in the heavy row too, as they do under every policy.
func Baselines(items []Item) (base, heavy Point) {
	base = summarize(items, func(int) bool { return false })
	base.Kind = KindBase
	heavy = summarize(items, func(i int) bool { return !items[i].Failed })
	heavy.Kind = KindHeavy
	return base, heavy
}

// #endregion summarize

// #region frontier
// Best returns the point with the highest quality, preferring fewer tokens
// on ties. ok is false for an empty slice.
func Best(points []Point) (best Point, ok bool) {
	for _, p := range points {
		if !ok || p.AvgQuality > best.AvgQuality ||
			(p.AvgQuality == best.AvgQuality && p.TotalTokens < best.TotalTokens) {
			best, ok = p, true
		}
	}
	return best, ok
}

// Frontier returns the Pareto-optimal points sorted by ascending tokens. A
// point survives if no other point has at most its tokens and higher quality.
func Frontier(points []Point) []Point {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalTokens != sorted[j].TotalTokens {
			return sorted[i].TotalTokens < sorted[j].TotalTokens
		}
		return sorted[i].AvgQuality > sorted[j].AvgQuality
	})
	var out []Point
	bestQ := math.Inf(-1)
	for _, p := range sorted {
		if p.AvgQuality > bestQ {
			out = append(out, p)
			bestQ = p.AvgQuality
		}
	}
	return out
}

// LambdaGrid returns n log-spaced values from lo to hi inclusive.
func LambdaGrid(lo, hi float64, n int) []float64 {
	if n <= 0 || lo <= 0 || hi <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (math.Log(hi) - math.Log(lo)) / float64(n-1)
	for i := range out {
		out[i] = math.Exp(math.Log(lo) + step*float64(i))
	}
	out[n-1] = hi
	return out
}

// ParamGrid returns every (lambda, gain_scale) pair, lambda-major.
func ParamGrid(lambdas, gainScales []float64) []gate.Params {
	out := make([]gate.Params, 0, len(lambdas)*len(gainScales))
	for _, l := range lambdas {
		for _, g := range gainScales {
			out = append(out, gate.Params{Lambda: l, GainScale: g})
		}
	}
	return out
}

// LinearGrid returns n evenly spaced values from lo to hi inclusive.
func LinearGrid(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// #endregion frontier

// #region table
// Table renders a summary with base and heavy reference rows followed by the
// best learned and best margin points, when present.
func Table(title string, base, heavy Point, learned, margin []Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s summary\n", title)
	b.WriteString("| Method | Quality | Tokens | Note |\n")
	b.WriteString("|---|---:|---:|---|\n")
	fmt.Fprintf(&b, "| Base | %.3f | %.0f | - |\n", base.AvgQuality, base.TotalTokens)
	fmt.Fprintf(&b, "| Heavy | %.3f | %.0f | all heavy |\n", heavy.AvgQuality, heavy.TotalTokens)
	if p, ok := Best(learned); ok {
		fmt.Fprintf(&b, "| VoC (best lambda=%g gain_scale=%g) | %.3f | %.0f | learned gate |\n",
			p.Params.Lambda, p.Params.GainScale, p.AvgQuality, p.TotalTokens)
	}
	if p, ok := Best(margin); ok {
		fmt.Fprintf(&b, "| Margin (best tau=%g) | %.3f | %.0f | uncertainty baseline |\n", p.Tau, p.AvgQuality, p.TotalTokens)
	}
	return b.String()
}

// #endregion table
