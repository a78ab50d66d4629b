package scorer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Jingtingtina/pragact-router/internal/llm"
)

// #region prior-store
// PriorStore persists prior vectors across processes. Optional.
type PriorStore interface {
	LoadPrior(key string) ([]float64, bool, error)
	SavePrior(key string, prior []float64) error
}

// #endregion prior-store

// #region cache
// priorCache holds one prior per template hash for the life of the process.
// Entries are written once; a later write for the same key is ignored.
var priorCache = struct {
	sync.RWMutex
	m map[string][]float64
}{m: make(map[string][]float64)}

func cachedPrior(key string) ([]float64, bool) {
	priorCache.RLock()
	defer priorCache.RUnlock()
	p, ok := priorCache.m[key]
	return p, ok
}

func storePrior(key string, prior []float64) []float64 {
	priorCache.Lock()
	defer priorCache.Unlock()
	if existing, ok := priorCache.m[key]; ok {
		return existing
	}
	priorCache.m[key] = prior
	return prior
}

// calibrations collapses concurrent on-demand calibrations of one key.
var calibrations singleflight.Group

// ResetPriorCache drops every cached prior.
func ResetPriorCache() {
	priorCache.Lock()
	defer priorCache.Unlock()
	priorCache.m = make(map[string][]float64)
}

// #endregion cache

// #region calibrate
// Calibrate scores the neutral filler under every MCQ template and caches the
// elementwise mean as the prior for this template set.
func (s *Scorer) Calibrate(ctx context.Context, client llm.Client) ([]float64, error) {
	if len(s.templates.MCQ) == 0 {
		return nil, ErrNoTemplates
	}
	sum := make([]float64, len(s.templates.Options))
	for i, tpl := range s.templates.MCQ {
		z, err := client.ScoreOptions(ctx, Render(tpl, s.templates.Filler), s.templates.Options)
		if err != nil {
			return nil, fmt.Errorf("calibrate template %d: %w", i, err)
		}
		if len(z) != len(sum) {
			return nil, fmt.Errorf("calibrate template %d: got %d scores for %d options", i, len(z), len(sum))
		}
		for j := range sum {
			sum[j] += z[j]
		}
	}
	for j := range sum {
		sum[j] /= float64(len(s.templates.MCQ))
	}

	prior := storePrior(s.key, sum)
	if s.store != nil {
		if err := s.store.SavePrior(s.key, prior); err != nil {
			return prior, fmt.Errorf("persist prior: %w", err)
		}
	}
	return prior, nil
}

// calibrateOnce runs Calibrate for this key unless another caller is already
// doing so, in which case it waits for and shares that result.
func (s *Scorer) calibrateOnce(ctx context.Context, client llm.Client) ([]float64, error) {
	v, err, _ := calibrations.Do(s.key, func() (any, error) {
		if p, ok := s.Prior(); ok {
			return p, nil
		}
		return s.Calibrate(ctx, client)
	})
	p, _ := v.([]float64)
	return p, err
}

// Prior returns the cached prior for this template set, loading it from the
// store when the process cache is empty.
func (s *Scorer) Prior() ([]float64, bool) {
	if p, ok := cachedPrior(s.key); ok {
		return p, true
	}
	if s.store == nil {
		return nil, false
	}
	p, ok, err := s.store.LoadPrior(s.key)
	if err != nil || !ok || len(p) != len(s.templates.Options) {
		return nil, false
	}
	return storePrior(s.key, p), true
}

// #endregion calibrate
