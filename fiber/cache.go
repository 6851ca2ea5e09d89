package fiber

import (
	"errors"
	"math"

	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/wavelength"
)

type neffKey struct {
	wl    wavelength.Wavelength
	mode  mode.Mode
	delta float64
}

// entry is a cached result. An entry that is not done marks a solve in
// progress.
type entry struct {
	value float64
	err   error
	done  bool
}

func (e *entry) result() (float64, error) {
	if e.err != nil {
		return math.NaN(), e.err
	}
	return e.value, nil
}

// memo returns the cached result for key or computes it with solve. A key
// met again while its own solve is running fails with ErrCycle.
func memo[K comparable](f *Fiber, cache map[K]*entry, kind string, key K, solve func() (float64, error)) (float64, error) {
	if e, ok := cache[key]; ok {
		if !e.done {
			return math.NaN(), ErrCycle
		}
		f.rec.CacheHit(kind)
		return e.result()
	}

	e := &entry{}
	cache[key] = e
	v, err := solve()
	if errors.Is(err, ErrCycle) {
		delete(cache, key)
		return math.NaN(), err
	}
	if err != nil {
		v = math.NaN()
	}
	e.value, e.err, e.done = v, err, true
	return e.result()
}

// Reset drops every cached solve.
func (f *Fiber) Reset() {
	f.neffs = map[neffKey]*entry{}
	f.cutoffs = map[mode.Mode]*entry{}
	f.seedCutoffs()
}

// seedCutoffs stores the cutoff of the fundamental mode, 0 by definition.
func (f *Fiber) seedCutoffs() {
	f.cutoffs[mode.Fundamental] = &entry{done: true}
	f.cutoffs[mode.Mode{Family: mode.LP, Nu: 0, M: 1}] = &entry{done: true}
}
