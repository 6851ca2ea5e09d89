package fiber

import (
	"errors"
	"fmt"

	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
	"github.com/meenmo/fibermodes/wavelength"
)

var (
	// ErrNotFound means no acceptable root was found in the search range.
	ErrNotFound = rootfind.ErrNotFound
	// ErrNotGuided means the fiber V0 is below the mode cutoff.
	ErrNotGuided = errors.New("fiber: mode not guided")
	// ErrCycle means a solve re-entered itself through neighbor modes.
	ErrCycle = errors.New("fiber: recursive solve cycle")
	// ErrInvalidLayers is returned by New for unusable layer stacks.
	ErrInvalidLayers = errors.New("fiber: invalid layers")
)

// SolveError records which solve failed.
type SolveError struct {
	Op         string // "neff" or "cutoff"
	Mode       mode.Mode
	Wavelength wavelength.Wavelength // zero for cutoffs
	Err        error
}

func (e *SolveError) Error() string {
	if e.Wavelength != 0 {
		return fmt.Sprintf("fiber: %s %v at %v: %v", e.Op, e.Mode, e.Wavelength, e.Err)
	}
	return fmt.Sprintf("fiber: %s %v: %v", e.Op, e.Mode, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// IsUnsupported reports whether err only says that the mode has no
// solution here (not found or not guided), as opposed to a fault.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotGuided)
}
