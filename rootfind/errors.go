package rootfind

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the search was exhausted without an acceptable root.
	ErrNotFound = errors.New("rootfind: no root found")
	// ErrInvalidBound means the search interval or step is unusable.
	ErrInvalidBound = errors.New("rootfind: invalid bound")
	// ErrNotBracketed means f(a) and f(b) have the same sign.
	ErrNotBracketed = errors.New("rootfind: root not bracketed")
	// ErrMaxIter means Brent refinement did not converge.
	ErrMaxIter = errors.New("rootfind: maximum iterations exceeded")
)

// BoundError describes an invalid search request.
type BoundError struct {
	Low, High, Delta float64
	Reason           string
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("rootfind: invalid bound [%g, %g] delta %g: %s", e.Low, e.High, e.Delta, e.Reason)
}

func (e *BoundError) Unwrap() error { return ErrInvalidBound }
