package trunk

import (
	"errors"
	"fmt"
)

// Contract-violation errors surfaced by the engine before any state changes.
var (
	// ErrOddStateVector indicates a state vector that cannot be split into
	// equal position and velocity halves.
	ErrOddStateVector = errors.New("trunk: state vector must have even length")

	// ErrDimensionMismatch indicates a layer whose output length disagrees
	// with the state dimension.
	ErrDimensionMismatch = errors.New("trunk: layer output dimension mismatch")
)

func oddLengthError(n int) error {
	return fmt.Errorf("%w: got length %d, expected [x1..xN, v1..vN]", ErrOddStateVector, n)
}
