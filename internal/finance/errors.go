package finance

import "errors"

var (
	// ErrInvalidInput marks malformed caller data, e.g. an empty product
	// list ahead of a break-even division.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArithmeticUndefined marks a computation whose denominator is zero,
	// e.g. unit price equal to unit variable cost. It is returned instead of
	// propagating Inf/NaN into reported results.
	ErrArithmeticUndefined = errors.New("arithmetic undefined")
)
