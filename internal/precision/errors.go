package precision

import "errors"

var (
	// ErrInvalidDigits indicates a high precision backend requested with a
	// non-positive digit count.
	ErrInvalidDigits = errors.New("precision: digits must be positive")

	// ErrNegativeRadicand indicates a square root of a negative number.
	ErrNegativeRadicand = errors.New("precision: square root of negative number")

	// ErrDomain indicates an argument outside the domain of asin.
	ErrDomain = errors.New("precision: argument outside [-1, 1]")

	// ErrUnknownKind indicates an unrecognised precision name.
	ErrUnknownKind = errors.New("precision: unknown precision kind")
)
