package domain

import "errors"

// Sentinel errors surfaced by the engine. Callers discriminate with errors.Is;
// transport layers map them onto status codes. None of these are retried
// inside the engine.
var (
	// ErrNotFound - unknown forecast, user or symbol reference
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - malformed gesture, non-positive stake or realized price
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooEarly - early close requested before the minimum progress threshold
	ErrTooEarly = errors.New("too early to close")

	// ErrInsufficientFunds - stake exceeds the user's token balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPriceUnavailable - the price feed could not supply a current price
	ErrPriceUnavailable = errors.New("price unavailable")
)
