package domain

import (
	"context"
	"time"
)

// Clock abstracts time.Now so settlement progress is deterministic in tests
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// PriceFeed supplies the realized price used at settlement.
// Implementations must return ErrPriceUnavailable (possibly wrapped) when no
// price can be obtained; the engine surfaces that to the caller without retry.
type PriceFeed interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// UserLedger mutates user token balances.
// Debit returns ErrInsufficientFunds when the balance cannot cover the amount.
type UserLedger interface {
	Debit(userID string, amount int) error
	Credit(userID string, amount int) error
}

// ForecastStore persists forecasts. CompareAndTransition is the single
// mutation path into a terminal status: inside one transaction it re-reads the
// forecast, and only if the status still equals expected does it run mutate
// and persist the result, crediting any rewards the mutator recorded to the
// owning user in that same transaction. The transitioned flag tells the
// caller whether the edge fired or the forecast was already past it.
type ForecastStore interface {
	Save(f *Forecast) error
	GetByID(id string) (*Forecast, error)
	ByUser(userID string) ([]Forecast, error)
	Active() ([]Forecast, error)
	RecentBySymbol(symbol, timeframe string, limit int) ([]Forecast, error)
	UpdateAccuracy(id string, mspe float64) error
	CompareAndTransition(id string, expected, next ForecastStatus, mutate func(*Forecast) error) (f *Forecast, transitioned bool, err error)
}
