package mockserver

import "github.com/shopspring/decimal"

// Config tunes the mock game service.
type Config struct {
	StockID    string
	StartPrice decimal.Decimal
	StartCash  decimal.Decimal

	// Daily rates applied to the player's cash at the end of each day.
	InterestRate decimal.Decimal
	BorrowRate   decimal.Decimal

	// FulfillOnNextTick leaves orders pending until the next price is generated.
	FulfillOnNextTick bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		StockID:      "SOLO",
		StartPrice:   decimal.NewFromInt(100),
		StartCash:    decimal.NewFromInt(10000),
		InterestRate: decimal.RequireFromString("0.0005"),
		BorrowRate:   decimal.RequireFromString("0.001"),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StockID == "" {
		c.StockID = d.StockID
	}
	if !c.StartPrice.IsPositive() {
		c.StartPrice = d.StartPrice
	}
	if c.StartCash.IsZero() {
		c.StartCash = d.StartCash
	}
	if c.InterestRate.IsZero() {
		c.InterestRate = d.InterestRate
	}
	if c.BorrowRate.IsZero() {
		c.BorrowRate = d.BorrowRate
	}
	return c
}
