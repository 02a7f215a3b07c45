// Package recorder keeps a local log of the user's executed trades. The
// backend owns the authoritative trade history; this is the client's own copy
// for the trade panel's recent-orders view.
package recorder

import "time"

// TradeRecord is one executed trade as confirmed by the trading API.
type TradeRecord struct {
	ID         string
	Symbol     string
	Action     string
	Quantity   int
	Price      float64
	TotalValue float64
	ExecutedAt time.Time
}

// Recorder persists executed trades.
type Recorder interface {
	Record(rec *TradeRecord) error
	Recent(n int) ([]TradeRecord, error)
	Close() error
}
