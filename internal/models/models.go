// Package models provides domain models for the trading analytics engine.
package models

import "time"

// TradeSide represents the side of a trade.
type TradeSide string

const (
	SideBuy   TradeSide = "BUY"
	SideSell  TradeSide = "SELL"
	SideShort TradeSide = "SHORT"
	SideCover TradeSide = "COVER"
)

// IsEntry returns true if the side opens a position.
func (s TradeSide) IsEntry() bool {
	return s == SideBuy || s == SideShort
}

// IsExit returns true if the side closes a position.
func (s TradeSide) IsExit() bool {
	return s == SideSell || s == SideCover
}

// TradeStatus represents the lifecycle status of a trade.
type TradeStatus string

const (
	StatusPending   TradeStatus = "PENDING"
	StatusCompleted TradeStatus = "COMPLETED"
	StatusCancelled TradeStatus = "CANCELLED"
)

// PortfolioSource identifies how a phantom portfolio was created.
type PortfolioSource string

const (
	SourceCopy   PortfolioSource = "COPY"
	SourceManual PortfolioSource = "MANUAL"
)

// Instrument represents a tradeable instrument in the paper universe.
type Instrument struct {
	Symbol string
	Name   string
	Price  float64
}

// Quote represents a priced symbol at a point in time.
type Quote struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}
