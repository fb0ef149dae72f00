package models

import "time"

// Trade represents a single order fill recorded in the trade ledger.
// Trades are immutable once completed.
type Trade struct {
	ID            string
	UserID        string
	Symbol        string
	Side          TradeSide
	Shares        float64
	ExecutedPrice float64
	// EntryPrice carries the opening fill price on exit trades when the
	// ledger recorded it. Zero means unknown; the scorer falls back to
	// the most recent entry for the same symbol.
	EntryPrice  float64
	TotalAmount float64
	Timestamp   time.Time
	Status      TradeStatus
}

// Valid reports whether the trade record carries enough data to be scored.
func (t Trade) Valid() bool {
	return t.ExecutedPrice > 0 && t.Shares > 0 && !t.Timestamp.IsZero()
}

// TradePlan is a pre-trade commitment of intended exit prices, keyed by
// the trade that opened the position. Nil targets mean no commitment.
type TradePlan struct {
	TradeID    string
	TakeProfit *float64
	StopLoss   *float64
	CreatedAt  time.Time
}

// HasTargets returns true if at least one exit target was committed.
func (p TradePlan) HasTargets() bool {
	return p.TakeProfit != nil || p.StopLoss != nil
}

// DisciplineBreakdown is the diagnostic result of a discipline scoring
// pass. It is derived on demand and never persisted by the engine.
type DisciplineBreakdown struct {
	TradesScored       int
	PlannedExits       int
	AdheredExits       int
	RevengeTrades      int
	OverLeverageTrades int

	PlanAdherenceRate float64
	PlanMissPenalty   int
	RevengePenalty    int
	LeveragePenalty   int
	Score             int
}
