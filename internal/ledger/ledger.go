// Package ledger provides data persistence interfaces and implementations
// for the analytics engine's external collaborators: the trade ledger,
// the plan store, portfolio persistence and the instrument catalog.
package ledger

import (
	"context"

	"trade-coach/internal/models"
)

// TradeLedger is the append-only log of trade records. The engine only
// ever reads from it; records are created on order fill and never deleted.
type TradeLedger interface {
	LogTrade(ctx context.Context, trade *models.Trade) error
	ListCompletedTrades(ctx context.Context, userID string) ([]models.Trade, error)
}

// PlanStore holds per-trade pre-commitments of intended exit prices.
// Plans are immutable once written.
type PlanStore interface {
	SavePlan(ctx context.Context, userID string, plan *models.TradePlan) error
	GetPlan(ctx context.Context, tradeID string) (*models.TradePlan, error)
	ListPlans(ctx context.Context, userID string) (map[string]models.TradePlan, error)
}

// PortfolioStore persists phantom portfolio state between sessions.
type PortfolioStore interface {
	SavePortfolio(ctx context.Context, portfolio *models.PhantomPortfolio) error
	GetPortfolio(ctx context.Context, userID string) (*models.PhantomPortfolio, error)
}

// InstrumentCatalog supplies the paper-trading instrument universe and
// current prices.
type InstrumentCatalog interface {
	PriceOf(symbol string) (float64, error)
	Universe() []models.Instrument
}

// AccountValuation reports the total value of a user's account: cash
// plus mark-to-market holdings.
type AccountValuation interface {
	CurrentValue(ctx context.Context, userID string) (float64, error)
}

// DataStore combines the persistence collaborators backed by one store.
type DataStore interface {
	TradeLedger
	PlanStore
	PortfolioStore

	Close() error
}
