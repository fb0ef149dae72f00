package ledger

import (
	"context"

	apperrors "trade-coach/internal/errors"
)

// Valuation computes a user's current account value from the persisted
// phantom portfolio marked to catalog prices.
type Valuation struct {
	portfolios PortfolioStore
	catalog    InstrumentCatalog
}

// NewValuation creates an AccountValuation over the given collaborators.
func NewValuation(portfolios PortfolioStore, catalog InstrumentCatalog) *Valuation {
	return &Valuation{portfolios: portfolios, catalog: catalog}
}

// CurrentValue returns cash plus mark-to-market holdings. Holdings whose
// symbol has no catalog price are valued at average cost.
func (v *Valuation) CurrentValue(ctx context.Context, userID string) (float64, error) {
	portfolio, err := v.portfolios.GetPortfolio(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrPortfolioNotFound) {
			return 0, err
		}
		return 0, apperrors.Wrap(err, "valuing account")
	}

	total := portfolio.CashBalance
	for _, h := range portfolio.Holdings {
		price, err := v.catalog.PriceOf(h.Symbol)
		if err != nil || price <= 0 {
			price = h.AverageCost
		}
		total += h.Shares * price
	}
	return total, nil
}

// Ensure Valuation implements AccountValuation
var _ AccountValuation = (*Valuation)(nil)
