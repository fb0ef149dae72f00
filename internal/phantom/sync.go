package phantom

import (
	"trade-coach/internal/models"
	"trade-coach/internal/replicate"
)

// NewPortfolioFromPlan converts a replication plan into the phantom
// portfolio state that replaces the user's current one on sync.
func NewPortfolioFromPlan(userID string, plan replicate.Plan) models.PhantomPortfolio {
	holdings := make([]models.PhantomHolding, 0, len(plan.Holdings))
	for _, h := range plan.Holdings {
		holdings = append(holdings, models.PhantomHolding{
			Symbol:      h.Symbol,
			CompanyName: h.CompanyName,
			Shares:      h.PhantomShares,
			AverageCost: h.Price,
		})
	}

	return models.PhantomPortfolio{
		UserID:          userID,
		StartingBalance: plan.UserValue,
		CashBalance:     plan.CashRemainder,
		Holdings:        holdings,
		Source: models.SourceInfo{
			Type:        models.SourceCopy,
			TargetID:    plan.TargetID,
			Ratio:       plan.Ratio,
			TargetValue: plan.TargetValue,
		},
	}
}

// SyncFromPlan replaces the user's portfolio with the plan output and
// returns the stored snapshot.
func (s *Store) SyncFromPlan(userID string, plan replicate.Plan) models.PhantomPortfolio {
	return s.Replace(userID, NewPortfolioFromPlan(userID, plan))
}
