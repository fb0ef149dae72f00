package phantom

import (
	"math"

	"github.com/rs/zerolog"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/logging"
	"trade-coach/internal/models"
)

// shareEpsilon absorbs float dust when deciding whether a holding has
// been fully sold.
const shareEpsilon = 1e-9

// TradeRequest describes one buy or sell against a phantom portfolio.
type TradeRequest struct {
	Symbol      string
	CompanyName string
	Side        models.TradeSide
	Shares      float64
	Price       float64
}

// Executor validates and applies buy/sell operations against the phantom
// portfolio store, maintaining weighted-average-cost accounting.
type Executor struct {
	store           *Store
	startingBalance float64
	logger          zerolog.Logger
}

// NewExecutor creates an executor over the given store. startingBalance
// seeds the portfolio when a user's first action is a manual trade rather
// than a sync.
func NewExecutor(store *Store, startingBalance float64, logger zerolog.Logger) *Executor {
	return &Executor{
		store:           store,
		startingBalance: startingBalance,
		logger:          logger,
	}
}

// ExecuteTrade validates and applies one trade. On failure the portfolio
// is unchanged; on success the returned snapshot reflects both the cash
// and the holdings update. Any manual trade marks the portfolio source as
// manual, since it breaks pure "following" provenance.
func (e *Executor) ExecuteTrade(userID string, req TradeRequest) (models.PhantomPortfolio, error) {
	if err := validateRequest(req); err != nil {
		return models.PhantomPortfolio{}, err
	}

	init := func() models.PhantomPortfolio {
		return newCashPortfolio(userID, e.startingBalance)
	}

	snapshot, err := e.store.mutate(userID, init, func(p *models.PhantomPortfolio) error {
		switch req.Side {
		case models.SideBuy:
			return applyBuy(p, req)
		case models.SideSell:
			return applySell(p, req)
		}
		return apperrors.NewValidationError("side", req.Side, "must be BUY or SELL")
	})
	if err != nil {
		return models.PhantomPortfolio{}, err
	}

	logging.LogTrade(logging.WithUser(e.logger, userID), req.Symbol, string(req.Side), req.Shares, req.Price)
	return snapshot, nil
}

// validateRequest rejects malformed requests before any state is touched.
func validateRequest(req TradeRequest) error {
	if req.Symbol == "" {
		return apperrors.NewValidationError("symbol", req.Symbol, "must not be empty")
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return apperrors.NewValidationError("side", req.Side, "must be BUY or SELL")
	}
	if req.Shares <= 0 {
		return apperrors.NewValidationError("shares", req.Shares, "must be positive")
	}
	if req.Price <= 0 {
		return apperrors.NewValidationError("price", req.Price, "must be positive")
	}
	return nil
}

// applyBuy debits cash and blends the purchase into the holding's
// weighted average cost.
func applyBuy(p *models.PhantomPortfolio, req TradeRequest) error {
	cost := req.Shares * req.Price
	if cost > p.CashBalance+shareEpsilon {
		return apperrors.NewTradeError(req.Symbol, string(req.Side),
			"cost exceeds available cash", apperrors.ErrInsufficientCash)
	}

	p.CashBalance = math.Max(p.CashBalance-cost, 0)

	for i := range p.Holdings {
		if p.Holdings[i].Symbol != req.Symbol {
			continue
		}
		h := &p.Holdings[i]
		newShares := h.Shares + req.Shares
		h.AverageCost = (h.Shares*h.AverageCost + req.Shares*req.Price) / newShares
		h.Shares = newShares
		p.Source.Type = models.SourceManual
		return nil
	}

	p.Holdings = append(p.Holdings, models.PhantomHolding{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Shares:      req.Shares,
		AverageCost: req.Price,
	})
	p.Source.Type = models.SourceManual
	return nil
}

// applySell credits cash and reduces or removes the holding. Average cost
// is unchanged by a partial sell; cost basis tracks only future buys.
func applySell(p *models.PhantomPortfolio, req TradeRequest) error {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol != req.Symbol {
			continue
		}
		h := &p.Holdings[i]
		if req.Shares > h.Shares+shareEpsilon {
			return apperrors.NewTradeError(req.Symbol, string(req.Side),
				"sell size exceeds held shares", apperrors.ErrInsufficientShares)
		}

		p.CashBalance += req.Shares * req.Price
		h.Shares -= req.Shares
		if h.Shares <= shareEpsilon {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		}
		p.Source.Type = models.SourceManual
		return nil
	}

	return apperrors.NewTradeError(req.Symbol, string(req.Side),
		"symbol not held", apperrors.ErrNoSuchPosition)
}
