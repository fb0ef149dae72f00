package models

import "time"

// PhantomHolding is a position inside a phantom portfolio. A symbol is
// unique within a portfolio and the holding is removed once shares reach
// zero.
type PhantomHolding struct {
	Symbol      string
	CompanyName string
	Shares      float64
	AverageCost float64
}

// SourceInfo records the provenance of a phantom portfolio.
type SourceInfo struct {
	Type        PortfolioSource
	TargetID    string
	Ratio       float64
	TargetValue float64
}

// PhantomPortfolio is the independently tradable paper portfolio owned by
// a single user. CashBalance never goes negative as a result of a trade.
type PhantomPortfolio struct {
	UserID          string
	StartingBalance float64
	CashBalance     float64
	Holdings        []PhantomHolding
	LastUpdatedAt   time.Time
	Source          SourceInfo
}

// Holding returns the holding for symbol and true if present.
func (p *PhantomPortfolio) Holding(symbol string) (PhantomHolding, bool) {
	for _, h := range p.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return PhantomHolding{}, false
}

// InvestedValue returns the cost basis of all holdings.
func (p *PhantomPortfolio) InvestedValue() float64 {
	var total float64
	for _, h := range p.Holdings {
		total += h.Shares * h.AverageCost
	}
	return total
}

// MarketValue returns cash plus holdings marked to the supplied prices.
// Symbols without a price are valued at average cost.
func (p *PhantomPortfolio) MarketValue(prices map[string]float64) float64 {
	total := p.CashBalance
	for _, h := range p.Holdings {
		price, ok := prices[h.Symbol]
		if !ok || price <= 0 {
			price = h.AverageCost
		}
		total += h.Shares * price
	}
	return total
}

// Clone returns a deep copy of the portfolio.
func (p *PhantomPortfolio) Clone() PhantomPortfolio {
	out := *p
	out.Holdings = make([]PhantomHolding, len(p.Holdings))
	copy(out.Holdings, p.Holdings)
	return out
}
