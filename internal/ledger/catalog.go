package ledger

import (
	"sort"
	"sync"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
)

// StaticCatalog is an in-memory instrument catalog seeded with the paper
// universe. Prices may be overridden at runtime; the symbol set is fixed.
type StaticCatalog struct {
	mu          sync.RWMutex
	instruments map[string]models.Instrument
}

// defaultUniverse is the built-in paper-trading universe with reference
// prices. Real-time correctness is a non-goal; these prices only need to
// be plausible and strictly positive.
var defaultUniverse = []models.Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 228.50},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 417.20},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 182.35},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 199.80},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 131.60},
	{Symbol: "META", Name: "Meta Platforms Inc.", Price: 585.40},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.90},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc.", Price: 465.10},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Price: 224.75},
	{Symbol: "V", Name: "Visa Inc.", Price: 290.30},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Price: 160.45},
	{Symbol: "WMT", Name: "Walmart Inc.", Price: 84.20},
	{Symbol: "PG", Name: "Procter & Gamble Co.", Price: 171.90},
	{Symbol: "MA", Name: "Mastercard Inc.", Price: 502.60},
	{Symbol: "HD", Name: "Home Depot Inc.", Price: 405.85},
	{Symbol: "KO", Name: "Coca-Cola Co.", Price: 63.15},
	{Symbol: "PEP", Name: "PepsiCo Inc.", Price: 171.25},
	{Symbol: "COST", Name: "Costco Wholesale Corp.", Price: 912.40},
	{Symbol: "DIS", Name: "Walt Disney Co.", Price: 112.70},
	{Symbol: "NFLX", Name: "Netflix Inc.", Price: 701.35},
	{Symbol: "AMD", Name: "Advanced Micro Devices", Price: 155.20},
	{Symbol: "INTC", Name: "Intel Corporation", Price: 22.85},
	{Symbol: "CRM", Name: "Salesforce Inc.", Price: 291.50},
	{Symbol: "ORCL", Name: "Oracle Corporation", Price: 174.30},
	{Symbol: "ADBE", Name: "Adobe Inc.", Price: 505.90},
	{Symbol: "NKE", Name: "Nike Inc.", Price: 77.60},
	{Symbol: "MCD", Name: "McDonald's Corp.", Price: 293.15},
	{Symbol: "SBUX", Name: "Starbucks Corp.", Price: 97.40},
	{Symbol: "UBER", Name: "Uber Technologies Inc.", Price: 72.85},
	{Symbol: "ABNB", Name: "Airbnb Inc.", Price: 132.50},
	{Symbol: "PYPL", Name: "PayPal Holdings Inc.", Price: 79.95},
	{Symbol: "SHOP", Name: "Shopify Inc.", Price: 79.10},
	{Symbol: "SPOT", Name: "Spotify Technology", Price: 378.20},
	{Symbol: "SQ", Name: "Block Inc.", Price: 68.45},
	{Symbol: "COIN", Name: "Coinbase Global Inc.", Price: 205.60},
	{Symbol: "PLTR", Name: "Palantir Technologies", Price: 43.30},
	{Symbol: "SNAP", Name: "Snap Inc.", Price: 10.85},
	{Symbol: "RBLX", Name: "Roblox Corp.", Price: 44.95},
	{Symbol: "F", Name: "Ford Motor Co.", Price: 11.20},
	{Symbol: "GM", Name: "General Motors Co.", Price: 53.75},
}

// NewStaticCatalog creates a catalog seeded with the default universe.
func NewStaticCatalog() *StaticCatalog {
	instruments := make(map[string]models.Instrument, len(defaultUniverse))
	for _, inst := range defaultUniverse {
		instruments[inst.Symbol] = inst
	}
	return &StaticCatalog{instruments: instruments}
}

// PriceOf returns the current price for a symbol.
func (c *StaticCatalog) PriceOf(symbol string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inst, ok := c.instruments[symbol]
	if !ok {
		return 0, apperrors.Wrapf(apperrors.ErrSymbolNotFound, "%s", symbol)
	}
	return inst.Price, nil
}

// NameOf returns the company name for a symbol, or the symbol itself if
// unknown.
func (c *StaticCatalog) NameOf(symbol string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if inst, ok := c.instruments[symbol]; ok {
		return inst.Name
	}
	return symbol
}

// SetPrice overrides the price for a symbol. Unknown symbols are rejected.
func (c *StaticCatalog) SetPrice(symbol string, price float64) error {
	if price <= 0 {
		return apperrors.NewValidationError("price", price, "must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inst, ok := c.instruments[symbol]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrSymbolNotFound, "%s", symbol)
	}
	inst.Price = price
	c.instruments[symbol] = inst
	return nil
}

// Universe returns all instruments sorted by symbol.
func (c *StaticCatalog) Universe() []models.Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Instrument, 0, len(c.instruments))
	for _, inst := range c.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Ensure StaticCatalog implements InstrumentCatalog
var _ InstrumentCatalog = (*StaticCatalog)(nil)
