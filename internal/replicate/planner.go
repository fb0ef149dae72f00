// Package replicate derives phantom portfolios that shadow another
// trader's aggregate value. A target's literal positions are not
// observable, so the planner deterministically maps the target's identity
// to a representative basket and scales it to the user's own capital.
package replicate

import (
	"hash/fnv"
	"math"
	"sort"

	"trade-coach/internal/config"
	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/ledger"
	"trade-coach/internal/models"
)

// sharePrecision is the fractional-share granularity: share counts are
// floored to 1/10000 of a share so rounding always favors cash.
const sharePrecision = 1e4

// Params defines replication planning parameters.
type Params struct {
	// HoldingsCount is the default basket size when a request does not
	// specify one.
	HoldingsCount int
	// Version salts the basket-selection hash. Bumping it remaps every
	// target to a fresh basket; within a version the mapping is stable.
	Version string
}

// DefaultParams returns the default planning parameters.
func DefaultParams() Params {
	return Params{HoldingsCount: 8, Version: "v1"}
}

// ParamsFromConfig builds planning parameters from application config.
func ParamsFromConfig(cfg config.ReplicationConfig) Params {
	return Params{HoldingsCount: cfg.HoldingsCount, Version: cfg.BasketVersion}
}

// Request describes one replication planning call.
type Request struct {
	TargetID      string
	TargetValue   float64
	UserValue     float64
	HoldingsCount int
}

// PlannedHolding is one scaled position in the phantom basket.
type PlannedHolding struct {
	Symbol        string
	CompanyName   string
	PhantomShares float64
	Price         float64
}

// Plan is the planner output, ready to replace a phantom portfolio.
type Plan struct {
	TargetID      string
	Version       string
	Ratio         float64
	UserValue     float64
	TargetValue   float64
	CashRemainder float64
	Holdings      []PlannedHolding
}

// Planner derives scaled phantom baskets from the instrument universe.
type Planner struct {
	catalog ledger.InstrumentCatalog
	params  Params
}

// NewPlanner creates a planner over the given catalog with default
// parameters.
func NewPlanner(catalog ledger.InstrumentCatalog) *Planner {
	return NewPlannerWithParams(catalog, DefaultParams())
}

// NewPlannerWithParams creates a planner with custom parameters.
func NewPlannerWithParams(catalog ledger.InstrumentCatalog, params Params) *Planner {
	return &Planner{catalog: catalog, params: params}
}

// Plan derives a scaled allocation across a representative holdings set.
//
// The same target always maps to the same basket within a basket version:
// instruments are ranked by an FNV-1a hash of (version, targetID, symbol)
// and the top HoldingsCount are selected. Allocation uses descending
// harmonic rank weights. Shares are floored to a fractional-share step so
// CashRemainder is never negative.
//
// A target with no observable value (TargetValue <= 0) is valid input and
// yields an all-cash, zero-ratio plan.
func (p *Planner) Plan(req Request) (Plan, error) {
	if req.UserValue < 0 {
		return Plan{}, apperrors.NewValidationError("userValue", req.UserValue, "must be non-negative")
	}
	if req.TargetID == "" {
		return Plan{}, apperrors.NewValidationError("targetID", req.TargetID, "must not be empty")
	}

	plan := Plan{
		TargetID:    req.TargetID,
		Version:     p.params.Version,
		UserValue:   req.UserValue,
		TargetValue: req.TargetValue,
	}

	// Degenerate target: nothing to shadow, hold cash.
	if req.TargetValue <= 0 {
		plan.CashRemainder = req.UserValue
		return plan, nil
	}

	plan.Ratio = req.UserValue / req.TargetValue

	count := req.HoldingsCount
	if count <= 0 {
		count = p.params.HoldingsCount
	}

	basket := p.selectBasket(req.TargetID, count)
	weights := harmonicWeights(len(basket))

	var invested float64
	for i, inst := range basket {
		allocated := req.UserValue * weights[i]
		shares := floorShares(allocated / inst.Price)
		if shares <= 0 {
			continue
		}
		plan.Holdings = append(plan.Holdings, PlannedHolding{
			Symbol:        inst.Symbol,
			CompanyName:   inst.Name,
			PhantomShares: shares,
			Price:         inst.Price,
		})
		invested += shares * inst.Price
	}

	plan.CashRemainder = math.Max(req.UserValue-invested, 0)
	return plan, nil
}

// selectBasket deterministically picks count instruments for a target.
// Every priced instrument is ranked by a hash of the target identity and
// the symbol; the top count win. The ordering has no dependence on map
// iteration or randomness, so re-syncing to the same target reproduces
// the basket exactly.
func (p *Planner) selectBasket(targetID string, count int) []models.Instrument {
	type ranked struct {
		inst models.Instrument
		rank uint64
	}

	universe := p.catalog.Universe()
	candidates := make([]ranked, 0, len(universe))
	for _, inst := range universe {
		if inst.Price <= 0 {
			continue
		}
		candidates = append(candidates, ranked{
			inst: inst,
			rank: basketRank(p.params.Version, targetID, inst.Symbol),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank > candidates[j].rank
		}
		return candidates[i].inst.Symbol < candidates[j].inst.Symbol
	})

	if count > len(candidates) {
		count = len(candidates)
	}

	basket := make([]models.Instrument, count)
	for i := 0; i < count; i++ {
		basket[i] = candidates[i].inst
	}
	return basket
}

// basketRank hashes (version, targetID, symbol) with FNV-1a 64.
func basketRank(version, targetID, symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(version))
	h.Write([]byte{':'})
	h.Write([]byte(targetID))
	h.Write([]byte{':'})
	h.Write([]byte(symbol))
	return h.Sum64()
}

// harmonicWeights returns descending rank weights 1/1, 1/2, ... 1/n,
// normalized to sum to 1. The first selected symbol gets the largest
// slice of capital, tapering off down the basket.
func harmonicWeights(n int) []float64 {
	if n == 0 {
		return nil
	}
	weights := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		weights[i] = 1 / float64(i+1)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// floorShares floors a share count to the fractional-share step.
func floorShares(shares float64) float64 {
	return math.Floor(shares*sharePrecision) / sharePrecision
}
