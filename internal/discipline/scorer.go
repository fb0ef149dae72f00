// Package discipline scores trading behavior against pre-committed exit
// plans. It detects missed plan targets, rapid loss-driven re-entries and
// oversized positions, and reduces them to a bounded 0-100 score.
package discipline

import (
	"math"
	"sort"
	"time"

	"trade-coach/internal/config"
	"trade-coach/internal/models"
)

// Params defines the thresholds and penalty weights for discipline scoring.
type Params struct {
	RevengeWindow        time.Duration
	OverLeverageFraction float64
	AdherenceTolerance   float64
	NoPlanPenalty        int
	NoPlanAdherence      float64
	PlanMissMax          int
	RevengePenaltyPer    int
	RevengePenaltyMax    int
	LeveragePenaltyPer   int
	LeveragePenaltyMax   int
}

// DefaultParams returns the default scoring parameters.
func DefaultParams() Params {
	return Params{
		RevengeWindow:        60 * time.Second,
		OverLeverageFraction: 0.5,
		AdherenceTolerance:   0.005,
		NoPlanPenalty:        10,
		NoPlanAdherence:      0.7,
		PlanMissMax:          30,
		RevengePenaltyPer:    12,
		RevengePenaltyMax:    30,
		LeveragePenaltyPer:   8,
		LeveragePenaltyMax:   20,
	}
}

// ParamsFromConfig builds scoring parameters from application config.
func ParamsFromConfig(cfg config.DisciplineConfig) Params {
	return Params{
		RevengeWindow:        time.Duration(cfg.RevengeWindowMS) * time.Millisecond,
		OverLeverageFraction: cfg.OverLeverageFraction,
		AdherenceTolerance:   cfg.AdherenceTolerance,
		NoPlanPenalty:        cfg.NoPlanPenalty,
		NoPlanAdherence:      cfg.NoPlanAdherence,
		PlanMissMax:          cfg.PlanMissMax,
		RevengePenaltyPer:    cfg.RevengePenaltyPer,
		RevengePenaltyMax:    cfg.RevengePenaltyMax,
		LeveragePenaltyPer:   cfg.LeveragePenaltyPer,
		LeveragePenaltyMax:   cfg.LeveragePenaltyMax,
	}
}

// Scorer computes discipline scores over a user's trade history.
type Scorer struct {
	params Params
}

// NewScorer creates a scorer with default parameters.
func NewScorer() *Scorer {
	return &Scorer{params: DefaultParams()}
}

// NewScorerWithParams creates a scorer with custom parameters.
func NewScorerWithParams(p Params) *Scorer {
	return &Scorer{params: p}
}

// Score inspects the trade log and pre-trade plans and returns a
// discipline breakdown with a score in [0, 100].
//
// Trades need not be pre-sorted; they are sorted ascending by timestamp
// internally. Only completed trades with a positive price, positive share
// count and a timestamp are considered; malformed records are skipped.
// The function is pure: identical inputs always produce identical output.
func (s *Scorer) Score(trades []models.Trade, plans map[string]models.TradePlan, startingBalance, currentAccountValue float64) models.DisciplineBreakdown {
	sorted := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status != models.StatusCompleted || !t.Valid() {
			continue
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// A position sized beyond half (by default) of the larger of current
	// and starting account value is flagged as over-leveraged. The floor
	// of 1 avoids flagging everything on a zeroed account.
	accountBase := math.Max(math.Max(currentAccountValue, startingBalance), 1)
	leverageLimit := accountBase * s.params.OverLeverageFraction

	var b models.DisciplineBreakdown
	b.TradesScored = len(sorted)

	lastEntryBySymbol := make(map[string]models.Trade)

	for i := 0; i < len(sorted); i++ {
		t := sorted[i]

		if t.Side.IsEntry() {
			lastEntryBySymbol[t.Symbol] = t
			if t.TotalAmount > leverageLimit {
				b.OverLeverageTrades++
			}
			continue
		}

		if !t.Side.IsExit() {
			continue
		}

		// Prefer a plan keyed by the exit trade itself, falling back to
		// the plan of the most recent entry for the same symbol.
		plan, ok := plans[t.ID]
		if !ok {
			if entry, found := lastEntryBySymbol[t.Symbol]; found {
				plan, ok = plans[entry.ID]
			}
		}

		if ok && plan.HasTargets() {
			b.PlannedExits++
			if s.exitAdhered(t, plan) {
				b.AdheredExits++
			}
		}

		if s.isLossExit(t, lastEntryBySymbol) && i+1 < len(sorted) {
			if sorted[i+1].Timestamp.Sub(t.Timestamp) <= s.params.RevengeWindow {
				b.RevengeTrades++
			}
		}
	}

	s.applyPenalties(&b)
	return b
}

// exitAdhered reports whether the exit fill landed within tolerance
// beyond either committed target.
func (s *Scorer) exitAdhered(t models.Trade, plan models.TradePlan) bool {
	tol := s.params.AdherenceTolerance
	if plan.TakeProfit != nil && t.ExecutedPrice >= *plan.TakeProfit*(1-tol) {
		return true
	}
	if plan.StopLoss != nil && t.ExecutedPrice <= *plan.StopLoss*(1+tol) {
		return true
	}
	return false
}

// isLossExit reports whether the exit realized a loss against its entry.
// The recorded entry price on the trade wins; otherwise the most recent
// entry for the symbol is consulted.
func (s *Scorer) isLossExit(t models.Trade, lastEntryBySymbol map[string]models.Trade) bool {
	entryPrice := t.EntryPrice
	if entryPrice <= 0 {
		entry, ok := lastEntryBySymbol[t.Symbol]
		if !ok {
			return false
		}
		entryPrice = entry.ExecutedPrice
	}

	switch t.Side {
	case models.SideSell:
		return t.ExecutedPrice < entryPrice
	case models.SideCover:
		return t.ExecutedPrice > entryPrice
	}
	return false
}

// applyPenalties converts the raw counts into penalties and the final
// clamped score.
func (s *Scorer) applyPenalties(b *models.DisciplineBreakdown) {
	if b.PlannedExits == 0 {
		// No plans at all is scored neutrally, not punitively: the
		// behavior is unobserved rather than bad.
		b.PlanAdherenceRate = s.params.NoPlanAdherence
		b.PlanMissPenalty = s.params.NoPlanPenalty
	} else {
		b.PlanAdherenceRate = float64(b.AdheredExits) / float64(b.PlannedExits)
		b.PlanMissPenalty = int(math.Round((1 - b.PlanAdherenceRate) * float64(s.params.PlanMissMax)))
	}

	b.RevengePenalty = minInt(b.RevengeTrades*s.params.RevengePenaltyPer, s.params.RevengePenaltyMax)
	b.LeveragePenalty = minInt(b.OverLeverageTrades*s.params.LeveragePenaltyPer, s.params.LeveragePenaltyMax)

	b.Score = clampInt(100-b.PlanMissPenalty-b.RevengePenalty-b.LeveragePenalty, 0, 100)
}

// clampInt restricts a value to the given range.
func clampInt(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
