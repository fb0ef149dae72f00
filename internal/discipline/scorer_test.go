package discipline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trade-coach/internal/models"
)

var baseTime = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func trade(id, symbol string, side models.TradeSide, shares, price float64, at time.Time) models.Trade {
	return models.Trade{
		ID:            id,
		UserID:        "u1",
		Symbol:        symbol,
		Side:          side,
		Shares:        shares,
		ExecutedPrice: price,
		TotalAmount:   shares * price,
		Timestamp:     at,
		Status:        models.StatusCompleted,
	}
}

func f64(v float64) *float64 { return &v }

func TestScoreEmptyLog(t *testing.T) {
	scorer := NewScorer()

	b := scorer.Score(nil, nil, 10000, 10000)

	assert.Equal(t, 0, b.TradesScored)
	assert.Equal(t, 0, b.PlannedExits)
	assert.Equal(t, 10, b.PlanMissPenalty)
	assert.Equal(t, 0.7, b.PlanAdherenceRate)
	assert.Equal(t, 90, b.Score)
}

func TestScoreAdheredStopLossExit(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "AAPL", models.SideBuy, 10, 100, baseTime),
		// Fill at 94.80 is within the 0.5% band around the 95 stop.
		trade("t2", "AAPL", models.SideSell, 10, 94.80, baseTime.Add(time.Hour)),
	}
	plans := map[string]models.TradePlan{
		"t1": {TradeID: "t1", StopLoss: f64(95)},
	}

	b := scorer.Score(trades, plans, 10000, 10000)

	assert.Equal(t, 1, b.PlannedExits)
	assert.Equal(t, 1, b.AdheredExits)
	assert.Equal(t, 1.0, b.PlanAdherenceRate)
	assert.Equal(t, 0, b.PlanMissPenalty)
	assert.Equal(t, 0, b.RevengeTrades)
	assert.Equal(t, 100, b.Score)
}

func TestScoreAdheredTakeProfitExit(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "MSFT", models.SideBuy, 5, 400, baseTime),
		trade("t2", "MSFT", models.SideSell, 5, 418, baseTime.Add(2*time.Hour)),
	}
	plans := map[string]models.TradePlan{
		"t1": {TradeID: "t1", TakeProfit: f64(420)},
	}

	b := scorer.Score(trades, plans, 10000, 10000)

	assert.Equal(t, 1, b.AdheredExits)
	assert.Equal(t, 100, b.Score)
}

func TestScoreMissedPlanExit(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "AAPL", models.SideBuy, 10, 100, baseTime),
		// Exit at 97 is between the stop (95) and the target (110):
		// the plan was abandoned mid-flight.
		trade("t2", "AAPL", models.SideSell, 10, 97, baseTime.Add(time.Hour)),
	}
	plans := map[string]models.TradePlan{
		"t1": {TradeID: "t1", TakeProfit: f64(110), StopLoss: f64(95)},
	}

	b := scorer.Score(trades, plans, 10000, 10000)

	assert.Equal(t, 1, b.PlannedExits)
	assert.Equal(t, 0, b.AdheredExits)
	assert.Equal(t, 30, b.PlanMissPenalty)
	assert.Equal(t, 70, b.Score)
}

func TestScorePlanKeyedByExitTrade(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "AAPL", models.SideBuy, 10, 100, baseTime),
		trade("t2", "AAPL", models.SideSell, 10, 111, baseTime.Add(time.Hour)),
	}
	plans := map[string]models.TradePlan{
		"t2": {TradeID: "t2", TakeProfit: f64(110)},
	}

	b := scorer.Score(trades, plans, 10000, 10000)

	assert.Equal(t, 1, b.PlannedExits)
	assert.Equal(t, 1, b.AdheredExits)
}

func TestScoreRevengeTrade(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name    string
		gap     time.Duration
		revenge int
		score   int
	}{
		{"re-entry 10s after losing exit", 10 * time.Second, 1, 78},
		{"re-entry exactly at the window edge", 60 * time.Second, 1, 78},
		{"re-entry two minutes later", 2 * time.Minute, 0, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitAt := baseTime.Add(time.Hour)
			trades := []models.Trade{
				trade("t1", "TSLA", models.SideBuy, 4, 250, baseTime),
				trade("t2", "TSLA", models.SideSell, 4, 240, exitAt),
				trade("t3", "TSLA", models.SideBuy, 4, 239, exitAt.Add(tt.gap)),
			}

			b := scorer.Score(trades, nil, 10000, 10000)

			assert.Equal(t, tt.revenge, b.RevengeTrades)
			assert.Equal(t, tt.revenge*12, b.RevengePenalty)
			// No plans anywhere, so the neutral plan penalty applies.
			assert.Equal(t, 10, b.PlanMissPenalty)
			assert.Equal(t, tt.score, b.Score)
		})
	}
}

func TestScoreProfitableExitIsNotRevenge(t *testing.T) {
	scorer := NewScorer()

	exitAt := baseTime.Add(time.Hour)
	trades := []models.Trade{
		trade("t1", "NVDA", models.SideBuy, 10, 130, baseTime),
		trade("t2", "NVDA", models.SideSell, 10, 140, exitAt),
		trade("t3", "NVDA", models.SideBuy, 10, 141, exitAt.Add(5*time.Second)),
	}

	b := scorer.Score(trades, nil, 10000, 10000)

	assert.Equal(t, 0, b.RevengeTrades)
}

func TestScoreCoverAboveEntryIsLoss(t *testing.T) {
	scorer := NewScorer()

	exitAt := baseTime.Add(time.Hour)
	trades := []models.Trade{
		trade("t1", "SNAP", models.SideShort, 100, 11, baseTime),
		trade("t2", "SNAP", models.SideCover, 100, 12, exitAt),
		trade("t3", "SNAP", models.SideShort, 100, 12, exitAt.Add(30*time.Second)),
	}

	b := scorer.Score(trades, nil, 10000, 10000)

	assert.Equal(t, 1, b.RevengeTrades)
}

func TestScoreOverLeverageBoundary(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name    string
		amount  float64
		flagged int
	}{
		{"exactly half of account value", 5000, 0},
		{"just over half", 5000.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades := []models.Trade{
				trade("t1", "AAPL", models.SideBuy, 1, tt.amount, baseTime),
			}

			b := scorer.Score(trades, nil, 10000, 10000)

			assert.Equal(t, tt.flagged, b.OverLeverageTrades)
			assert.Equal(t, tt.flagged*8, b.LeveragePenalty)
		})
	}
}

func TestScoreLeverageUsesLargerOfCurrentAndStarting(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "AAPL", models.SideBuy, 1, 6000, baseTime),
	}

	// The account has grown; 6000 is under half of 15000.
	b := scorer.Score(trades, nil, 10000, 15000)
	assert.Equal(t, 0, b.OverLeverageTrades)

	// The account has shrunk; the starting balance still anchors the limit.
	b = scorer.Score(trades, nil, 15000, 10000)
	assert.Equal(t, 0, b.OverLeverageTrades)
}

func TestScorePenaltiesAreCapped(t *testing.T) {
	scorer := NewScorer()

	exit := func(n int) time.Time { return baseTime.Add(time.Duration(n) * 10 * time.Second) }
	var trades []models.Trade
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		trades = append(trades,
			trade("e"+id, "F", models.SideBuy, 1000, 11, exit(2*i)),
			trade("x"+id, "F", models.SideSell, 1000, 10, exit(2*i+1)),
		)
	}

	b := scorer.Score(trades, nil, 10000, 10000)

	assert.Equal(t, 30, b.RevengePenalty)
	assert.Equal(t, 20, b.LeveragePenalty)
	assert.GreaterOrEqual(t, b.Score, 0)
}

func TestScoreSkipsMalformedAndPendingTrades(t *testing.T) {
	scorer := NewScorer()

	pending := trade("t1", "AAPL", models.SideBuy, 10, 100, baseTime)
	pending.Status = models.StatusPending
	zeroPrice := trade("t2", "AAPL", models.SideBuy, 10, 0, baseTime)
	noTimestamp := trade("t3", "AAPL", models.SideBuy, 10, 100, time.Time{})

	b := scorer.Score([]models.Trade{pending, zeroPrice, noTimestamp}, nil, 10000, 10000)

	assert.Equal(t, 0, b.TradesScored)
	assert.Equal(t, 90, b.Score)
}

func TestScoreOrderIndependent(t *testing.T) {
	scorer := NewScorer()

	trades := []models.Trade{
		trade("t1", "AAPL", models.SideBuy, 10, 100, baseTime),
		trade("t2", "AAPL", models.SideSell, 10, 90, baseTime.Add(time.Minute)),
		trade("t3", "MSFT", models.SideBuy, 2, 400, baseTime.Add(time.Minute+30*time.Second)),
	}
	reversed := []models.Trade{trades[2], trades[1], trades[0]}

	assert.Equal(t,
		scorer.Score(trades, nil, 10000, 10000),
		scorer.Score(reversed, nil, 10000, 10000),
	)
}
