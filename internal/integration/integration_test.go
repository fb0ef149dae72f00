// Package integration provides end-to-end tests across the analytics
// engine: replication planning, phantom trading, persistence and scoring
// working against one SQLite store.
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-coach/internal/discipline"
	"trade-coach/internal/ledger"
	"trade-coach/internal/models"
	"trade-coach/internal/phantom"
	"trade-coach/internal/replicate"
)

func TestEndToEndCopyThenDiverge(t *testing.T) {
	ctx := context.Background()

	store, err := ledger.NewSQLiteStore(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	defer store.Close()

	catalog := ledger.NewStaticCatalog()
	planner := replicate.NewPlanner(catalog)
	phantomStore := phantom.NewStore()
	executor := phantom.NewExecutor(phantomStore, 10000, zerolog.Nop())

	// Sync: shadow a target trader with 10k of capital.
	plan, err := planner.Plan(replicate.Request{
		TargetID:    "guru-42",
		TargetValue: 125000,
		UserValue:   10000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Holdings)

	synced := phantomStore.SyncFromPlan("u1", plan)
	require.NoError(t, store.SavePortfolio(ctx, &synced))
	assert.Equal(t, models.SourceCopy, synced.Source.Type)

	// Diverge: sell part of the largest position manually.
	top := synced.Holdings[0]
	diverged, err := executor.ExecuteTrade("u1", phantom.TradeRequest{
		Symbol:      top.Symbol,
		CompanyName: top.CompanyName,
		Side:        models.SideSell,
		Shares:      top.Shares / 2,
		Price:       top.AverageCost * 1.1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, diverged.Source.Type)
	assert.Greater(t, diverged.CashBalance, synced.CashBalance)

	// Persist and reload: the divergence survives a restart.
	require.NoError(t, store.SavePortfolio(ctx, &diverged))
	reloaded, err := store.GetPortfolio(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, diverged.CashBalance, reloaded.CashBalance)
	assert.Equal(t, diverged.Holdings, reloaded.Holdings)
}

func TestEndToEndTradeHistoryScoring(t *testing.T) {
	ctx := context.Background()

	store, err := ledger.NewSQLiteStore(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	stopLoss := 95.0

	// A planned entry whose stop was honored.
	entry := &models.Trade{
		ID: "t1", UserID: "u1", Symbol: "AAPL", Side: models.SideBuy,
		Shares: 10, ExecutedPrice: 100, TotalAmount: 1000,
		Timestamp: base, Status: models.StatusCompleted,
	}
	require.NoError(t, store.LogTrade(ctx, entry))
	require.NoError(t, store.SavePlan(ctx, "u1", &models.TradePlan{
		TradeID:  "t1",
		StopLoss: &stopLoss,
	}))
	require.NoError(t, store.LogTrade(ctx, &models.Trade{
		ID: "t2", UserID: "u1", Symbol: "AAPL", Side: models.SideSell,
		Shares: 10, ExecutedPrice: 94.90, TotalAmount: 949,
		Timestamp: base.Add(time.Hour), Status: models.StatusCompleted,
	}))

	// An unplanned loser followed by an immediate re-entry.
	require.NoError(t, store.LogTrade(ctx, &models.Trade{
		ID: "t3", UserID: "u1", Symbol: "TSLA", Side: models.SideBuy,
		Shares: 4, ExecutedPrice: 250, TotalAmount: 1000,
		Timestamp: base.Add(2 * time.Hour), Status: models.StatusCompleted,
	}))
	require.NoError(t, store.LogTrade(ctx, &models.Trade{
		ID: "t4", UserID: "u1", Symbol: "TSLA", Side: models.SideSell,
		Shares: 4, ExecutedPrice: 240, TotalAmount: 960,
		Timestamp: base.Add(3 * time.Hour), Status: models.StatusCompleted,
	}))
	require.NoError(t, store.LogTrade(ctx, &models.Trade{
		ID: "t5", UserID: "u1", Symbol: "TSLA", Side: models.SideBuy,
		Shares: 4, ExecutedPrice: 239, TotalAmount: 956,
		Timestamp: base.Add(3*time.Hour + 15*time.Second), Status: models.StatusCompleted,
	}))

	trades, err := store.ListCompletedTrades(ctx, "u1")
	require.NoError(t, err)
	plans, err := store.ListPlans(ctx, "u1")
	require.NoError(t, err)

	b := discipline.NewScorer().Score(trades, plans, 10000, 10000)

	assert.Equal(t, 5, b.TradesScored)
	assert.Equal(t, 1, b.PlannedExits)
	assert.Equal(t, 1, b.AdheredExits)
	assert.Equal(t, 0, b.PlanMissPenalty)
	assert.Equal(t, 1, b.RevengeTrades)
	assert.Equal(t, 12, b.RevengePenalty)
	assert.Equal(t, 88, b.Score)
}
