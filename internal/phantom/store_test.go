package phantom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
	"trade-coach/internal/replicate"
)

func TestStoreSnapshotUnknownUser(t *testing.T) {
	store := NewStore()

	_, err := store.Snapshot("nobody")
	assert.True(t, apperrors.Is(err, apperrors.ErrPortfolioNotFound))
}

func TestStoreReplaceStampsTimestamp(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	p := store.Replace("u1", models.PhantomPortfolio{CashBalance: 500})

	assert.Equal(t, fixed, p.LastUpdatedAt)
	assert.Equal(t, "u1", p.UserID)
}

func TestStoreRestoreKeepsTimestamp(t *testing.T) {
	store := NewStore()
	persisted := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	store.Restore(models.PhantomPortfolio{
		UserID:        "u1",
		CashBalance:   750,
		LastUpdatedAt: persisted,
	})

	p, err := store.Snapshot("u1")
	require.NoError(t, err)
	assert.Equal(t, persisted, p.LastUpdatedAt)
	assert.Equal(t, 750.0, p.CashBalance)
}

func TestStoreSnapshotIsDefensiveCopy(t *testing.T) {
	store := NewStore()
	store.Replace("u1", models.PhantomPortfolio{
		CashBalance: 1000,
		Holdings:    []models.PhantomHolding{{Symbol: "AAPL", Shares: 10, AverageCost: 100}},
	})

	p, err := store.Snapshot("u1")
	require.NoError(t, err)
	p.Holdings[0].Shares = 999
	p.CashBalance = 0

	fresh, err := store.Snapshot("u1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, fresh.Holdings[0].Shares)
	assert.Equal(t, 1000.0, fresh.CashBalance)
}

func TestStoreReset(t *testing.T) {
	store := NewStore()
	store.Replace("u1", models.PhantomPortfolio{
		CashBalance: 100,
		Holdings:    []models.PhantomHolding{{Symbol: "AAPL", Shares: 10, AverageCost: 100}},
		Source:      models.SourceInfo{Type: models.SourceCopy, TargetID: "guru-42"},
	})

	p, err := store.Reset("u1", 25000)
	require.NoError(t, err)

	assert.Equal(t, 25000.0, p.StartingBalance)
	assert.Equal(t, 25000.0, p.CashBalance)
	assert.Empty(t, p.Holdings)
	assert.Equal(t, models.SourceManual, p.Source.Type)
	assert.Empty(t, p.Source.TargetID)
}

func TestStoreResetNegativeBalance(t *testing.T) {
	store := NewStore()

	_, err := store.Reset("u1", -1)
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
}

func TestSyncFromPlanBuildsCopyPortfolio(t *testing.T) {
	store := NewStore()

	plan := replicate.Plan{
		TargetID:      "guru-42",
		Version:       "v1",
		Ratio:         0.08,
		UserValue:     10000,
		TargetValue:   125000,
		CashRemainder: 412.50,
		Holdings: []replicate.PlannedHolding{
			{Symbol: "AAPL", CompanyName: "Apple Inc.", PhantomShares: 20.5, Price: 228.50},
			{Symbol: "KO", CompanyName: "Coca-Cola Co.", PhantomShares: 75.1, Price: 63.15},
		},
	}

	p := store.SyncFromPlan("u1", plan)

	assert.Equal(t, models.SourceCopy, p.Source.Type)
	assert.Equal(t, "guru-42", p.Source.TargetID)
	assert.Equal(t, 0.08, p.Source.Ratio)
	assert.Equal(t, 125000.0, p.Source.TargetValue)
	assert.Equal(t, 10000.0, p.StartingBalance)
	assert.Equal(t, 412.50, p.CashBalance)

	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "AAPL", p.Holdings[0].Symbol)
	assert.Equal(t, 20.5, p.Holdings[0].Shares)
	// Holdings are booked at plan prices, so the portfolio starts flat.
	assert.Equal(t, 228.50, p.Holdings[0].AverageCost)
}

func TestSyncFromPlanReplacesExisting(t *testing.T) {
	store := NewStore()
	store.Replace("u1", models.PhantomPortfolio{
		CashBalance: 9999,
		Holdings:    []models.PhantomHolding{{Symbol: "TSLA", Shares: 3, AverageCost: 250}},
	})

	p := store.SyncFromPlan("u1", replicate.Plan{
		TargetID:      "guru-7",
		UserValue:     5000,
		TargetValue:   80000,
		CashRemainder: 5000,
	})

	assert.Empty(t, p.Holdings)
	assert.Equal(t, 5000.0, p.CashBalance)
	assert.Equal(t, "guru-7", p.Source.TargetID)
}
