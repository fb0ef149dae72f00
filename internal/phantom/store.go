// Package phantom owns phantom portfolio state and its mutations: the
// independently tradable paper portfolios seeded from another trader's
// aggregate value or from a cash reset.
package phantom

import (
	"sync"
	"time"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
)

// Store holds exactly one phantom portfolio per user. All reads return
// defensive copies; mutations go through Replace, Reset or the executor
// and are serialized so each one either fully applies or not at all.
type Store struct {
	mu         sync.RWMutex
	portfolios map[string]*models.PhantomPortfolio

	now func() time.Time
}

// NewStore creates an empty phantom portfolio store.
func NewStore() *Store {
	return &Store{
		portfolios: make(map[string]*models.PhantomPortfolio),
		now:        time.Now,
	}
}

// Replace unconditionally overwrites the user's portfolio with next,
// stamping LastUpdatedAt. Used by sync and by state restored from
// persistence. Returns a snapshot of the stored state.
func (s *Store) Replace(userID string, next models.PhantomPortfolio) models.PhantomPortfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	next.UserID = userID
	next.LastUpdatedAt = s.now()
	stored := next.Clone()
	s.portfolios[userID] = &stored
	return stored.Clone()
}

// Restore loads previously persisted state into the store without
// re-stamping LastUpdatedAt.
func (s *Store) Restore(p models.PhantomPortfolio) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := p.Clone()
	s.portfolios[p.UserID] = &stored
}

// Reset replaces the user's portfolio with a fresh all-cash state.
func (s *Store) Reset(userID string, balance float64) (models.PhantomPortfolio, error) {
	if balance < 0 {
		return models.PhantomPortfolio{}, apperrors.NewValidationError("balance", balance, "must be non-negative")
	}
	return s.Replace(userID, newCashPortfolio(userID, balance)), nil
}

// Snapshot returns a defensive copy of the user's portfolio.
func (s *Store) Snapshot(userID string) (models.PhantomPortfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.portfolios[userID]
	if !ok {
		return models.PhantomPortfolio{}, apperrors.Wrapf(apperrors.ErrPortfolioNotFound, "user %s", userID)
	}
	return p.Clone(), nil
}

// mutate applies fn to a copy of the user's portfolio and commits the
// copy only if fn succeeds, so a failed mutation leaves no partial state.
// When no portfolio exists and init is non-nil, init seeds the state
// first.
func (s *Store) mutate(userID string, init func() models.PhantomPortfolio, fn func(*models.PhantomPortfolio) error) (models.PhantomPortfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.portfolios[userID]
	var working models.PhantomPortfolio
	if ok {
		working = current.Clone()
	} else {
		if init == nil {
			return models.PhantomPortfolio{}, apperrors.Wrapf(apperrors.ErrPortfolioNotFound, "user %s", userID)
		}
		working = init()
		working.UserID = userID
	}

	if err := fn(&working); err != nil {
		return models.PhantomPortfolio{}, err
	}

	working.LastUpdatedAt = s.now()
	s.portfolios[userID] = &working
	return working.Clone(), nil
}

// newCashPortfolio builds a fresh all-cash manual portfolio.
func newCashPortfolio(userID string, balance float64) models.PhantomPortfolio {
	return models.PhantomPortfolio{
		UserID:          userID,
		StartingBalance: balance,
		CashBalance:     balance,
		Holdings:        []models.PhantomHolding{},
		Source:          models.SourceInfo{Type: models.SourceManual},
	}
}
