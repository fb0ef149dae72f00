package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trade ledger: append-only order fills
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		shares REAL NOT NULL,
		executed_price REAL NOT NULL,
		entry_price REAL,
		total_amount REAL NOT NULL,
		timestamp DATETIME NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id, timestamp);

	-- Pre-trade exit commitments, immutable once written
	CREATE TABLE IF NOT EXISTS trade_plans (
		trade_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		take_profit REAL,
		stop_loss REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_plans_user ON trade_plans(user_id);

	-- One phantom portfolio per user; holdings serialized as JSON
	CREATE TABLE IF NOT EXISTS phantom_portfolios (
		user_id TEXT PRIMARY KEY,
		starting_balance REAL NOT NULL,
		cash_balance REAL NOT NULL,
		holdings TEXT NOT NULL,
		last_updated_at DATETIME NOT NULL,
		source_type TEXT NOT NULL,
		target_id TEXT,
		ratio REAL,
		target_value REAL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LogTrade appends a trade to the ledger. A missing ID is minted.
func (s *SQLiteStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	var entryPrice interface{}
	if trade.EntryPrice > 0 {
		entryPrice = trade.EntryPrice
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (id, user_id, symbol, side, shares, executed_price, entry_price, total_amount, timestamp, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.UserID, trade.Symbol, string(trade.Side), trade.Shares,
		trade.ExecutedPrice, entryPrice, trade.TotalAmount, trade.Timestamp, string(trade.Status),
	)
	if err != nil {
		return apperrors.NewDataError("trade", trade.ID, "failed to log trade", err)
	}
	return nil
}

// ListCompletedTrades returns all completed trades for a user, oldest first.
func (s *SQLiteStore) ListCompletedTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, symbol, side, shares, executed_price, COALESCE(entry_price, 0), total_amount, timestamp, status
		FROM trades
		WHERE user_id = ? AND status = ?
		ORDER BY timestamp ASC`,
		userID, string(models.StatusCompleted),
	)
	if err != nil {
		return nil, apperrors.NewDataError("trade", userID, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var side, status string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &side, &t.Shares,
			&t.ExecutedPrice, &t.EntryPrice, &t.TotalAmount, &t.Timestamp, &status); err != nil {
			return nil, apperrors.NewDataError("trade", userID, "failed to scan trade", err)
		}
		t.Side = models.TradeSide(side)
		t.Status = models.TradeStatus(status)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SavePlan stores a pre-trade plan. Writing a plan for a trade that
// already has one is a no-op; plans are immutable.
func (s *SQLiteStore) SavePlan(ctx context.Context, userID string, plan *models.TradePlan) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_plans (trade_id, user_id, take_profit, stop_loss)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(trade_id) DO NOTHING`,
		plan.TradeID, userID, nullableFloat(plan.TakeProfit), nullableFloat(plan.StopLoss),
	)
	if err != nil {
		return apperrors.NewDataError("plan", plan.TradeID, "failed to save plan", err)
	}
	return nil
}

// GetPlan retrieves the plan for a trade.
func (s *SQLiteStore) GetPlan(ctx context.Context, tradeID string) (*models.TradePlan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT trade_id, take_profit, stop_loss, created_at
		FROM trade_plans WHERE trade_id = ?`, tradeID)

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrPlanNotFound, "trade %s", tradeID)
	}
	if err != nil {
		return nil, apperrors.NewDataError("plan", tradeID, "failed to query plan", err)
	}
	return plan, nil
}

// ListPlans returns all of a user's plans keyed by trade ID.
func (s *SQLiteStore) ListPlans(ctx context.Context, userID string) (map[string]models.TradePlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trade_id, take_profit, stop_loss, created_at
		FROM trade_plans WHERE user_id = ?`, userID)
	if err != nil {
		return nil, apperrors.NewDataError("plan", userID, "failed to query plans", err)
	}
	defer rows.Close()

	plans := make(map[string]models.TradePlan)
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, apperrors.NewDataError("plan", userID, "failed to scan plan", err)
		}
		plans[plan.TradeID] = *plan
	}
	return plans, rows.Err()
}

// SavePortfolio upserts the phantom portfolio for a user.
func (s *SQLiteStore) SavePortfolio(ctx context.Context, portfolio *models.PhantomPortfolio) error {
	holdings, err := json.Marshal(portfolio.Holdings)
	if err != nil {
		return apperrors.NewDataError("portfolio", portfolio.UserID, "failed to encode holdings", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO phantom_portfolios (user_id, starting_balance, cash_balance, holdings, last_updated_at, source_type, target_id, ratio, target_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			starting_balance = excluded.starting_balance,
			cash_balance = excluded.cash_balance,
			holdings = excluded.holdings,
			last_updated_at = excluded.last_updated_at,
			source_type = excluded.source_type,
			target_id = excluded.target_id,
			ratio = excluded.ratio,
			target_value = excluded.target_value,
			updated_at = CURRENT_TIMESTAMP`,
		portfolio.UserID, portfolio.StartingBalance, portfolio.CashBalance, string(holdings),
		portfolio.LastUpdatedAt, string(portfolio.Source.Type), portfolio.Source.TargetID,
		portfolio.Source.Ratio, portfolio.Source.TargetValue,
	)
	if err != nil {
		return apperrors.NewDataError("portfolio", portfolio.UserID, "failed to save portfolio", err)
	}
	return nil
}

// GetPortfolio retrieves the phantom portfolio for a user.
func (s *SQLiteStore) GetPortfolio(ctx context.Context, userID string) (*models.PhantomPortfolio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, starting_balance, cash_balance, holdings, last_updated_at, source_type, COALESCE(target_id, ''), COALESCE(ratio, 0), COALESCE(target_value, 0)
		FROM phantom_portfolios WHERE user_id = ?`, userID)

	var p models.PhantomPortfolio
	var holdings, sourceType string
	err := row.Scan(&p.UserID, &p.StartingBalance, &p.CashBalance, &holdings,
		&p.LastUpdatedAt, &sourceType, &p.Source.TargetID, &p.Source.Ratio, &p.Source.TargetValue)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrPortfolioNotFound, "user %s", userID)
	}
	if err != nil {
		return nil, apperrors.NewDataError("portfolio", userID, "failed to query portfolio", err)
	}

	p.Source.Type = models.PortfolioSource(sourceType)
	if err := json.Unmarshal([]byte(holdings), &p.Holdings); err != nil {
		return nil, apperrors.NewDataError("portfolio", userID, "failed to decode holdings", err)
	}
	return &p, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row rowScanner) (*models.TradePlan, error) {
	var plan models.TradePlan
	var takeProfit, stopLoss sql.NullFloat64
	if err := row.Scan(&plan.TradeID, &takeProfit, &stopLoss, &plan.CreatedAt); err != nil {
		return nil, err
	}
	if takeProfit.Valid {
		plan.TakeProfit = &takeProfit.Float64
	}
	if stopLoss.Valid {
		plan.StopLoss = &stopLoss.Float64
	}
	return &plan, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Ensure SQLiteStore implements DataStore
var _ DataStore = (*SQLiteStore)(nil)
