package cli

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
)

// importColumns is the required CSV header for trade-log imports. The
// take_profit and stop_loss columns are optional trailing columns.
var importColumns = []string{"symbol", "side", "shares", "price", "timestamp"}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import an external trade log into the ledger",
		Long: `Import completed trades from a CSV file so they count toward the
discipline score.

Expected header: symbol,side,shares,price,timestamp with optional
entry_price,take_profit,stop_loss columns. Timestamps are RFC 3339.
Rows with pre-committed exit targets also create a trade plan.`,
		Example: `  coach import trades.csv
  coach import trades.csv --user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			if app.Store == nil {
				output.Error("Store unavailable; cannot import trades")
				return apperrors.ErrDatabaseError
			}

			file, err := os.Open(args[0])
			if err != nil {
				return apperrors.Wrapf(err, "opening %s", args[0])
			}
			defer file.Close()

			imported, skipped, err := importTrades(ctx, app, userID, file)
			if err != nil {
				return err
			}

			app.Logger.Info().
				Str("user_id", userID).
				Int("imported", imported).
				Int("skipped", skipped).
				Msg("Trade log imported")

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": imported, "skipped": skipped})
			}

			output.Success("Imported %d trades (%d skipped)", imported, skipped)
			return nil
		},
	}

	return cmd
}

func importTrades(ctx context.Context, app *App, userID string, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "reading CSV header")
	}
	col, err := indexColumns(header)
	if err != nil {
		return 0, 0, err
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, apperrors.Wrapf(err, "line %d", line)
		}

		trade, plan, err := parseTradeRow(record, col, userID)
		if err != nil {
			app.Logger.Warn().Err(err).Int("line", line).Msg("Skipping malformed trade row")
			skipped++
			continue
		}

		if err := app.Store.LogTrade(ctx, trade); err != nil {
			return imported, skipped, apperrors.Wrapf(err, "line %d", line)
		}
		if plan != nil {
			plan.TradeID = trade.ID
			if err := app.Store.SavePlan(ctx, userID, plan); err != nil {
				return imported, skipped, apperrors.Wrapf(err, "line %d", line)
			}
		}
		imported++
	}

	return imported, skipped, nil
}

// indexColumns maps header names to column positions and verifies the
// required columns are present.
func indexColumns(header []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range importColumns {
		if _, ok := col[name]; !ok {
			return nil, apperrors.NewValidationError("header", strings.Join(header, ","), "missing column "+name)
		}
	}
	return col, nil
}

func parseTradeRow(record []string, col map[string]int, userID string) (*models.Trade, *models.TradePlan, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	side := models.TradeSide(strings.ToUpper(field("side")))
	if !side.IsEntry() && !side.IsExit() {
		return nil, nil, apperrors.NewValidationError("side", field("side"), "must be BUY, SELL, SHORT or COVER")
	}

	shares, err := strconv.ParseFloat(field("shares"), 64)
	if err != nil || shares <= 0 {
		return nil, nil, apperrors.NewValidationError("shares", field("shares"), "must be a positive number")
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil || price <= 0 {
		return nil, nil, apperrors.NewValidationError("price", field("price"), "must be a positive number")
	}
	timestamp, err := time.Parse(time.RFC3339, field("timestamp"))
	if err != nil {
		return nil, nil, apperrors.NewValidationError("timestamp", field("timestamp"), "must be RFC 3339")
	}

	symbol := strings.ToUpper(field("symbol"))
	if symbol == "" {
		return nil, nil, apperrors.NewValidationError("symbol", "", "must not be empty")
	}

	trade := &models.Trade{
		ID:            uuid.NewString(),
		UserID:        userID,
		Symbol:        symbol,
		Side:          side,
		Shares:        shares,
		ExecutedPrice: price,
		TotalAmount:   shares * price,
		Timestamp:     timestamp,
		Status:        models.StatusCompleted,
	}
	if v := field("entry_price"); v != "" {
		entryPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("entry_price", v, "must be a number")
		}
		trade.EntryPrice = entryPrice
	}

	var plan *models.TradePlan
	if v := field("take_profit"); v != "" {
		takeProfit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("take_profit", v, "must be a number")
		}
		plan = &models.TradePlan{TakeProfit: &takeProfit}
	}
	if v := field("stop_loss"); v != "" {
		stopLoss, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("stop_loss", v, "must be a number")
		}
		if plan == nil {
			plan = &models.TradePlan{}
		}
		plan.StopLoss = &stopLoss
	}

	return trade, plan, nil
}
