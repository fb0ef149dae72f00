package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/models"
	"trade-coach/internal/phantom"
	"trade-coach/pkg/utils"
)

func newTradeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Execute phantom trades",
	}

	cmd.AddCommand(newTradeSideCmd(app, models.SideBuy))
	cmd.AddCommand(newTradeSideCmd(app, models.SideSell))

	return cmd
}

func newTradeSideCmd(app *App, side models.TradeSide) *cobra.Command {
	verb := strings.ToLower(string(side))
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <symbol> <shares>", verb),
		Short: fmt.Sprintf("%s%s shares in the phantom portfolio", strings.ToUpper(verb[:1]), verb[1:]),
		Example: fmt.Sprintf(`  coach trade %s AAPL 2.5
  coach trade %s AAPL 2.5 --price 230.10`, verb, verb),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			symbol := strings.ToUpper(args[0])
			shares, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return apperrors.NewValidationError("shares", args[1], "must be a number")
			}

			price, _ := cmd.Flags().GetFloat64("price")
			if price <= 0 {
				price, err = app.Catalog.PriceOf(symbol)
				if err != nil {
					output.Error("No price available for %s", symbol)
					return err
				}
			}

			restorePortfolio(ctx, app, userID)

			snapshot, err := app.Executor.ExecuteTrade(userID, phantom.TradeRequest{
				Symbol:      symbol,
				CompanyName: app.Catalog.NameOf(symbol),
				Side:        side,
				Shares:      shares,
				Price:       price,
			})
			if err != nil {
				output.Error("Trade rejected: %v", err)
				return err
			}

			persistPortfolio(ctx, app, userID)
			recordTrade(ctx, app, cmd, userID, symbol, side, shares, price)

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			output.Success("%s %s %s @ %s", side, utils.FormatShares(shares), symbol, utils.FormatUSD(price))
			renderPortfolio(output, app, snapshot)
			return nil
		},
	}

	cmd.Flags().Float64("price", 0, "execution price (default: catalog price)")
	cmd.Flags().Float64("take-profit", 0, "pre-commit a take-profit exit target")
	cmd.Flags().Float64("stop-loss", 0, "pre-commit a stop-loss exit target")

	return cmd
}

// recordTrade appends the executed phantom trade to the ledger and stores
// the pre-committed exit plan, if any, so discipline scoring can see both.
func recordTrade(ctx context.Context, app *App, cmd *cobra.Command, userID, symbol string, side models.TradeSide, shares, price float64) {
	if app.Store == nil {
		return
	}

	trade := &models.Trade{
		UserID:        userID,
		Symbol:        symbol,
		Side:          side,
		Shares:        shares,
		ExecutedPrice: price,
		TotalAmount:   shares * price,
		Timestamp:     time.Now(),
		Status:        models.StatusCompleted,
	}
	if err := app.Store.LogTrade(ctx, trade); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to record trade in ledger")
		return
	}

	takeProfit, _ := cmd.Flags().GetFloat64("take-profit")
	stopLoss, _ := cmd.Flags().GetFloat64("stop-loss")
	if takeProfit <= 0 && stopLoss <= 0 {
		return
	}

	plan := &models.TradePlan{TradeID: trade.ID}
	if takeProfit > 0 {
		plan.TakeProfit = &takeProfit
	}
	if stopLoss > 0 {
		plan.StopLoss = &stopLoss
	}
	if err := app.Store.SavePlan(ctx, userID, plan); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to record trade plan")
	}
}
