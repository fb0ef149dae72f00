package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/logging"
)

func newScoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the discipline score from the trade history",
		Long: `Compute a 0-100 discipline score over the user's completed trades.

The score penalizes exits that missed their pre-committed take-profit or
stop-loss targets, new positions opened within a minute of a losing exit
(revenge trading), and entries sized beyond half of account value
(over-leverage). A history with no plans at all is scored neutrally.`,
		Example: `  coach score
  coach score --user alice --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			if app.Store == nil {
				output.Error("Store unavailable; cannot load trade history")
				return apperrors.ErrDatabaseError
			}

			trades, err := app.Store.ListCompletedTrades(ctx, userID)
			if err != nil {
				return apperrors.Wrap(err, "loading trades")
			}
			plans, err := app.Store.ListPlans(ctx, userID)
			if err != nil {
				return apperrors.Wrap(err, "loading plans")
			}

			startingBalance := app.Config.Trading.StartingBalance
			currentValue, err := app.Valuation.CurrentValue(ctx, userID)
			if err != nil {
				// No portfolio yet: value the account at its starting balance.
				currentValue = startingBalance
			}

			breakdown := app.Scorer.Score(trades, plans, startingBalance, currentValue)
			logging.LogScore(app.Logger, userID, breakdown.Score, breakdown.PlannedExits, breakdown.RevengeTrades)

			if output.IsJSON() {
				return output.JSON(breakdown)
			}

			scoreText := fmt.Sprintf("Discipline Score: %d / 100", breakdown.Score)
			output.Println(output.ColoredString(output.ScoreColor(breakdown.Score), scoreText))
			output.Println()

			table := NewTable(output, "Metric", "Value")
			table.AddRow("Trades scored", fmt.Sprintf("%d", breakdown.TradesScored))
			table.AddRow("Planned exits", fmt.Sprintf("%d", breakdown.PlannedExits))
			table.AddRow("Adhered exits", fmt.Sprintf("%d", breakdown.AdheredExits))
			table.AddRow("Plan adherence", fmt.Sprintf("%.0f%%", breakdown.PlanAdherenceRate*100))
			table.AddRow("Revenge trades", fmt.Sprintf("%d", breakdown.RevengeTrades))
			table.AddRow("Over-leverage entries", fmt.Sprintf("%d", breakdown.OverLeverageTrades))
			table.AddRow("Plan miss penalty", fmt.Sprintf("-%d", breakdown.PlanMissPenalty))
			table.AddRow("Revenge penalty", fmt.Sprintf("-%d", breakdown.RevengePenalty))
			table.AddRow("Leverage penalty", fmt.Sprintf("-%d", breakdown.LeveragePenalty))
			table.Render()

			return nil
		},
	}

	return cmd
}
