package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/logging"
	"trade-coach/internal/replicate"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <target-id> <target-value>",
		Short: "Sync the phantom portfolio to shadow a target trader",
		Long: `Replace the phantom portfolio with a basket that shadows a target
trader's aggregate value, scaled to your own capital.

The basket is derived deterministically from the target's identity, so
re-syncing to the same target reproduces the same holdings. Your capital
defaults to the current phantom account value (or the configured starting
balance when no portfolio exists yet).`,
		Example: `  coach sync guru-42 125000
  coach sync guru-42 125000 --value 8000 --count 6`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			targetID := args[0]
			targetValue, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return apperrors.NewValidationError("target-value", args[1], "must be a number")
			}

			restorePortfolio(ctx, app, userID)

			userValue, _ := cmd.Flags().GetFloat64("value")
			if userValue <= 0 {
				if snapshot, err := app.Phantom.Snapshot(userID); err == nil {
					userValue = snapshot.MarketValue(catalogPrices(app))
				} else {
					userValue = app.Config.Trading.StartingBalance
				}
			}
			count, _ := cmd.Flags().GetInt("count")

			plan, err := app.Planner.Plan(replicate.Request{
				TargetID:      targetID,
				TargetValue:   targetValue,
				UserValue:     userValue,
				HoldingsCount: count,
			})
			if err != nil {
				return err
			}

			snapshot := app.Phantom.SyncFromPlan(userID, plan)
			persistPortfolio(ctx, app, userID)
			logging.LogSync(app.Logger, userID, targetID, plan.Ratio, len(plan.Holdings))

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			output.Success("Phantom portfolio synced to %s (ratio %.6f)", targetID, plan.Ratio)
			renderPortfolio(output, app, snapshot)
			return nil
		},
	}

	cmd.Flags().Float64("value", 0, "capital to allocate (default: current account value)")
	cmd.Flags().Int("count", 0, "basket size (default: configured holdings_count)")

	return cmd
}
