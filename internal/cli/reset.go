package cli

import (
	"context"

	"github.com/spf13/cobra"

	"trade-coach/pkg/utils"
)

func newResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the phantom portfolio to an all-cash state",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			balance, _ := cmd.Flags().GetFloat64("balance")
			if balance <= 0 {
				balance = app.Config.Trading.StartingBalance
			}

			snapshot, err := app.Phantom.Reset(userID, balance)
			if err != nil {
				return err
			}
			persistPortfolio(ctx, app, userID)

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			output.Success("Phantom portfolio reset to %s cash", utils.FormatUSD(balance))
			return nil
		},
	}

	cmd.Flags().Float64("balance", 0, "cash balance after reset (default: configured starting balance)")

	return cmd
}
