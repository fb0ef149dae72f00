package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"trade-coach/internal/models"
	"trade-coach/pkg/utils"
)

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show the phantom portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := context.Background()
			userID, _ := cmd.Flags().GetString("user")

			restorePortfolio(ctx, app, userID)

			snapshot, err := app.Phantom.Snapshot(userID)
			if err != nil {
				output.Warning("No phantom portfolio yet. Run 'coach sync' or 'coach trade buy' first.")
				return nil
			}

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			renderPortfolio(output, app, snapshot)
			return nil
		},
	}
}

// catalogPrices returns the current catalog price map.
func catalogPrices(app *App) map[string]float64 {
	prices := make(map[string]float64)
	for _, inst := range app.Catalog.Universe() {
		prices[inst.Symbol] = inst.Price
	}
	return prices
}

func renderPortfolio(output *Output, app *App, p models.PhantomPortfolio) {
	prices := catalogPrices(app)

	output.Println()
	output.Bold("Phantom Portfolio")
	output.Printf("  Source:         %s", p.Source.Type)
	if p.Source.Type == models.SourceCopy {
		output.Printf(" (following %s, ratio %.6f)", p.Source.TargetID, p.Source.Ratio)
	}
	output.Println()
	output.Printf("  Cash:           %s\n", utils.FormatUSD(p.CashBalance))
	output.Printf("  Invested:       %s\n", utils.FormatUSD(p.InvestedValue()))
	output.Printf("  Total Value:    %s\n", utils.FormatUSD(p.MarketValue(prices)))
	output.Printf("  Last Updated:   %s\n", p.LastUpdatedAt.Format(time.RFC3339))
	output.Println()

	if len(p.Holdings) == 0 {
		output.Dim("No holdings")
		return
	}

	table := NewTable(output, "Symbol", "Company", "Shares", "Avg Cost", "Price", "Value", "P&L")
	for _, h := range p.Holdings {
		price, ok := prices[h.Symbol]
		if !ok || price <= 0 {
			price = h.AverageCost
		}
		value := h.Shares * price
		pnl := value - h.Shares*h.AverageCost
		table.AddRow(
			h.Symbol,
			h.CompanyName,
			utils.FormatShares(h.Shares),
			utils.FormatUSD(h.AverageCost),
			utils.FormatUSD(price),
			utils.FormatUSD(value),
			utils.FormatPnL(pnl),
		)
	}
	table.Render()
}
