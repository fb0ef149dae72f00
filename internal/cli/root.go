package cli

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-coach/internal/config"
	"trade-coach/internal/discipline"
	apperrors "trade-coach/internal/errors"
	"trade-coach/internal/ledger"
	"trade-coach/internal/logging"
	"trade-coach/internal/phantom"
	"trade-coach/internal/replicate"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     ledger.DataStore
	Catalog   *ledger.StaticCatalog
	Phantom   *phantom.Store
	Executor  *phantom.Executor
	Planner   *replicate.Planner
	Scorer    *discipline.Scorer
	Valuation ledger.AccountValuation
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: ledger.NewStaticCatalog(),
		Phantom: phantom.NewStore(),
	}

	app.Executor = phantom.NewExecutor(app.Phantom, cfg.Trading.StartingBalance, logger)
	app.Planner = replicate.NewPlannerWithParams(app.Catalog, replicate.ParamsFromConfig(cfg.Replication))
	app.Scorer = discipline.NewScorerWithParams(discipline.ParamsFromConfig(cfg.Discipline))

	dbPath := filepath.Join(config.DefaultConfigDir(), "coach.db")
	dataStore, err := ledger.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, state will not persist")
	} else {
		app.Store = dataStore
		app.Valuation = ledger.NewValuation(dataStore, app.Catalog)
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "coach",
		Short: "Trade Coach - trading behavior analytics for paper portfolios",
		Long: `Trade Coach analyzes a paper-trading history for discipline and lets you
shadow another trader with an independently tradable phantom portfolio.

The discipline score (0-100) reflects adherence to pre-committed exit
plans, absence of rapid loss-driven re-entries and avoidance of oversized
positions. The phantom portfolio scales a target trader's aggregate value
into your own capital and then diverges through your own trades.

Use 'coach help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-coach)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("user", "u", "local", "user account to operate on")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScoreCmd(app))
	rootCmd.AddCommand(newSyncCmd(app))
	rootCmd.AddCommand(newTradeCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newResetCmd(app))
	rootCmd.AddCommand(newImportCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Trade Coach v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Trading Configuration")
	output.Printf("  Starting Balance:  %.2f\n", cfg.Trading.StartingBalance)
	output.Println()

	output.Bold("Discipline Scoring")
	output.Printf("  Revenge Window:    %d ms\n", cfg.Discipline.RevengeWindowMS)
	output.Printf("  Leverage Fraction: %.2f\n", cfg.Discipline.OverLeverageFraction)
	output.Printf("  Adherence Tol:     %.3f\n", cfg.Discipline.AdherenceTolerance)
	output.Println()

	output.Bold("Replication")
	output.Printf("  Holdings Count:    %d\n", cfg.Replication.HoldingsCount)
	output.Printf("  Basket Version:    %s\n", cfg.Replication.BasketVersion)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Log.Level)

	return nil
}

// restorePortfolio loads a persisted phantom portfolio into the in-memory
// store. Missing state is not an error; the user simply has no portfolio
// yet.
func restorePortfolio(ctx context.Context, app *App, userID string) {
	if app.Store == nil {
		return
	}
	portfolio, err := app.Store.GetPortfolio(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrPortfolioNotFound) {
			app.Logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to restore portfolio")
		}
		return
	}
	app.Phantom.Restore(*portfolio)
}

// persistPortfolio writes the current phantom state back to the store.
func persistPortfolio(ctx context.Context, app *App, userID string) {
	if app.Store == nil {
		return
	}
	snapshot, err := app.Phantom.Snapshot(userID)
	if err != nil {
		return
	}
	if err := app.Store.SavePortfolio(ctx, &snapshot); err != nil {
		app.Logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to persist portfolio")
	}
}
