package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/database"
	"stac-stocktake/core/loader"
	"stac-stocktake/core/logger"
	"stac-stocktake/core/middleware/auth"
	"stac-stocktake/core/middleware/rayid"
	"stac-stocktake/feature/stocktake"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd serves run state over HTTP.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Serve stocktake run status over HTTP",
	Long:  `Starts the HTTP server exposing the state of the latest stocktake run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := mustSetup()
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Checkpoint database connection failed", zap.Error(err))
		}
		store := checkpoint.NewGormStore(db)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 4. Load Features
		mgr := loader.NewManager()
		mgr.Register(stocktake.NewFeature(store, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
