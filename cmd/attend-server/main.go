package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/attendsim/attendsim/internal/config"
	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/deployment"
	"github.com/attendsim/attendsim/internal/domain/eventlog"
	"github.com/attendsim/attendsim/internal/domain/simulation"
	"github.com/attendsim/attendsim/internal/domain/strategy"
	"github.com/attendsim/attendsim/internal/domain/summary"
	"github.com/attendsim/attendsim/internal/platform/middleware"
	"github.com/attendsim/attendsim/internal/platform/risk"
	"github.com/attendsim/attendsim/internal/platform/rng"
	"github.com/attendsim/attendsim/internal/platform/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attend-server",
		Short: "Clinic attendance simulation API server",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the simulation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// seedCmd generates the demo cohort and prints it as JSON, without
// starting a server. Useful for inspecting what a fresh run begins with.
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the demo cohort as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			start, err := cfg.ResolvedStartDate()
			if err != nil {
				return err
			}

			src := newSource(cfg)
			provider := risk.NewProvider(cfg.RiskEndpointURL)
			appts := appointment.NewMemRepo()
			strats := strategy.NewMemRepo()
			logs := eventlog.NewMemRepo()
			engine := simulation.NewEngine(start, appts, strats, logs, src, logger)

			ctx := context.Background()
			if err := seed.Demo(ctx, appts, strats, engine, provider, src, logger); err != nil {
				return err
			}

			all, err := appts.ListAll(ctx)
			if err != nil {
				return err
			}
			strategies, err := strats.List(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"startDateISO": engine.StartDateISO(),
				"strategies":   strategies,
				"appointments": all,
			})
		},
	}
}

func newSource(cfg *config.Config) rng.Source {
	if cfg.RandomSeed != 0 {
		return rng.NewSeeded(cfg.RandomSeed)
	}
	return rng.New()
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	start, err := cfg.ResolvedStartDate()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid start date")
	}

	// Simulation state
	ctx := context.Background()
	src := newSource(cfg)
	provider := risk.NewProvider(cfg.RiskEndpointURL)
	apptRepo := appointment.NewMemRepo()
	strategyRepo := strategy.NewMemRepo()
	logRepo := eventlog.NewMemRepo()
	deployRepo := deployment.NewMemRepo()

	engine := simulation.NewEngine(start, apptRepo, strategyRepo, logRepo, src, logger)
	logger.Info().
		Str("start_date", engine.StartDateISO()).
		Int64("seed", cfg.RandomSeed).
		Msg("simulation initialized")

	if cfg.SeedDemoData {
		if err := seed.Demo(ctx, apptRepo, strategyRepo, engine, provider, src, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// Services
	apptSvc := appointment.NewService(apptRepo)
	strategySvc := strategy.NewService(strategyRepo)
	logSvc := eventlog.NewService(logRepo, logger)
	deploySvc := deployment.NewService(deployRepo, apptRepo, strategyRepo, engine, src, logger)
	summarySvc := summary.NewService(apptRepo, strategyRepo, engine)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	// API group
	api := e.Group("/api")
	simulation.NewHandler(engine, provider).RegisterRoutes(api)
	appointment.NewHandler(apptSvc, engine).RegisterRoutes(api)
	strategy.NewHandler(strategySvc).RegisterRoutes(api)
	deployment.NewHandler(deploySvc).RegisterRoutes(api)
	eventlog.NewHandler(logSvc, engine).RegisterRoutes(api)
	summary.NewHandler(summarySvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
