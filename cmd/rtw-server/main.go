package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rtw/rtw/internal/config"
	"github.com/rtw/rtw/internal/domain/clinicalstatus"
	"github.com/rtw/rtw/internal/domain/prediction"
	"github.com/rtw/rtw/internal/platform/auth"
	"github.com/rtw/rtw/internal/platform/db"
	"github.com/rtw/rtw/internal/platform/events"
	"github.com/rtw/rtw/internal/platform/jsoncodec"
	"github.com/rtw/rtw/internal/platform/middleware"
	"github.com/rtw/rtw/internal/platform/validate"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "rtw-server",
		Short:        "Return-to-work clinical decision and treatment planning engine",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(combineCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(predictCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// loadPredictor returns the default predictor, or one tuned from path.
func loadPredictor(path string) (*prediction.Predictor, error) {
	if path == "" {
		return prediction.Default(), nil
	}
	t, err := prediction.LoadTuning(path)
	if err != nil {
		return nil, err
	}
	return prediction.New(t), nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	predictor, err := loadPredictor(cfg.EngineTuningFile)
	if err != nil {
		logger.Error().Err(err).Str("file", cfg.EngineTuningFile).Msg("failed to load engine tuning")
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolOptions{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "rtw-server",
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	svc := clinicalstatus.NewService(
		clinicalstatus.NewCaseRepoPG(pool),
		clinicalstatus.NewCertificateRepoPG(pool),
		clinicalstatus.NewPlanRepoPG(pool),
		predictor,
		logger,
	)
	e := newServer(cfg, logger, pool, svc)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with the global middleware chain, the
// health endpoints and the /api/v1 routes.
func newServer(cfg *config.Config, logger zerolog.Logger, pinger db.Pinger, svc *clinicalstatus.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsoncodec.Serializer{}
	e.Validator = validate.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	// Auth middleware
	signingKey := []byte(cfg.AuthSigningKey)
	if cfg.IsDev() {
		logger.Warn().Msg("development auth enabled: unauthenticated requests run as admin")
		e.Use(auth.DevAuthMiddleware(signingKey))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: signingKey,
			Skipper:    auth.AuthSkipper,
		}))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pinger, 5*time.Second))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.Burst = cfg.RateLimitBurst
	}

	clinicalstatus.NewHandler(svc).RegisterRoutes(apiV1, middleware.RateLimit(rateLimitCfg))

	// Live plan events
	hub := events.NewHub(logger)
	svc.SetPublisher(hub)
	feed := apiV1.Group("", auth.RequireRole(auth.RoleCaseManager, auth.RoleClinician, auth.RoleAnalyst))
	events.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(feed)
	return e
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	openMigrator := func(cmd *cobra.Command) (*db.Migrator, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.MigrationsDir
		}
		pool, err := db.NewPool(cmd.Context(), db.PoolOptions{
			URL:             cfg.DatabaseURL,
			MaxConns:        2,
			ApplicationName: "rtw-migrate",
		})
		if err != nil {
			return nil, nil, err
		}
		return db.NewMigrator(pool, dir), pool.Close, nil
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeFn, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeFn, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
