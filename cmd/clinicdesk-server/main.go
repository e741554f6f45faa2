package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
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

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/consult"
	"github.com/clinicdesk/clinicdesk/internal/domain/operator"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/remedy"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
	"github.com/clinicdesk/clinicdesk/internal/platform/middleware"
	"github.com/clinicdesk/clinicdesk/internal/platform/sheets"
	"github.com/clinicdesk/clinicdesk/internal/platform/state"
	"github.com/clinicdesk/clinicdesk/internal/platform/websocket"
)

const (
	version        = "0.1.0"
	tokenIssuer    = "clinicdesk"
	requestTimeout = 30 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicdesk-server",
		Short: "Clinic patient-record and prescription-tracking server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(stateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic desk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func syncCmd() *cobra.Command {
	var sheetURL string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the remedy catalog export and refresh the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(sheetURL)
		},
	}
	cmd.Flags().StringVar(&sheetURL, "url", "", "CSV export URL (defaults to the last-used, then the configured one)")
	return cmd
}

func stateCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the locally persisted desk state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "wipe the persisted state and start the desk over")
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	return logger
}

// resolveJWTSecret returns the token signing key. In development an unset
// JWT_SECRET gets a random per-process key, so tokens work locally but never
// survive a restart. Outside development config validation has already
// rejected an unset secret.
func resolveJWTSecret(cfg *config.Config) ([]byte, bool, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), false, nil
	}
	if !cfg.IsDev() {
		return nil, false, fmt.Errorf("JWT_SECRET is not configured")
	}
	raw := make([]byte, 32)
	if _, err := crypto_rand.Read(raw); err != nil {
		return nil, false, fmt.Errorf("generate dev signing key: %w", err)
	}
	return []byte(hex.EncodeToString(raw)), true, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	secret, generated, err := resolveJWTSecret(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve signing key")
	}
	if generated {
		logger.Warn().Msg("JWT_SECRET not set; using a random per-process key (dev only)")
	}

	// Local persisted state
	store, err := state.Open(cfg.StateDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open state store")
	}
	defer store.Close()

	// External collaborators
	bridgeClient, err := bridge.New(cfg.BridgeURL, cfg.HTTPTimeout())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid bridge url")
	}
	if !bridgeClient.Configured() {
		logger.Warn().Msg("BRIDGE_URL not set; patient lookups and saves will fail until it is configured")
	}
	fetcher := sheets.NewFetcher(cfg.HTTPTimeout())

	// Event hub
	hub := websocket.NewHub()
	wsHandler := websocket.NewHandler(hub)

	// Domain services
	patientSvc := patient.NewService(patient.NewBridgeRepo(bridgeClient))
	patientSvc.SetEventPublisher(hub)

	visitSvc := visit.NewService(visit.NewBridgeRepo(bridgeClient))
	visitSvc.SetEventPublisher(hub)

	remedyRepo, err := remedy.NewStateRepo(store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load remedy cache")
	}
	remedySvc := remedy.NewService(remedyRepo, fetcher, cfg.SheetURL)
	remedySvc.SetEventPublisher(hub)

	consultSvc := consult.NewService(consult.NewInMemoryStore(), patientSvc, visitSvc, remedySvc)

	operatorSvc := operator.NewService(operator.NewStateRepo(store), operator.TokenConfig{
		Secret: secret,
		Issuer: tokenIssuer,
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret: secret,
			Issuer: tokenIssuer,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")
	if cfg.RateLimitEnabled {
		rateLimitCfg := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}
		if rateLimitCfg.RequestsPerSecond <= 0 {
			rateLimitCfg = middleware.DefaultRateLimitConfig()
		}
		apiV1.Use(middleware.RateLimit(rateLimitCfg))
	}

	// Health check
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	// Routes
	operator.NewHandler(operatorSvc).RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)
	remedy.NewHandler(remedySvc).RegisterRoutes(apiV1)
	consult.NewHandler(consultSvc).RegisterRoutes(apiV1)
	wsHandler.RegisterRoutes(e.Group(""))

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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runSync(sheetURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	store, err := state.Open(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	repo, err := remedy.NewStateRepo(store)
	if err != nil {
		return fmt.Errorf("load remedy cache: %w", err)
	}
	svc := remedy.NewService(repo, sheets.NewFetcher(cfg.HTTPTimeout()), cfg.SheetURL)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout()+5*time.Second)
	defer cancel()

	result, err := svc.Sync(ctx, sheetURL)
	if err != nil {
		return fmt.Errorf("sync catalog: %w", err)
	}
	logger.Info().Int("remedies", result.Count).Str("url", result.URL).Msg("catalog synced")
	return nil
}

func runState(reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	store, err := state.Open(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	if reset {
		return store.Reset()
	}

	sheetURL, ok, err := store.GetString(state.SheetURLKey)
	if err != nil {
		return fmt.Errorf("read sheet url: %w", err)
	}
	if !ok {
		sheetURL = "(none)"
	}

	var cached []remedy.Remedy
	if _, err := store.GetJSON(state.RemedyCacheKey, &cached); err != nil {
		return fmt.Errorf("read remedy cache: %w", err)
	}

	operatorKeys, err := store.Keys(state.OperatorPrefix)
	if err != nil {
		return fmt.Errorf("list operators: %w", err)
	}

	fmt.Printf("state dir:       %s\n", cfg.StateDir)
	fmt.Printf("sheet url:       %s\n", sheetURL)
	fmt.Printf("cached remedies: %d\n", len(cached))
	fmt.Printf("operators:       %d\n", len(operatorKeys))
	for _, key := range operatorKeys {
		fmt.Printf("  %s\n", key[len(state.OperatorPrefix):])
	}
	return nil
}
