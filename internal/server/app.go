// Package server initializes and runs the accounts service.
// It opens storage, applies migrations, wires the services into the HTTP
// API and the gRPC health server, and shuts both down on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/httpapi"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/memory"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	"github.com/dmitrijs2005/accounts/internal/server/session"
	"golang.org/x/crypto/bcrypt"

	gs "github.com/dmitrijs2005/accounts/internal/server/grpc"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	shutdownTimeout = 10 * time.Second
	probeInterval   = 5 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *http.Server
	grpcServer *gs.GRPCServer

	// bootstrapKey is the primary token created for the in-memory store.
	bootstrapKey string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	sessions, err := app.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(c.SecretKey, c.SigningAlgorithm, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("token service init error: %w", err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	keys := services.NewAPIKeyService(sessions, logger)
	if app.db == nil {
		pt, err := keys.Create(ctx, "bootstrap")
		if err != nil {
			return nil, fmt.Errorf("bootstrap key error: %w", err)
		}
		app.bootstrapKey = pt.Token
		logger.Warn(ctx, "in-memory store: data is lost on exit", "api_key", pt.Token)
	}

	deps := httpapi.Deps{
		Users:          services.NewUserService(sessions, hasher, tokens, logger),
		Auth:           services.NewAuthService(sessions, hasher, tokens, logger),
		Keys:           keys,
		Log:            logger,
		MaxBodyBytes:   c.MaxBodyBytes,
		TokenRateLimit: c.TokenRateLimit,
		TokenRateBurst: c.TokenRateBurst,
	}
	var grpcOpts []gs.Option
	if app.db != nil {
		deps.Ready = app.db
		grpcOpts = append(grpcOpts, gs.WithProbe(app.db, probeInterval))
	}

	api, err := httpapi.New(deps)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("http api init error: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, grpcOpts...)

	return app, nil
}

// openStorage returns the session factory for the configured DSN. The
// in-memory store is used for memory.DSN; anything else goes to PostgreSQL.
func (app *App) openStorage(ctx context.Context) (services.Sessions, error) {
	if app.config.DatabaseDSN == memory.DSN {
		app.logger.Info(ctx, "using in-memory store")
		return memory.NewSessions(memory.NewStore()), nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	repos := repomanager.NewPostgresRepositoryManager()
	if app.config.RunMigrations {
		if err := repos.RunMigrations(ctx, db); err != nil {
			app.close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		app.logger.Info(ctx, "migrations applied")
	}

	return session.NewFactory(db, repos), nil
}

func (app *App) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.db = nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting HTTP server", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then shuts both servers down and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	app.logger.Info(context.Background(), "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}
