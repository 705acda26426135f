// Package server wires the StreamForge components together: storage,
// secrets, email, object storage, the REST and gRPC endpoints and the
// background sweeper.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/auth"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/httpapi"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/notify"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/memory"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	gs "github.com/Silas-Hakuzwimana/streamforge/internal/server/grpc"
)

// openDB is a seam for sql.Open.
var openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

type App struct {
	config *config.Config
	logger logging.Logger

	db         *sql.DB
	redis      redis.UniversalClient
	dispatcher *notify.Dispatcher
	sweeper    *services.Sweeper

	http *httpapi.Server
	grpc *gs.GRPCServer
}

// NewApp connects the backing services and builds both endpoints. Nothing
// listens until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	rm, err := app.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer(c.JWTSecret, c.SessionTTL, auth.WithIssuer(c.JWTIssuer))
	if err != nil {
		return nil, fmt.Errorf("issuer init error: %w", err)
	}

	notifier, err := app.initNotifier()
	if err != nil {
		return nil, err
	}

	store, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithLogger(logger)}

	otps := services.NewOTPManager(app.db, rm, c.OTPTTL, opts...)
	resets := services.NewResetTokenManager(app.db, rm, c.ResetTTL, opts...)
	app.dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
		BufferSize: 256,
		Timeout:    c.NotifyTimeout,
	}, logger)
	app.sweeper = services.NewSweeper(otps, resets, c.SweepInterval, logger)

	authService := services.NewAuthService(services.AuthDeps{
		DB:          app.db,
		Repos:       rm,
		OTPs:        otps,
		ResetTokens: resets,
		Issuer:      issuer,
		Notifier:    notifier,
		Dispatcher:  app.dispatcher,
	}, c, opts...)

	if c.HTTPAddr != "" {
		app.http = httpapi.New(httpapi.Services{
			Auth:    authService,
			Profile: services.NewProfileService(app.db, rm, store, c, opts...),
			Media:   services.NewMediaService(app.db, rm, store, c, opts...),
		}, c, logger)
	}
	if c.GRPCAddr != "" {
		app.grpc = gs.NewGRPCServer(c.GRPCAddr, logger, authService)
	}

	return app, nil
}

func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	c := app.config

	if c.InMemory {
		app.logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		return repomanager.NewInMemoryRepositoryManager(memory.NewStore()), nil
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	app.db = db

	pctx, cancel := context.WithTimeout(ctx, c.RepoTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	var opts []repomanager.Option
	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		app.redis = client
		if err := client.Ping(pctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		opts = append(opts, repomanager.WithRedisOTPs(client))
	}

	rm := repomanager.NewPostgresRepositoryManager(opts...)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, nil
}

func (app *App) initNotifier() (notify.Notifier, error) {
	c := app.config
	if c.SMTPUser == "" {
		app.logger.Warn(context.Background(), "smtp user not set, emails are logged and not delivered")
		return notify.NewLogNotifier(app.logger), nil
	}
	n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:        c.SMTPHost,
		Port:        c.SMTPPort,
		Username:    c.SMTPUser,
		Password:    c.SMTPPassword,
		From:        c.MailFrom,
		Insecure:    !c.Production,
		Timeout:     c.NotifyTimeout,
		OTPTTL:      c.OTPTTL,
		ResetTTL:    c.ResetTTL,
		FrontendURL: c.FrontendURL,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp init error: %w", err)
	}
	return n, nil
}

func (app *App) initStorage(ctx context.Context) (storage.Store, error) {
	c := app.config
	if c.S3AccessKey == "" && c.S3BaseEndpoint == "" {
		app.logger.Warn(ctx, "object storage not configured, uploads are kept in memory")
		return storage.NewMemory(), nil
	}
	s, err := storage.NewS3(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return s, nil
}

// Run serves both endpoints and the sweeper until ctx is cancelled or an
// endpoint fails. The first failure is returned.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	fail := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	if app.grpc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.grpc.Run(ctx); err != nil {
				app.logger.Error(ctx, "grpc server failed", "error", err)
				fail(fmt.Errorf("grpc: %w", err))
			}
		}()
	}

	if app.http != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
			if err := app.http.Listen(app.config.HTTPAddr); err != nil {
				app.logger.Error(ctx, "http server failed", "error", err)
				fail(fmt.Errorf("http: %w", err))
			}
		}()
		go func() {
			defer wg.Done()
			<-ctx.Done()
			app.logger.Info(ctx, "Stopping HTTP server...")
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
			defer cancel()
			if err := app.http.Shutdown(sctx); err != nil {
				app.logger.Error(ctx, "http shutdown failed", "error", err)
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Close flushes queued emails and releases the database and Redis
// connections. It is safe to call on a partly built App.
func (app *App) Close() error {
	app.dispatcher.Close()

	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) Logger() logging.Logger { return app.logger }
