// Package server wires the DrivenPass components together: configuration,
// logging, the PostgreSQL store and its migrations, the field cipher, object
// storage for vault exports and the REST API. It also handles graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/drivenpass/internal/cryptox"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/config"
	"github.com/dmitrijs2005/drivenpass/internal/server/metrics"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/drivenpass/internal/server/rest"
	"github.com/dmitrijs2005/drivenpass/internal/server/services"
	"github.com/dmitrijs2005/drivenpass/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

	newObjectStore = func(ctx context.Context, st storage.Settings) (*storage.S3Store, error) {
		return storage.NewS3Store(ctx, st)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logOut, c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	cipher, err := cryptox.NewFieldCipher(c.CryptoSecret)
	if err != nil {
		return nil, fmt.Errorf("field cipher init error: %w", err)
	}

	// interfaces stay nil when storage is disabled
	var (
		remover services.ExportRemover
		store   services.ObjectStore
	)
	if c.ExportEnabled() {
		s3, err := newObjectStore(ctx, storage.Settings{
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		remover, store = s3, s3
	} else {
		logger.Warn(ctx, "object storage is not configured, vault export disabled")
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	us, err := services.NewUserService(db, rm, tokens, c.BcryptCost, remover, logger.With("service", "users"))
	if err != nil {
		return nil, err
	}
	cs := services.NewCredentialService(db, rm, cipher)
	cards := services.NewCardService(db, rm, cipher)
	ns := services.NewNoteService(db, rm)
	es := services.NewExportService(us, cs, cards, ns, store, c.ExportURLValidityDuration, logger.With("service", "export"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := rest.NewRouter(rest.Deps{
		Users:           us,
		Credentials:     cs,
		Cards:           cards,
		Notes:           ns,
		Exports:         es,
		DB:              db,
		Metrics:         metrics.NewHTTPMetrics(reg),
		SignInPerMinute: c.SignInRatePerMinute,
		Log:             logger.With("module", "rest"),
	})

	return &App{config: c, logger: logger, db: db, handler: handler}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.handler, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a shutdown signal arrives or ctx is cancelled.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
