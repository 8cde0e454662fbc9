// Package server wires the starterkit backend together: database and
// migrations, mail, cache, object storage, and the HTTP and gRPC servers,
// and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/cache"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/httpapi"
	"github.com/dmitrijs2005/starterkit/internal/server/mail"
	"github.com/dmitrijs2005/starterkit/internal/server/metrics"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/dmitrijs2005/starterkit/internal/server/web"

	gs "github.com/dmitrijs2005/starterkit/internal/server/grpc"
)

const urlCachePrefix = "starterkit:avatar-url:"

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	metrics       *metrics.Metrics
	userService   *services.UserService
	avatarService *services.AvatarService
	closers       []io.Closer
}

// closerFunc adapts a close function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, metrics: metrics.New()}
	if z, ok := logger.(*logging.ZapLogger); ok {
		// stdout sync errors are expected on some platforms
		app.closers = append(app.closers, closerFunc(func() error { _ = z.Sync(); return nil }))
	}
	app.closers = append(app.closers, db)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	urls, err := app.newCache(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	storeCfg, err := objectstore.LoadConfig()
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("object store config error: %w", err)
	}
	store := objectstore.New(storeCfg, logger)

	app.userService = services.NewUserService(db, rm, auth.NewArgon2(), app.newMailer(), logger, c)
	app.avatarService = services.NewAvatarService(db, rm, store, urls, c.AvatarURLCacheTTL, logger)

	return app, nil
}

func (app *App) newCache(ctx context.Context) (cache.Cache, error) {
	if app.config.RedisAddr == "" {
		return cache.NewMemory(0), nil
	}
	r, closeFn, err := cache.NewRedisFromAddr(ctx, app.config.RedisAddr, urlCachePrefix)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, closerFunc(closeFn))
	return r, nil
}

// newMailer logs links instead of sending them when no SMTP server is set.
func (app *App) newMailer() mail.Mailer {
	if app.config.SMTPAddr == "" {
		app.logger.Warn(context.Background(), "SMTP is not configured; emails are logged instead of sent")
		return mail.NewLogMailer(app.logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Addr:     app.config.SMTPAddr,
		From:     app.config.SMTPFrom,
		Username: app.config.SMTPUsername,
		Password: app.config.SMTPPassword,
	})
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.GRPCAddress, app.logger, app.userService, app.avatarService, app.metrics, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	pages, err := web.NewPages(app.avatarService, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpapi.NewServer(app.config, app.logger, app.userService, app.avatarService, app.metrics)
	if err := s.Run(ctx, s.Handler(pages.Register)); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
