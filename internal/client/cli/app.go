package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/config"
	"github.com/dmitrijs2005/starterkit/internal/client/services"
	"github.com/dmitrijs2005/starterkit/internal/filex"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config        *config.Config
	authService   services.AuthService
	avatarService services.AvatarService
	logger        logging.Logger
	closers       []io.Closer
	reader        *bufio.Reader
	out           io.Writer

	mu   sync.RWMutex
	mode Mode
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.FormatText, "warn", os.Stderr)
	if err != nil {
		return nil, err
	}

	dir, err := filex.EnsureSubdDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, client.DSN(dir))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, db, logger)
	if err := as.Restore(ctx); err != nil {
		logger.Warn(ctx, "saved session could not be loaded", "error", err)
	}

	return &App{
		config:        c,
		authService:   as,
		avatarService: services.NewAvatarService(apiClient, &http.Client{}, c.UploadTimeout, logger),
		logger:        logger,
		closers:       []io.Closer{closerFunc(func() error { return as.Close(ctx) }), db},
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
	}, nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "\nServer is %s\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.SignedIn()
}

// getStatus renders the prompt suffix, e.g. "(alice@example.com online)".
func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		if email, err := a.authService.Email(context.Background()); err == nil && email != "" {
			s = email + " "
		}
	}
	s += string(a.Mode())
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// Run blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to starterkit CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
