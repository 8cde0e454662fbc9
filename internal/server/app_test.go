package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/cache"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(mod func(c *config.Config)) *App {
	c := &config.Config{}
	c.LoadDefaults()
	if mod != nil {
		mod(c)
	}
	return &App{config: c, logger: logging.Nop()}
}

func TestNewMailer_LogsWithoutSMTP(t *testing.T) {
	app := testApp(nil)
	_, ok := app.newMailer().(*mail.LogMailer)
	assert.True(t, ok)
}

func TestNewMailer_SMTP(t *testing.T) {
	app := testApp(func(c *config.Config) { c.SMTPAddr = "smtp.test:587" })
	_, ok := app.newMailer().(*mail.SMTPMailer)
	assert.True(t, ok)
}

func TestNewCache_MemoryByDefault(t *testing.T) {
	app := testApp(nil)
	c, err := app.newCache(context.Background())
	require.NoError(t, err)
	_, ok := c.(*cache.Memory)
	assert.True(t, ok)
	assert.Empty(t, app.closers)
}

func TestClose_ReverseOrder(t *testing.T) {
	app := testApp(nil)
	var order []int
	app.closers = append(app.closers,
		closerFunc(func() error { order = append(order, 1); return nil }),
		closerFunc(func() error { order = append(order, 2); return errors.New("boom") }),
	)

	app.close(context.Background())
	assert.Equal(t, []int{2, 1}, order)
	assert.Empty(t, app.closers)
}

func TestNewApp_DBOpenError(t *testing.T) {
	old := openDB
	t.Cleanup(func() { openDB = old })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("no driver") }

	c := &config.Config{}
	c.LoadDefaults()
	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogLevel = "loud"
	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger init error")
}
