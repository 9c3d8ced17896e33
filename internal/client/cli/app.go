// Package cli implements the interactive KeepInTouch client: a REPL over the
// storage manager, working against the local data file until the user logs
// in and switches to the shared backend.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/keepintouch/internal/auth"
	"github.com/dmitrijs2005/keepintouch/internal/client/config"
	"github.com/dmitrijs2005/keepintouch/internal/client/notify"
	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/storage"
	"github.com/dmitrijs2005/keepintouch/internal/storage/localstore"
	"github.com/dmitrijs2005/keepintouch/internal/storage/pgstore"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *storage.Manager
	db      *sql.DB
	poller  *notify.Poller
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	local := localstore.New(c.DatabasePath)

	var (
		remote storage.RemoteStore
		db     *sql.DB
	)
	if c.DatabaseDSN != "" {
		var err error
		db, err = sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		remote = pgstore.New(db)
	}

	manager := storage.NewManager(local, remote)

	app := &App{
		config:  c,
		logger:  logger,
		manager: manager,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
	}
	app.poller = notify.NewPoller(manager, notify.NewTerminalNotifier(os.Stdout),
		logger, c.NotifyInterval, app.opCtx)
	return app, nil
}

// opCtx decorates ctx with the acting user once the client has switched to
// the remote store. Local-store calls ignore the extra value.
func (a *App) opCtx(ctx context.Context) context.Context {
	if a.manager.IsAuthenticated() {
		return auth.WithUserID(ctx, a.config.UserID)
	}
	return ctx
}

func (a *App) loggedIn() bool {
	return a.manager.IsAuthenticated()
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.poller.Start(ctx)

	a.Root(ctx)

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(ctx, "db close error", "error", err)
		}
	}
}
