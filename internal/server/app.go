// Package server initializes and runs the application server: database and
// migrations, push service, reminder scheduler, and the HTTP API, with
// graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/push"
	"github.com/dmitrijs2005/keepintouch/internal/server/checker"
	"github.com/dmitrijs2005/keepintouch/internal/server/config"
	"github.com/dmitrijs2005/keepintouch/internal/server/db"
	"github.com/dmitrijs2005/keepintouch/internal/server/httpapi"
	"github.com/dmitrijs2005/keepintouch/internal/server/scheduler"
)

type App struct {
	config *config.Config
	logger logging.Logger
	dbm    db.RepositoryManager
	pusher *push.Service
	sched  *scheduler.Scheduler
	api    *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	dbm, err := db.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	vapid := push.VAPIDConfig{
		PublicKey:  c.VAPIDPublicKey,
		PrivateKey: c.VAPIDPrivateKey,
		Subject:    c.VAPIDSubject,
	}
	pusher := push.NewService(vapid, push.NewWebPushSender(vapid), dbm.Subscriptions(), logger)
	chk := checker.New(dbm.Store(), dbm.Subscriptions(), pusher, logger)
	sched := scheduler.New(chk, logger, c.CheckInterval, vapid.Configured())
	api := httpapi.NewServer(dbm.Subscriptions(), pusher, sched, logger, c.SecretKey, c.CronSecret)

	return &App{
		config: c,
		logger: logger,
		dbm:    dbm,
		pusher: pusher,
		sched:  sched,
		api:    api,
	}, nil
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.EnableScheduler {
		if err := app.sched.Start(ctx); err != nil {
			app.logger.Warn(ctx, "scheduler not started", "error", err)
		}
		defer app.sched.Stop(context.Background())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx, app.config.EndpointAddr); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()
	wg.Wait()

	if err := app.dbm.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
