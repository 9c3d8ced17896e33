// Package httpapi exposes the push-subscription and notification endpoints
// over HTTP. Reminder CRUD itself stays behind the storage layer; this
// surface only covers what browsers and cron jobs need to reach remotely.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/keepintouch/internal/logging"
	"github.com/dmitrijs2005/keepintouch/internal/push"
	"github.com/dmitrijs2005/keepintouch/internal/server/checker"
	"github.com/dmitrijs2005/keepintouch/internal/server/scheduler"
	"github.com/dmitrijs2005/keepintouch/internal/server/subscriptions"
)

// Pusher is the slice of the push service the handlers need.
type Pusher interface {
	Configured() bool
	VAPIDPublicKey() string
	SendTestNotification(ctx context.Context, userID string) push.Result
}

// Scheduler is the slice of the dispatch scheduler the handlers need.
type Scheduler interface {
	TriggerCheck(ctx context.Context) (checker.Result, error)
	Status() scheduler.Status
}

type Server struct {
	subs   subscriptions.Repository
	pusher Pusher
	sched  Scheduler
	logger logging.Logger

	jwtSecret string
	// cronSecret, when set, must be presented as a bearer token on
	// POST /api/notifications/check. Empty leaves the endpoint open for
	// local cron setups.
	cronSecret string

	engine *gin.Engine
}

func NewServer(subs subscriptions.Repository, pusher Pusher, sched Scheduler,
	logger logging.Logger, jwtSecret, cronSecret string) *Server {
	s := &Server{
		subs:       subs,
		pusher:     pusher,
		sched:      sched,
		logger:     logger,
		jwtSecret:  jwtSecret,
		cronSecret: cronSecret,
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), s.requestLogger())

	api := e.Group("/api")

	pushGroup := api.Group("/push")
	pushGroup.GET("/subscribe", s.handleVAPIDKey)
	pushGroup.POST("/subscribe", s.requireUser(), s.handleSubscribe)
	pushGroup.DELETE("/subscribe", s.requireUser(), s.handleUnsubscribe)
	pushGroup.POST("/test", s.requireUser(), s.handleTestNotification)

	notif := api.Group("/notifications")
	notif.GET("/check", s.handleCheckInfo)
	notif.POST("/check", s.requireCronSecret(), s.handleCheck)
	notif.GET("/status", s.handleStatus)
	notif.POST("/status", s.handleTrigger)

	return e
}

// Handler exposes the router for http.Server and for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Info(ctx, "http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}
