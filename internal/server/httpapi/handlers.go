package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/keepintouch/internal/models"
)

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256DH string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
	UserAgent string `json:"userAgent"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// handleVAPIDKey hands the browser the public key it needs to subscribe.
func (s *Server) handleVAPIDKey(c *gin.Context) {
	if !s.pusher.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": s.pusher.VAPIDPublicKey()})
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	endpoint := strings.TrimSpace(req.Subscription.Endpoint)
	if endpoint == "" || req.Subscription.Keys.P256DH == "" || req.Subscription.Keys.Auth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys are required"})
		return
	}

	sub, err := s.subs.Upsert(c.Request.Context(), &models.PushSubscription{
		UserID:    userID(c),
		Endpoint:  endpoint,
		P256dhKey: req.Subscription.Keys.P256DH,
		AuthKey:   req.Subscription.Keys.Auth,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to save subscription", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": sub.ID})
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	n, err := s.subs.Deactivate(c.Request.Context(), userID(c), endpoint)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to remove subscription", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove subscription"})
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleTestNotification(c *gin.Context) {
	res := s.pusher.SendTestNotification(c.Request.Context(), userID(c))
	status := http.StatusOK
	if res.Success == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"success": res.Success,
		"failed":  res.Failed,
		"errors":  res.Errors,
	})
}

// handleCheckInfo describes the check endpoint for anyone probing it with GET.
func (s *Server) handleCheckInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"description": "POST to run a reminder notification check",
		"authorization": "Bearer token required when a cron secret is configured",
	})
}

// handleCheck runs one dispatch pass synchronously and reports its counters.
func (s *Server) handleCheck(c *gin.Context) {
	res, err := s.sched.TriggerCheck(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"usersChecked":  res.UsersChecked,
		"remindersSent": res.RemindersSent,
		"errors":        res.Errors,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.sched.Status())
}

// handleTrigger is the authenticated-UI flavor of handleCheck.
func (s *Server) handleTrigger(c *gin.Context) {
	s.handleCheck(c)
}
