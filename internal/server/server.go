package server

import (
	"math/rand"
	"net/http"

	"github.com/md-faizanahmad/quick-tracker/internal/middleware"
	"github.com/md-faizanahmad/quick-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler implements the remote reconciliation contract. It is
// stateless: a batch either fully succeeds or fully fails, and nothing
// is persisted. FailureRate injects transient failures to exercise the
// client's retry path.
type SyncHandler struct {
	FailureRate float64
	Log         *logrus.Logger
}

func NewSyncHandler(failureRate float64, log *logrus.Logger) *SyncHandler {
	return &SyncHandler{FailureRate: failureRate, Log: log}
}

// Sync accepts a batch of expense records. The payload must be a JSON
// array; anything else is rejected outright.
func (h *SyncHandler) Sync(c *gin.Context) {
	var batch []models.ExpenseRecord
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Payload"})
		return
	}

	if h.FailureRate > 0 && rand.Float64() < h.FailureRate {
		h.Log.WithField("size", len(batch)).Warn("injected sync failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Random sync Failure"})
		return
	}

	h.Log.WithField("size", len(batch)).Info("batch accepted")
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"syncedCount": len(batch),
	})
}

// SetupRouter wires the reconciliation endpoint.
func SetupRouter(failureRate float64, mode string, log *logrus.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "working"})
	})

	h := NewSyncHandler(failureRate, log)
	r.POST("/sync", h.Sync)

	return r
}
