package handler

import (
	"errors"
	"net/http"

	"github.com/md-faizanahmad/quick-tracker/internal/connectivity"
	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/syncengine"
	"github.com/md-faizanahmad/quick-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// StatusReader is the narrow, read-only view of the sync engine exposed
// to the presentation layer. No ambient global: the engine owns the
// status, this handler only reads it.
type StatusReader interface {
	Status() syncengine.Status
	Online() bool
}

// RecordRetrier re-sends a single record on user request.
type RecordRetrier interface {
	RetryRecord(id string) error
}

// StatusHandler exposes the sync status signal and the connectivity
// reporting endpoint through which the host shell delivers its
// online/offline events.
type StatusHandler struct {
	Sync    StatusReader
	Retrier RecordRetrier
	Store   *store.Store
	Monitor *connectivity.Monitor
}

func NewStatusHandler(sync StatusReader, retrier RecordRetrier, st *store.Store, mon *connectivity.Monitor) *StatusHandler {
	return &StatusHandler{Sync: sync, Retrier: retrier, Store: st, Monitor: mon}
}

// GetStatus reports the current sync status, the connectivity reading
// and the size of the pending set.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	pending, err := h.Store.GetUnsynced()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count pending records")
		return
	}

	util.Success(c, util.Response{
		"status":  h.Sync.Status(),
		"online":  h.Sync.Online(),
		"pending": len(pending),
	})
}

type connectivityReq struct {
	Online *bool `json:"online" binding:"required"`
}

// SetConnectivity records a host-reported connectivity transition. The
// monitor is reactive: this is its only input.
func (h *StatusHandler) SetConnectivity(c *gin.Context) {
	var req connectivityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	h.Monitor.Set(*req.Online)
	util.Success(c, util.Response{"online": *req.Online})
}

// RetryExpense triggers a manual single-record retry.
func (h *StatusHandler) RetryExpense(c *gin.Context) {
	id := c.Param("id")

	if err := h.Retrier.RetryRecord(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "retry failed")
		}
		return
	}

	util.Success(c, util.Response{"retried": id})
}
