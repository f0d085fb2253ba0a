package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/models"
	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/util"
	"github.com/md-faizanahmad/quick-tracker/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseHandler serves the local CRUD API used by the presentation
// layer. Every write lands in the local store first and is marked
// pending; the sync engine picks it up on its next pass.
type ExpenseHandler struct {
	Store *store.Store
}

func NewExpenseHandler(st *store.Store) *ExpenseHandler {
	return &ExpenseHandler{Store: st}
}

type expenseReq struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

type categoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CreateExpense records a new expense. It always succeeds locally when
// the input is valid; the record starts out pending.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Currency == "" {
		req.Currency = validation.DefaultCurrency
	}

	res := validation.ValidateExpense(validation.Input{
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Note:     req.Note,
	})
	if !res.Valid {
		util.FieldErrors(c, res.Errors)
		return
	}

	rec := models.ExpenseRecord{
		ID:       uuid.NewString(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Note:     strings.TrimSpace(req.Note),
		Date:     time.Now().UTC(),
		Synced:   false,
	}

	if err := h.Store.Put(&rec); err != nil {
		// a lost local write would defeat the offline-first guarantee,
		// so storage failures are surfaced instead of swallowed
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save expense")
		return
	}

	util.Success(c, util.Response{"expense": rec})
}

// UpdateExpense replaces an existing record in full. ID and Date are
// preserved; the record always drops back to pending, even if it had
// already synced.
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.Store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expense")
		}
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Currency == "" {
		req.Currency = validation.DefaultCurrency
	}

	res := validation.ValidateExpense(validation.Input{
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Note:     req.Note,
	})
	if !res.Valid {
		util.FieldErrors(c, res.Errors)
		return
	}

	rec := models.ExpenseRecord{
		ID:       existing.ID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Note:     strings.TrimSpace(req.Note),
		Date:     existing.Date,
		Synced:   false,
	}

	if err := h.Store.Put(&rec); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save expense")
		return
	}

	util.Success(c, util.Response{"expense": rec})
}

// ListExpenses returns the full snapshot, newest first, with per-category
// totals for the chart.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	recs, err := h.Store.GetAll()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expenses")
		return
	}

	util.Success(c, util.Response{
		"items":       recs,
		"total":       len(recs),
		"by_category": groupByCategory(recs),
	})
}

// DeleteExpense removes the record entirely. Deletion is local-only: no
// tombstone is kept and the server is never told. The two-step confirm
// lives in the UI, not here.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id := c.Param("id")

	if err := h.Store.Delete(id); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete expense")
		return
	}

	util.Success(c, util.Response{"deleted": id})
}

func groupByCategory(recs []models.ExpenseRecord) []categoryTotal {
	totals := make(map[string]decimal.Decimal)
	for i := range recs {
		totals[recs[i].Category] = totals[recs[i].Category].Add(recs[i].Amount)
	}

	out := make([]categoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, categoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
