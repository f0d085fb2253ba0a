package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/config"
	"github.com/md-faizanahmad/quick-tracker/internal/connectivity"
	"github.com/md-faizanahmad/quick-tracker/internal/database"
	"github.com/md-faizanahmad/quick-tracker/internal/handler"
	"github.com/md-faizanahmad/quick-tracker/internal/models"
	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/syncengine"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSync satisfies the handler-side sync interfaces without a real
// engine.
type stubSync struct {
	status  syncengine.Status
	online  bool
	retried []string
}

func (s *stubSync) Status() syncengine.Status { return s.status }
func (s *stubSync) Online() bool              { return s.online }
func (s *stubSync) RetryRecord(id string) error {
	s.retried = append(s.retried, id)
	return nil
}

type testAPI struct {
	router *gin.Engine
	store  *store.Store
	sync   *stubSync
	mon    *connectivity.Monitor
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	st := store.New(db)
	sync := &stubSync{status: syncengine.StatusIdle, online: true}
	mon := connectivity.NewMonitor(true)

	r := gin.New()
	api := r.Group("/api")

	eh := handler.NewExpenseHandler(st)
	api.POST("/expenses", eh.CreateExpense)
	api.GET("/expenses", eh.ListExpenses)
	api.PUT("/expenses/:id", eh.UpdateExpense)
	api.DELETE("/expenses/:id", eh.DeleteExpense)

	sh := handler.NewStatusHandler(sync, sync, st, mon)
	api.GET("/status", sh.GetStatus)
	api.PUT("/connectivity", sh.SetConnectivity)
	api.POST("/expenses/:id/retry", sh.RetryExpense)

	return &testAPI{router: r, store: st, sync: sync, mon: mon}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type expenseEnvelope struct {
	Code int `json:"code"`
	Data struct {
		Expense models.ExpenseRecord `json:"expense"`
	} `json:"data"`
}

func TestCreateExpense(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/expenses", `{"amount":12.5,"category":"Food","note":"  coffee  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp expenseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	rec := resp.Data.Expense
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Synced, "new record starts pending")
	assert.Equal(t, "₹", rec.Currency, "currency defaults when unspecified")
	assert.Equal(t, "coffee", rec.Note, "note is trimmed before storage")
	assert.WithinDuration(t, time.Now().UTC(), rec.Date, 5*time.Second)

	got, err := a.store.Get(rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestCreateExpense_ValidationErrors(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/expenses", `{"amount":0,"category":"Food"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code   int               `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Fields, 1, "only amount violates a rule")
	assert.Contains(t, resp.Fields, "amount")

	longNote := strings.Repeat("x", 61)
	w = a.do(t, http.MethodPost, "/api/expenses", `{"amount":5,"category":"Food","note":"`+longNote+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp.Fields = nil // json.Unmarshal merges into a non-nil map, so clear the previous response's entries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Fields, 1)
	assert.Contains(t, resp.Fields, "note")
}

func TestUpdateExpense_ResetsPendingAndPreservesIdentity(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/expenses", `{"amount":10,"category":"Food"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created expenseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.Expense.ID

	require.NoError(t, a.store.MarkSynced(id))

	w = a.do(t, http.MethodPut, "/api/expenses/"+id, `{"amount":20,"currency":"$","category":"Rent"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := a.store.Get(id)
	require.NoError(t, err)
	assert.False(t, got.Synced, "edit resets a synced record to pending")
	assert.Equal(t, "Rent", got.Category)
	assert.Equal(t, id, got.ID)
	assert.WithinDuration(t, created.Data.Expense.Date, got.Date, time.Second, "date never changes on edit")
}

func TestUpdateExpense_NotFound(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPut, "/api/expenses/no-such-id", `{"amount":20,"category":"Rent"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteExpense(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/expenses", `{"amount":10,"category":"Food"}`)
	var created expenseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.Expense.ID

	w = a.do(t, http.MethodDelete, "/api/expenses/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	_, err := a.store.Get(id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListExpenses_SummaryByCategory(t *testing.T) {
	a := newTestAPI(t)

	for _, body := range []string{
		`{"amount":10,"category":"Food"}`,
		`{"amount":5,"category":"Food"}`,
		`{"amount":100,"category":"Rent"}`,
	} {
		w := a.do(t, http.MethodPost, "/api/expenses", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := a.do(t, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total      int `json:"total"`
			ByCategory []struct {
				Category string `json:"category"`
				Total    string `json:"total"`
			} `json:"by_category"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	require.Len(t, resp.Data.ByCategory, 2)
	// sorted by total descending
	assert.Equal(t, "Rent", resp.Data.ByCategory[0].Category)
	assert.Equal(t, "100", resp.Data.ByCategory[0].Total)
	assert.Equal(t, "Food", resp.Data.ByCategory[1].Category)
	assert.Equal(t, "15", resp.Data.ByCategory[1].Total)
}

func TestGetStatus(t *testing.T) {
	a := newTestAPI(t)
	a.sync.status = syncengine.StatusWaiting

	w := a.do(t, http.MethodPost, "/api/expenses", `{"amount":10,"category":"Food"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Status  string `json:"status"`
			Online  bool   `json:"online"`
			Pending int    `json:"pending"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "waiting", resp.Data.Status)
	assert.True(t, resp.Data.Online)
	assert.Equal(t, 1, resp.Data.Pending)
}

func TestSetConnectivity(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPut, "/api/connectivity", `{"online":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, a.mon.Online())

	w = a.do(t, http.MethodPut, "/api/connectivity", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetryExpense(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/expenses/some-id/retry", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"some-id"}, a.sync.retried)
}
