package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md-faizanahmad/quick-tracker/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(failureRate float64) *gin.Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return server.SetupRouter(failureRate, gin.TestMode, log)
}

func postSync(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSync_AcceptsBatch(t *testing.T) {
	r := newRouter(0)

	body := `[
		{"id":"a","amount":12.5,"currency":"₹","category":"Food","date":"2025-08-01T10:00:00Z"},
		{"id":"b","amount":3,"currency":"$","category":"Rent","date":"2025-08-02T10:00:00Z"}
	]`
	w := postSync(r, body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success     bool `json:"success"`
		SyncedCount int  `json:"syncedCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.SyncedCount)
}

func TestSync_EmptyBatch(t *testing.T) {
	w := postSync(newRouter(0), `[]`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success     bool `json:"success"`
		SyncedCount int  `json:"syncedCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.SyncedCount)
}

func TestSync_RejectsNonArrayPayload(t *testing.T) {
	for _, body := range []string{`{"id":"a"}`, `"nope"`, `42`, ``} {
		w := postSync(newRouter(0), body)

		require.Equal(t, http.StatusBadRequest, w.Code, "payload %q", body)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid Payload", resp.Error)
	}
}

func TestSync_InjectedFailure(t *testing.T) {
	// failure rate 1.0 makes the injection deterministic
	w := postSync(newRouter(1), `[]`)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHealth(t *testing.T) {
	r := newRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"working"}`, w.Body.String())
}
