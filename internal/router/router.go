package router

import (
	"net/http"

	"github.com/md-faizanahmad/quick-tracker/internal/config"
	"github.com/md-faizanahmad/quick-tracker/internal/connectivity"
	"github.com/md-faizanahmad/quick-tracker/internal/handler"
	"github.com/md-faizanahmad/quick-tracker/internal/middleware"
	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/syncengine"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter wires the local API the presentation layer talks to.
func SetupRouter(cfg *config.Config, st *store.Store, eng *syncengine.Engine, mon *connectivity.Monitor, log *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "working"})
	})

	api := r.Group("/api")

	expenseHandler := handler.NewExpenseHandler(st)
	api.POST("/expenses", expenseHandler.CreateExpense)
	api.GET("/expenses", expenseHandler.ListExpenses)
	api.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	api.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	statusHandler := handler.NewStatusHandler(eng, eng, st, mon)
	api.GET("/status", statusHandler.GetStatus)
	api.PUT("/connectivity", statusHandler.SetConnectivity)
	api.POST("/expenses/:id/retry", statusHandler.RetryExpense)

	exportHandler := handler.NewExportHandler(st)
	api.GET("/export/csv", exportHandler.ExportCSV)
	api.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
