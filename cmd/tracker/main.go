package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/config"
	"github.com/md-faizanahmad/quick-tracker/internal/connectivity"
	"github.com/md-faizanahmad/quick-tracker/internal/database"
	"github.com/md-faizanahmad/quick-tracker/internal/logger"
	"github.com/md-faizanahmad/quick-tracker/internal/router"
	"github.com/md-faizanahmad/quick-tracker/internal/store"
	"github.com/md-faizanahmad/quick-tracker/internal/syncengine"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(cfg.Log.Level)

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	st := store.New(db)
	mon := connectivity.NewMonitor(cfg.Sync.AssumeOnline)
	client := syncengine.NewClient(cfg.Sync.Endpoint, cfg.Sync.RequestTimeout)

	eng := syncengine.New(st, client, mon, appLog, cfg.Sync.RetryDelay)
	eng.Start()

	r := router.SetupRouter(cfg, st, eng, mon, appLog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		appLog.WithField("addr", addr).Info("tracker listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// stop the engine first so a pending retry timer cannot fire into a
	// closing process
	eng.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.WithError(err).Warn("shutdown")
	}
}
