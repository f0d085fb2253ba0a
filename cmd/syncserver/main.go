package main

import (
	"fmt"
	"log"

	"github.com/md-faizanahmad/quick-tracker/internal/config"
	"github.com/md-faizanahmad/quick-tracker/internal/logger"
	"github.com/md-faizanahmad/quick-tracker/internal/server"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(cfg.Log.Level)

	r := server.SetupRouter(cfg.Remote.FailureRate, cfg.Server.Mode, appLog)

	addr := fmt.Sprintf("%s:%d", cfg.Remote.Address, cfg.Remote.Port)
	appLog.WithField("addr", addr).Info("sync server listening")
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
