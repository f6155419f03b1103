package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/app/workerapp"
	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/infra/logger"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, "trustengine-worker")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := workerapp.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("create worker app", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("close worker app", zap.Error(err))
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Error("worker app stopped", zap.Error(err))
	}
}
