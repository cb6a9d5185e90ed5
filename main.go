package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pharmatrack/m/internal/api"
	"pharmatrack/m/internal/config"
	"pharmatrack/m/internal/database"
	"pharmatrack/m/internal/ledger"
	"pharmatrack/m/internal/migrations"
	"pharmatrack/m/internal/monitor"
	"pharmatrack/m/internal/report"
	"pharmatrack/m/internal/sales"
	"pharmatrack/m/internal/scheduler"
	"pharmatrack/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	st := store.New(db)
	inventory := ledger.New(st)
	recorder := sales.New(inventory, st)
	reports := report.New(st, inventory)

	mon := monitor.New(inventory, logger)
	mon.SetInterval(cfg.MonitorInterval)
	mon.SetAlertWindow(cfg.AlertWindowDays)
	mon.Start()
	defer mon.Stop()

	exporter := scheduler.NewStockExporter(inventory, cfg.ExportDir, false, logger)
	if err := exporter.Start(); err != nil {
		logger.Fatal("failed to start stock export scheduler", zap.Error(err))
	}
	defer exporter.Stop()

	handler := api.New(st, inventory, recorder, mon, reports, cfg.Secret, cfg.AlertWindowDays, cfg.LowStockThreshold)

	logger.Info("pharmatrack server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
