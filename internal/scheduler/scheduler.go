// Package scheduler runs the nightly stock backup job.
package scheduler

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pharmatrack/m/internal/export"
	"pharmatrack/m/internal/ledger"
)

// StockExporter writes a dated CSV snapshot of the inventory once a day.
type StockExporter struct {
	cronScheduler  *cron.Cron
	ledger         *ledger.Ledger
	exportDir      string
	runImmediately bool
	log            *zap.Logger
	jobID          cron.EntryID
}

// NewStockExporter creates the exporter. When runImmediately is set, Start
// performs one export before the first scheduled run.
func NewStockExporter(l *ledger.Ledger, exportDir string, runImmediately bool, log *zap.Logger) *StockExporter {
	return &StockExporter{
		cronScheduler:  cron.New(cron.WithSeconds()),
		ledger:         l,
		exportDir:      exportDir,
		runImmediately: runImmediately,
		log:            log,
	}
}

// Start schedules the daily export at 01:00 and starts the scheduler.
func (s *StockExporter) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc("0 0 1 * * *", func() {
		s.log.Info("running scheduled stock export")
		s.runExport()
	})
	if err != nil {
		return fmt.Errorf("error scheduling stock export: %w", err)
	}

	s.cronScheduler.Start()
	s.log.Info("stock export scheduler started")

	if s.runImmediately {
		s.runExport()
	}
	return nil
}

// Stop halts the scheduler. A job already running completes.
func (s *StockExporter) Stop() {
	s.cronScheduler.Stop()
	s.log.Info("stock export scheduler stopped")
}

func (s *StockExporter) runExport() {
	items, err := s.ledger.ListAll()
	if err != nil {
		s.log.Error("stock export failed to load inventory", zap.Error(err))
		return
	}
	path := filepath.Join(s.exportDir, fmt.Sprintf("stock-%s.csv", time.Now().Format("2006-01-02")))
	if err := export.ExportStock(path, items); err != nil {
		s.log.Error("stock export failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Info("stock export complete", zap.String("path", path), zap.Int("items", len(items)))
}
