// Package monitor runs the background expiration surveillance loop. It
// re-derives the expired and near-expiry alert sets from inventory snapshots
// on a fixed period, independent of and concurrent with ledger mutations.
package monitor

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pharmatrack/m/domain"
)

const (
	DefaultInterval    = 60 * time.Second
	DefaultAlertWindow = 90 // days
)

// Snapshotter is the inventory view the monitor scans. The ledger satisfies it.
type Snapshotter interface {
	ListAll() ([]domain.Medication, error)
}

// AlertSink receives alerts for one scan. Both methods are called from the
// monitor's goroutine (or the caller's, for CheckNow); implementations that
// touch shared state must synchronize themselves.
type AlertSink interface {
	MedicationExpired(m domain.Medication)
	MedicationNearExpiry(m domain.Medication, daysRemaining int)
}

// Monitor periodically scans the inventory and raises expiration alerts.
// Start and Stop are idempotent; reconfiguration while a scan is in flight
// takes effect on the next cycle, never the current one.
type Monitor struct {
	inv Snapshotter
	log *zap.Logger

	// stateMu serializes the running/quit transition so concurrent Start
	// and Stop calls never observe each other mid-flip.
	stateMu sync.Mutex
	running atomic.Bool
	quit    chan struct{}

	// mu guards the scan body and the configuration it reads, so an
	// in-flight scan always finishes with the settings it started with.
	mu         sync.Mutex
	interval   time.Duration
	windowDays int
	sink       AlertSink
}

// New constructs a stopped Monitor with the default interval and alert window.
func New(inv Snapshotter, log *zap.Logger) *Monitor {
	return &Monitor{
		inv:        inv,
		log:        log,
		interval:   DefaultInterval,
		windowDays: DefaultAlertWindow,
	}
}

// SetSink registers the alert callback. Takes effect on the next scan.
func (m *Monitor) SetSink(sink AlertSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

// SetInterval changes the scan period. Takes effect after the current sleep.
func (m *Monitor) SetInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interval = d
	m.log.Info("monitor interval changed", zap.Duration("interval", d))
}

// Interval returns the current scan period.
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// SetAlertWindow changes the near-expiry window in days. Next cycle.
func (m *Monitor) SetAlertWindow(days int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowDays = days
}

// Running reports whether the scan loop is active.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Start launches the scan loop. Starting a running monitor is a logged no-op.
func (m *Monitor) Start() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.running.Load() {
		m.log.Info("expiration monitor already running")
		return
	}
	quit := make(chan struct{})
	m.quit = quit
	m.running.Store(true)
	go m.loop(quit)
	m.log.Info("expiration monitor started", zap.Duration("interval", m.Interval()))
}

// Stop signals the loop to exit before its next sleep elapses and returns
// without waiting for it. Stopping a stopped monitor is a logged no-op. A scan
// already in flight completes; one that has not started never fires.
func (m *Monitor) Stop() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if !m.running.Load() {
		m.log.Info("expiration monitor not running")
		return
	}
	close(m.quit)
	m.quit = nil
	m.running.Store(false)
	m.log.Info("expiration monitor stopped")
}

func (m *Monitor) loop(quit chan struct{}) {
	for {
		select {
		case <-quit:
			return
		default:
		}
		if err := m.CheckNow(); err != nil {
			m.log.Error("expiration scan failed", zap.Error(err))
		}
		timer := time.NewTimer(m.Interval())
		select {
		case <-quit:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// CheckNow forces one synchronous scan outside the periodic cadence. It shares
// the scan critical section with the loop, so the two never interleave.
func (m *Monitor) CheckNow() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanLocked()
}

// scanLocked partitions a fresh snapshot into expired and near-expiry sets
// using one "now" captured at scan start, and fires the sink for each alert.
// Callers must hold mu.
func (m *Monitor) scanLocked() error {
	items, err := m.inv.ListAll()
	if err != nil {
		return err
	}

	now := time.Now()
	var expired, nearExpiry int
	for _, item := range items {
		switch {
		case item.IsExpired(now):
			expired++
			m.log.Warn("medication expired",
				zap.String("name", item.Name),
				zap.Time("expiration_date", item.ExpirationDate))
			if m.sink != nil {
				m.sink.MedicationExpired(item)
			}
		case item.IsNearExpiry(now, m.windowDays):
			nearExpiry++
			days := item.DaysUntilExpiry(now)
			m.log.Warn("medication near expiry",
				zap.String("name", item.Name),
				zap.Int("days_remaining", days))
			if m.sink != nil {
				m.sink.MedicationNearExpiry(item, days)
			}
		}
	}

	if expired > 0 || nearExpiry > 0 {
		m.log.Info("expiration scan complete",
			zap.Int("expired", expired),
			zap.Int("near_expiry", nearExpiry))
	}
	return nil
}

// CountAlerts returns |expired| + |nearExpiry| from a fresh snapshot.
func (m *Monitor) CountAlerts() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.inv.ListAll()
	if err != nil {
		return 0, err
	}
	now := time.Now()
	count := 0
	for _, item := range items {
		if item.IsExpired(now) || item.IsNearExpiry(now, m.windowDays) {
			count++
		}
	}
	return count, nil
}

// Report renders a human-readable expiration report from a fresh snapshot.
func (m *Monitor) Report() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.inv.ListAll()
	if err != nil {
		return "", err
	}
	now := time.Now()

	var expired, nearExpiry []domain.Medication
	for _, item := range items {
		switch {
		case item.IsExpired(now):
			expired = append(expired, item)
		case item.IsNearExpiry(now, m.windowDays):
			nearExpiry = append(nearExpiry, item)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== EXPIRATION REPORT ===\n")
	fmt.Fprintf(&b, "Date: %s\n", now.Format("2006-01-02"))
	status := "STOPPED"
	if m.running.Load() {
		status = "RUNNING"
	}
	fmt.Fprintf(&b, "Monitor status: %s\n\n", status)

	fmt.Fprintf(&b, "Expired medications: %d\n", len(expired))
	for _, item := range expired {
		fmt.Fprintf(&b, "  - %s (expired %d days ago)\n", item.Name, -item.DaysUntilExpiry(now))
	}

	fmt.Fprintf(&b, "\nMedications expiring within %d days: %d\n", m.windowDays, len(nearExpiry))
	for _, item := range nearExpiry {
		fmt.Fprintf(&b, "  - %s (expires in %d days)\n", item.Name, item.DaysUntilExpiry(now))
	}
	return b.String(), nil
}
