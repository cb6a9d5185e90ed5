// Package report computes read-side sales and stock projections. Nothing here
// mutates state; every figure is derived from a fresh store read.
package report

import (
	"sort"
	"time"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/ledger"
	"pharmatrack/m/internal/store"
)

// Service aggregates sales and inventory figures for dashboards.
type Service struct {
	store  *store.Store
	ledger *ledger.Ledger
}

// New constructs a report Service.
func New(st *store.Store, l *ledger.Ledger) *Service {
	return &Service{store: st, ledger: l}
}

// SalesSummary is the revenue/count projection for one period.
type SalesSummary struct {
	Revenue   float64 `json:"revenue"`
	SaleCount int     `json:"sale_count"`
	UnitsSold int64   `json:"units_sold"`
}

func summarize(sales []domain.Sale) SalesSummary {
	var s SalesSummary
	for _, sale := range sales {
		s.Revenue += sale.TotalAmount
		s.UnitsSold += sale.Quantity
	}
	s.SaleCount = len(sales)
	return s
}

// DailySales summarizes the sales of one calendar day.
func (s *Service) DailySales(date time.Time) (SalesSummary, error) {
	sales, err := s.store.LoadSalesByDate(date)
	if err != nil {
		return SalesSummary{}, err
	}
	return summarize(sales), nil
}

// MonthlySales summarizes the month containing date.
func (s *Service) MonthlySales(date time.Time) (SalesSummary, error) {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	last := first.AddDate(0, 1, -1)
	return s.PeriodSales(first, last)
}

// PeriodSales summarizes the sales between from and to inclusive.
func (s *Service) PeriodSales(from, to time.Time) (SalesSummary, error) {
	sales, err := s.store.LoadSalesBetween(from, to)
	if err != nil {
		return SalesSummary{}, err
	}
	return summarize(sales), nil
}

// AverageSaleAmount is the mean total over all recorded sales, 0 when empty.
func (s *Service) AverageSaleAmount() (float64, error) {
	sales, err := s.store.LoadAllSales()
	if err != nil {
		return 0, err
	}
	if len(sales) == 0 {
		return 0, nil
	}
	var total float64
	for _, sale := range sales {
		total += sale.TotalAmount
	}
	return total / float64(len(sales)), nil
}

// QuantitySold sums the units sold for one medication across all its sales.
func (s *Service) QuantitySold(medicationID int64) (int64, error) {
	sales, err := s.store.LoadSalesByMedication(medicationID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, sale := range sales {
		total += sale.Quantity
	}
	return total, nil
}

// TopSeller is one row of the best-seller ranking.
type TopSeller struct {
	MedicationID   int64   `json:"medication_id"`
	MedicationName string  `json:"medication_name"`
	Revenue        float64 `json:"revenue"`
	UnitsSold      int64   `json:"units_sold"`
}

// TopSellers ranks medications by revenue, highest first, at most limit rows.
func (s *Service) TopSellers(limit int) ([]TopSeller, error) {
	sales, err := s.store.LoadAllSales()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*TopSeller)
	for _, sale := range sales {
		row, ok := byID[sale.MedicationID]
		if !ok {
			row = &TopSeller{MedicationID: sale.MedicationID, MedicationName: sale.MedicationName}
			byID[sale.MedicationID] = row
		}
		row.Revenue += sale.TotalAmount
		row.UnitsSold += sale.Quantity
	}
	ranked := make([]TopSeller, 0, len(byID))
	for _, row := range byID {
		ranked = append(ranked, *row)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Revenue > ranked[j].Revenue })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// StockOverview is the inventory health projection.
type StockOverview struct {
	MedicationCount   int            `json:"medication_count"`
	TotalQuantity     int64          `json:"total_quantity"`
	TotalValue        float64        `json:"total_value"`
	PerCategory       map[string]int `json:"per_category"`
	LowStockPercent   float64        `json:"low_stock_percent"`
	ExpiredPercent    float64        `json:"expired_percent"`
	LowStockThreshold int64          `json:"low_stock_threshold"`
}

// StockReport computes the inventory overview using threshold for low stock.
func (s *Service) StockReport(threshold int64) (StockOverview, error) {
	items, err := s.ledger.ListAll()
	if err != nil {
		return StockOverview{}, err
	}

	overview := StockOverview{
		MedicationCount:   len(items),
		PerCategory:       make(map[string]int),
		LowStockThreshold: threshold,
	}
	now := time.Now()
	var lowStock, expired int
	for _, item := range items {
		overview.TotalQuantity += item.Quantity
		overview.TotalValue += item.StockValue()
		overview.PerCategory[item.Category]++
		if item.IsLowStock(threshold) {
			lowStock++
		}
		if item.IsExpired(now) {
			expired++
		}
	}
	if len(items) > 0 {
		overview.LowStockPercent = float64(lowStock) / float64(len(items)) * 100
		overview.ExpiredPercent = float64(expired) / float64(len(items)) * 100
	}
	return overview, nil
}
