// Package export reads and writes the stock CSV snapshot used for backups and
// operator-driven import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pharmatrack/m/domain"
)

var header = []string{"id", "name", "category", "unit_price", "quantity", "expiration_date", "supplier_id"}

const dateLayout = "2006-01-02"

// WriteStock writes the inventory snapshot as CSV, header first.
func WriteStock(w io.Writer, items []domain.Medication) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, item := range items {
		supplier := ""
		if item.SupplierID != nil {
			supplier = strconv.FormatInt(*item.SupplierID, 10)
		}
		record := []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.Category,
			strconv.FormatFloat(item.UnitPrice, 'f', 2, 64),
			strconv.FormatInt(item.Quantity, 10),
			item.ExpirationDate.Format(dateLayout),
			supplier,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportStock writes the snapshot to a file, creating or truncating it.
func ExportStock(path string, items []domain.Medication) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteStock(file, items)
}

// ReadStock parses a stock CSV. Malformed rows are skipped, matching how the
// catalog seeder tolerates bad lines; a missing header is an error.
func ReadStock(r io.Reader) ([]domain.Medication, error) {
	cr := csv.NewReader(r)
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("read stock header: %w", err)
	}

	var items []domain.Medication
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) < 7 {
			continue
		}

		id, _ := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		name := strings.TrimSpace(record[1])
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		if err != nil {
			continue
		}
		expiration, err := time.Parse(dateLayout, strings.TrimSpace(record[5]))
		if err != nil {
			continue
		}

		item := domain.Medication{
			ID:             id,
			Name:           name,
			Category:       strings.TrimSpace(record[2]),
			UnitPrice:      price,
			Quantity:       quantity,
			ExpirationDate: expiration,
		}
		if supplier := strings.TrimSpace(record[6]); supplier != "" {
			if sid, err := strconv.ParseInt(supplier, 10, 64); err == nil {
				item.SupplierID = &sid
			}
		}
		items = append(items, item)
	}
	return items, nil
}
