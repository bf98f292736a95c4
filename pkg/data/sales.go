package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mchmarny/rfm/pkg/rfm"
	"github.com/pkg/errors"
)

const (
	// B2C sales only: reseller rows carry ResellerKey != -1, anonymous ones CustomerKey = -1.
	selectTransactionsSQL = `SELECT s."CustomerKey", d."Date", s."Sales Amount"
		FROM "Sales" s
		JOIN "Date" d ON s."OrderDateKey" = d."DateKey"
		WHERE s."ResellerKey" = -1
		  AND s."CustomerKey" != -1
		ORDER BY s."CustomerKey", d."Date"
	`

	countTransactionsSQL = `SELECT COUNT(*)
		FROM "Sales" s
		JOIN "Date" d ON s."OrderDateKey" = d."DateKey"
		WHERE s."ResellerKey" = -1
		  AND s."CustomerKey" != -1
	`

	selectCustomersSQL = `SELECT "CustomerKey", "Customer", "Country-Region"
		FROM "Customers"
		WHERE "CustomerKey" != -1
	`
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// Progress receives one tick per loaded row.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

// Customer is a row of the customer dimension.
type Customer struct {
	Key           int64  `json:"customer_key" yaml:"customer_key"`
	Name          string `json:"customer" yaml:"customer"`
	CountryRegion string `json:"country_region" yaml:"country_region"`
}

// CountTransactions returns the number of B2C sales rows.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, errDBNotInitialized
	}

	var n int
	if err := s.db.QueryRowContext(ctx, s.query(countTransactionsSQL)).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count transactions")
	}
	return n, nil
}

// Transactions loads all B2C sales joined to their order date.
// progress may be nil.
func (s *Store) Transactions(ctx context.Context, progress Progress) ([]rfm.Transaction, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.query(selectTransactionsSQL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query transactions")
	}
	defer rows.Close()

	list := make([]rfm.Transaction, 0)
	for rows.Next() {
		var (
			id     int64
			date   string
			amount sql.NullFloat64
		)
		if err := rows.Scan(&id, &date, &amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction row")
		}

		t, err := parseDate(date)
		if err != nil {
			return nil, errors.Wrapf(err, "customer %d", id)
		}

		list = append(list, rfm.Transaction{
			CustomerID: id,
			Date:       t,
			Amount:     amount.Float64,
		})

		if progress != nil {
			_ = progress.Add(1)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate transactions")
	}

	slog.Debug("loaded transactions", "count", len(list))
	return list, nil
}

// Customers returns the customer dimension keyed by CustomerKey.
func (s *Store) Customers(ctx context.Context) (map[int64]*Customer, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.query(selectCustomersSQL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query customers")
	}
	defer rows.Close()

	m := make(map[int64]*Customer)
	for rows.Next() {
		var (
			key     int64
			name    sql.NullString
			country sql.NullString
		)
		if err := rows.Scan(&key, &name, &country); err != nil {
			return nil, errors.Wrap(err, "failed to scan customer row")
		}
		m[key] = &Customer{
			Key:           key,
			Name:          name.String,
			CountryRegion: country.String,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate customers")
	}

	return m, nil
}

// Countries maps customer keys to their country/region.
func Countries(customers map[int64]*Customer) map[int64]string {
	m := make(map[int64]string, len(customers))
	for k, c := range customers {
		m[k] = c.CountryRegion
	}
	return m
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", v)
}
