package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mchmarny/rfm/pkg/reseller"
	"github.com/pkg/errors"
)

const (
	selectResellerSalesSQL = `SELECT s."ResellerKey", r."ResellerKey", t."SalesTerritoryKey",
			r."Business Type", t."Country", d."Date", s."Sales Amount"
		FROM "Sales" s
		LEFT JOIN "Resellers" r ON s."ResellerKey" = r."ResellerKey"
		LEFT JOIN "Territories" t ON s."SalesTerritoryKey" = t."SalesTerritoryKey"
		LEFT JOIN "Date" d ON s."OrderDateKey" = d."DateKey"
		WHERE s."ResellerKey" != -1
	`

	selectBusinessTypesSQL = `SELECT "Business Type"
		FROM "Resellers"
		WHERE "Business Type" IS NOT NULL
	`
)

// ResellerSales loads every reseller sales row with its business type,
// territory country and order date, where those exist.
func (s *Store) ResellerSales(ctx context.Context) ([]reseller.Sale, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.query(selectResellerSalesSQL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reseller sales")
	}
	defer rows.Close()

	list := make([]reseller.Sale, 0)
	for rows.Next() {
		var (
			key          int64
			resellerKey  sql.NullInt64
			territoryKey sql.NullInt64
			businessType sql.NullString
			country      sql.NullString
			date         sql.NullString
			amount       sql.NullFloat64
		)
		if err := rows.Scan(&key, &resellerKey, &territoryKey, &businessType, &country, &date, &amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan reseller sales row")
		}

		sl := reseller.Sale{
			ResellerKey:  key,
			BusinessType: businessType.String,
			Country:      country.String,
			Amount:       amount.Float64,
			Joined:       resellerKey.Valid && territoryKey.Valid && date.Valid,
		}
		if date.Valid {
			t, err := parseDate(date.String)
			if err != nil {
				return nil, errors.Wrapf(err, "reseller %d", key)
			}
			sl.Date = t
		}

		list = append(list, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate reseller sales")
	}

	slog.Debug("loaded reseller sales", "count", len(list))
	return list, nil
}

// BusinessTypes returns the business type of every reseller, duplicates included.
func (s *Store) BusinessTypes(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, s.query(selectBusinessTypesSQL))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query business types")
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan business type")
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate business types")
	}

	return list, nil
}
