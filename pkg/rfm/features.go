package rfm

import (
	"errors"
	"log/slog"
	"time"
)

// PredictionWindowDaysDefault is how far past the snapshot purchases count
// toward the WillPurchase label.
const PredictionWindowDaysDefault = 30

var (
	errNoTransactions = errors.New("no transactions to build features from")
	errInvalidWindow  = errors.New("prediction window must be a positive number of days")
)

// FeatureRow is one classifier input: RFM as of the snapshot, the customer's
// country and whether they purchased inside the prediction window.
type FeatureRow struct {
	CustomerID    int64   `json:"customer_id" yaml:"customer_id"`
	Recency       int     `json:"recency_snapshot" yaml:"recency_snapshot"`
	Frequency     int     `json:"frequency" yaml:"frequency"`
	Monetary      float64 `json:"monetary" yaml:"monetary"`
	CountryRegion string  `json:"country_region" yaml:"country_region"`
	WillPurchase  int     `json:"will_purchase" yaml:"will_purchase"`
}

// FeatureSet is the propensity training table for one snapshot.
type FeatureSet struct {
	Snapshot   time.Time     `json:"snapshot" yaml:"snapshot"`
	WindowDays int           `json:"window_days" yaml:"window_days"`
	Positives  int           `json:"positives" yaml:"positives"`
	Rows       []*FeatureRow `json:"rows" yaml:"rows"`
}

// BuildFeatures places the snapshot windowDays before the latest transaction.
// Features come from transactions on or before the snapshot; the label marks
// customers with any transaction after it. Customers with no history before
// the snapshot produce no row. Unknown countries are left empty.
func BuildFeatures(txs []Transaction, countries map[int64]string, windowDays int) (*FeatureSet, error) {
	if windowDays <= 0 {
		return nil, errInvalidWindow
	}
	latest, ok := latestDate(txs)
	if !ok {
		return nil, errNoTransactions
	}

	snapshot := latest.AddDate(0, 0, -windowDays)

	purchased := make(map[int64]struct{})
	for _, t := range txs {
		if t.Date.After(snapshot) {
			purchased[t.CustomerID] = struct{}{}
		}
	}

	aggs := Aggregate(snapshot, txs)
	fs := &FeatureSet{
		Snapshot:   snapshot,
		WindowDays: windowDays,
		Rows:       make([]*FeatureRow, 0, len(aggs)),
	}

	for _, a := range aggs {
		row := &FeatureRow{
			CustomerID:    a.CustomerID,
			Recency:       a.Recency,
			Frequency:     a.Frequency,
			Monetary:      a.Monetary,
			CountryRegion: countries[a.CustomerID],
		}
		if _, ok := purchased[a.CustomerID]; ok {
			row.WillPurchase = 1
			fs.Positives++
		}
		fs.Rows = append(fs.Rows, row)
	}

	slog.Debug("built features",
		"snapshot", snapshot.Format(dateLayout),
		"rows", len(fs.Rows),
		"positives", fs.Positives)

	return fs, nil
}
