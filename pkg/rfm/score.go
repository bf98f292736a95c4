package rfm

import (
	"log/slog"
	"math"
	"sort"
	"time"
)

const hoursPerDay = 24

// Aggregate groups transactions by customer and computes recency (whole days
// between the latest transaction and snapshot), frequency (distinct calendar
// dates) and monetary (sum of amounts). Transactions after the snapshot are
// ignored. Results are ordered by customer ID.
func Aggregate(snapshot time.Time, txs []Transaction) []*CustomerAggregate {
	type acc struct {
		agg   *CustomerAggregate
		dates map[string]struct{}
	}

	byID := make(map[int64]*acc)
	for _, t := range txs {
		if t.Date.After(snapshot) {
			continue
		}
		a, ok := byID[t.CustomerID]
		if !ok {
			a = &acc{
				agg:   &CustomerAggregate{CustomerID: t.CustomerID, LastPurchase: t.Date},
				dates: make(map[string]struct{}),
			}
			byID[t.CustomerID] = a
		}
		if t.Date.After(a.agg.LastPurchase) {
			a.agg.LastPurchase = t.Date
		}
		a.dates[t.Date.Format(dateLayout)] = struct{}{}
		a.agg.Monetary += t.Amount
	}

	list := make([]*CustomerAggregate, 0, len(byID))
	for _, a := range byID {
		a.agg.Frequency = len(a.dates)
		a.agg.Recency = daysBetween(a.agg.LastPurchase, snapshot)
		list = append(list, a.agg)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CustomerID < list[j].CustomerID
	})
	return list
}

// Score aggregates the transactions and assigns quantile based R, F and M
// scores plus a segment to every customer.
//
// Recency is bucketed on its raw values with the labels inverted, so the most
// recent buyers score 5. When several customers share a recency value the
// bucket edges can collapse and fewer than five R scores are used. Frequency
// and monetary are ranked first (ties keep customer ID order) and the ranks
// are bucketed, which always yields five buckets for two or more customers.
//
// Returns *InsufficientDataError when a dimension has fewer than two
// distinct values to bucket.
func Score(snapshot time.Time, txs []Transaction) ([]*ScoredCustomer, error) {
	aggs := Aggregate(snapshot, txs)
	slog.Debug("aggregated customers", "transactions", len(txs), "customers", len(aggs))

	recency := make([]float64, len(aggs))
	frequency := make([]float64, len(aggs))
	monetary := make([]float64, len(aggs))
	for i, a := range aggs {
		recency[i] = float64(a.Recency)
		frequency[i] = float64(a.Frequency)
		monetary[i] = a.Monetary
	}

	r, err := bucketize(DimensionRecency, recency, descendingLabels(Buckets))
	if err != nil {
		return nil, err
	}
	f, err := bucketize(DimensionFrequency, rankFirst(frequency), ascendingLabels(Buckets))
	if err != nil {
		return nil, err
	}
	m, err := bucketize(DimensionMonetary, rankFirst(monetary), ascendingLabels(Buckets))
	if err != nil {
		return nil, err
	}

	list := make([]*ScoredCustomer, len(aggs))
	for i, a := range aggs {
		list[i] = &ScoredCustomer{
			CustomerAggregate: *a,
			RScore:            r[i],
			FScore:            f[i],
			MScore:            m[i],
			Code:              scoreCode(r[i], f[i], m[i]),
			Segment:           Classify(r[i], f[i], m[i]),
		}
	}
	return list, nil
}

// DefaultSnapshot returns one day past the latest transaction, or the zero
// time when there are none.
func DefaultSnapshot(txs []Transaction) time.Time {
	latest, ok := latestDate(txs)
	if !ok {
		return time.Time{}
	}
	return latest.AddDate(0, 0, 1)
}

func latestDate(txs []Transaction) (time.Time, bool) {
	if len(txs) == 0 {
		return time.Time{}, false
	}
	latest := txs[0].Date
	for _, t := range txs[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest, true
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / hoursPerDay))
}
