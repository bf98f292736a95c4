package rfm

import (
	"fmt"
	"time"
)

const (
	// ScoreMin and ScoreMax bound every R, F and M score.
	ScoreMin = 1
	ScoreMax = 5

	// Buckets is the number of quantile buckets per dimension.
	Buckets = ScoreMax - ScoreMin + 1

	DimensionRecency   = "recency"
	DimensionFrequency = "frequency"
	DimensionMonetary  = "monetary"

	dateLayout = "2006-01-02"
)

// Transaction is a single sale attributed to a customer.
type Transaction struct {
	CustomerID int64     `json:"customer_id" yaml:"customer_id"`
	Date       time.Time `json:"date" yaml:"date"`
	Amount     float64   `json:"amount" yaml:"amount"`
}

// CustomerAggregate holds the raw RFM values of one customer as of a snapshot.
type CustomerAggregate struct {
	CustomerID   int64     `json:"customer_id" yaml:"customer_id"`
	Recency      int       `json:"recency" yaml:"recency"`
	Frequency    int       `json:"frequency" yaml:"frequency"`
	Monetary     float64   `json:"monetary" yaml:"monetary"`
	LastPurchase time.Time `json:"last_purchase" yaml:"last_purchase"`
}

// ScoredCustomer is a CustomerAggregate with its quantile scores and segment.
type ScoredCustomer struct {
	CustomerAggregate `yaml:",inline"`

	RScore  int     `json:"r_score" yaml:"r_score"`
	FScore  int     `json:"f_score" yaml:"f_score"`
	MScore  int     `json:"m_score" yaml:"m_score"`
	Code    string  `json:"rfm_score" yaml:"rfm_score"`
	Segment Segment `json:"segment" yaml:"segment"`
}

// InsufficientDataError is returned when a dimension does not have enough
// distinct values to build quantile buckets.
type InsufficientDataError struct {
	Dimension string
	Distinct  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data to bucket %s: %d distinct value(s), need at least 2",
		e.Dimension, e.Distinct)
}

func scoreCode(r, f, m int) string {
	return fmt.Sprintf("%d%d%d", r, f, m)
}
