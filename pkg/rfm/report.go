package rfm

import (
	"sort"
	"time"
)

// SegmentCount is the number of customers in a segment.
type SegmentCount struct {
	Segment Segment `json:"segment" yaml:"segment"`
	Count   int     `json:"count" yaml:"count"`
}

// SegmentMonetary is the total monetary value of a segment.
type SegmentMonetary struct {
	Segment  Segment `json:"segment" yaml:"segment"`
	Monetary float64 `json:"monetary" yaml:"monetary"`
}

// Report is the segment overview rendered by the dashboard.
type Report struct {
	Snapshot        time.Time          `json:"snapshot" yaml:"snapshot"`
	Customers       int                `json:"customers" yaml:"customers"`
	SegmentCounts   []*SegmentCount    `json:"segment_counts" yaml:"segment_counts"`
	SegmentMonetary []*SegmentMonetary `json:"segment_monetary" yaml:"segment_monetary"`
	Top             []*ScoredCustomer  `json:"top" yaml:"top"`
}

// Summarize builds the segment report. Counts are ordered by size (ties in
// rule order), monetary totals by segment name and the top list holds up to
// top customers by monetary value.
func Summarize(snapshot time.Time, scored []*ScoredCustomer, top int) *Report {
	counts := make(map[Segment]int)
	totals := make(map[Segment]float64)
	for _, s := range scored {
		counts[s.Segment]++
		totals[s.Segment] += s.Monetary
	}

	r := &Report{
		Snapshot:        snapshot,
		Customers:       len(scored),
		SegmentCounts:   make([]*SegmentCount, 0, len(counts)),
		SegmentMonetary: make([]*SegmentMonetary, 0, len(totals)),
		Top:             make([]*ScoredCustomer, 0),
	}

	for seg, c := range counts {
		r.SegmentCounts = append(r.SegmentCounts, &SegmentCount{Segment: seg, Count: c})
	}
	sort.Slice(r.SegmentCounts, func(i, j int) bool {
		a, b := r.SegmentCounts[i], r.SegmentCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return segmentOrder(a.Segment) < segmentOrder(b.Segment)
	})

	for seg, m := range totals {
		r.SegmentMonetary = append(r.SegmentMonetary, &SegmentMonetary{Segment: seg, Monetary: m})
	}
	sort.Slice(r.SegmentMonetary, func(i, j int) bool {
		return r.SegmentMonetary[i].Segment < r.SegmentMonetary[j].Segment
	})

	r.Top = TopByMonetary(scored, top)
	return r
}

// TopByMonetary returns up to n customers with the highest monetary value,
// ties ordered by customer ID. The input is not modified.
func TopByMonetary(scored []*ScoredCustomer, n int) []*ScoredCustomer {
	if n <= 0 {
		return []*ScoredCustomer{}
	}

	list := make([]*ScoredCustomer, len(scored))
	copy(list, scored)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Monetary != list[j].Monetary {
			return list[i].Monetary > list[j].Monetary
		}
		return list[i].CustomerID < list[j].CustomerID
	})

	if len(list) > n {
		list = list[:n]
	}
	return list
}
