package reseller

import (
	"sort"
	"time"
)

const periodLayout = "2006-01-02"

// Sale is one reseller sales row. Joined is false when the reseller,
// territory or order date it references is missing; such rows still count
// toward the totals but not toward any breakdown.
type Sale struct {
	ResellerKey  int64     `json:"reseller_key" yaml:"reseller_key"`
	BusinessType string    `json:"business_type" yaml:"business_type"`
	Country      string    `json:"country" yaml:"country"`
	Date         time.Time `json:"date" yaml:"date"`
	Amount       float64   `json:"sales_amount" yaml:"sales_amount"`
	Joined       bool      `json:"joined" yaml:"joined"`
}

// Total is the sales amount of one group.
type Total struct {
	Name  string  `json:"name" yaml:"name"`
	Sales float64 `json:"sales_amount" yaml:"sales_amount"`
}

// Summary is the reseller sales overview.
type Summary struct {
	TotalSales          float64  `json:"total_sales" yaml:"total_sales"`
	TotalOrders         int      `json:"total_orders" yaml:"total_orders"`
	UniqueBusinessTypes int      `json:"unique_reseller_types" yaml:"unique_reseller_types"`
	ByBusinessType      []*Total `json:"sales_by_biz_type" yaml:"sales_by_biz_type"`
	ByCountry           []*Total `json:"sales_by_country" yaml:"sales_by_country"`
	ByMonth             []*Total `json:"sales_over_time" yaml:"sales_over_time"`
}

// Summarize aggregates reseller sales. businessTypes is the business type
// column of the reseller dimension; blanks are not counted as a type.
//
// Business types are ordered by sales descending (ties by name), countries
// by name. Months run from the first to the last month with a joined sale,
// empty months included at zero, and are named by their last day.
func Summarize(sales []Sale, businessTypes []string) *Summary {
	s := &Summary{
		TotalOrders:    len(sales),
		ByBusinessType: make([]*Total, 0),
		ByCountry:      make([]*Total, 0),
		ByMonth:        make([]*Total, 0),
	}

	types := make(map[string]struct{})
	for _, bt := range businessTypes {
		if bt != "" {
			types[bt] = struct{}{}
		}
	}
	s.UniqueBusinessTypes = len(types)

	byType := make(map[string]float64)
	byCountry := make(map[string]float64)
	byMonth := make(map[time.Time]float64)
	var first, last time.Time

	for _, sl := range sales {
		s.TotalSales += sl.Amount
		if !sl.Joined {
			continue
		}
		if sl.BusinessType != "" {
			byType[sl.BusinessType] += sl.Amount
		}
		if sl.Country != "" {
			byCountry[sl.Country] += sl.Amount
		}

		m := monthStart(sl.Date)
		byMonth[m] += sl.Amount
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	s.ByBusinessType = totals(byType)
	sort.Slice(s.ByBusinessType, func(i, j int) bool {
		a, b := s.ByBusinessType[i], s.ByBusinessType[j]
		if a.Sales != b.Sales {
			return a.Sales > b.Sales
		}
		return a.Name < b.Name
	})

	s.ByCountry = totals(byCountry)
	sort.Slice(s.ByCountry, func(i, j int) bool {
		return s.ByCountry[i].Name < s.ByCountry[j].Name
	})

	if !first.IsZero() {
		for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
			s.ByMonth = append(s.ByMonth, &Total{
				Name:  m.AddDate(0, 1, -1).Format(periodLayout),
				Sales: byMonth[m],
			})
		}
	}

	return s
}

func totals(m map[string]float64) []*Total {
	list := make([]*Total, 0, len(m))
	for k, v := range m {
		list = append(list, &Total{Name: k, Sales: v})
	}
	return list
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
