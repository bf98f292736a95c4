package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProgress struct {
	n int
}

func (p *countingProgress) Add(num int) error {
	p.n += num
	return nil
}

func seedSales(t *testing.T, s *Store) {
	t.Helper()

	_, err := s.DB().Exec(`INSERT INTO "Date" ("DateKey", "Date") VALUES
		(20240101, '2024-01-01'),
		(20240115, '2024-01-15 00:00:00'),
		(20240120, '2024-01-20T00:00:00Z')`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO "Customers" ("CustomerKey", "Customer", "Country-Region") VALUES
		(-1, '[Not Applicable]', '[Not Applicable]'),
		(11000, 'Jon Yang', 'Australia'),
		(11001, 'Eugene Huang', NULL)`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO "Sales" ("ResellerKey", "CustomerKey", "OrderDateKey", "Sales Amount") VALUES
		(-1, 11000, 20240101, 100),
		(-1, 11000, 20240115, 50),
		(-1, 11001, 20240120, 25.5),
		(-1, -1, 20240120, 999),
		(42, 11000, 20240120, 999),
		(-1, 11001, 19990101, 999)`)
	require.NoError(t, err)
}

func TestTransactions(t *testing.T) {
	s := setupTestStore(t)
	seedSales(t, s)
	ctx := context.Background()

	n, err := s.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	p := &countingProgress{}
	list, err := s.Transactions(ctx, p)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, p.n)

	assert.Equal(t, int64(11000), list[0].CustomerID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), list[0].Date)
	assert.InDelta(t, 100.0, list[0].Amount, 0.0001)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), list[1].Date)
	assert.Equal(t, int64(11001), list[2].CustomerID)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), list[2].Date)
}

func TestTransactions_NilProgress(t *testing.T) {
	s := setupTestStore(t)
	seedSales(t, s)

	list, err := s.Transactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestTransactions_EmptyStore(t *testing.T) {
	s := setupTestStore(t)

	list, err := s.Transactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransactions_NilStore(t *testing.T) {
	var s *Store
	_, err := s.Transactions(context.Background(), nil)
	assert.Error(t, err)
	_, err = s.CountTransactions(context.Background())
	assert.Error(t, err)
	_, err = s.Customers(context.Background())
	assert.Error(t, err)
}

func TestCustomers(t *testing.T) {
	s := setupTestStore(t)
	seedSales(t, s)

	m, err := s.Customers(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, "Jon Yang", m[11000].Name)
	assert.Equal(t, "Australia", m[11000].CountryRegion)
	assert.Equal(t, "", m[11001].CountryRegion)

	c := Countries(m)
	assert.Equal(t, map[int64]string{11000: "Australia", 11001: ""}, c)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2017, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []string{
		"2017-07-01",
		"2017-07-01 00:00:00",
		"2017-07-01T00:00:00Z",
		"2017-07-01T00:00:00",
		" 2017-07-01 ",
	}
	for _, v := range tests {
		got, err := parseDate(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, v)
	}

	_, err := parseDate("07/01/2017")
	assert.Error(t, err)
}
