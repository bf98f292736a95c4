package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedResellers(t *testing.T, s *Store) {
	t.Helper()

	_, err := s.DB().Exec(`INSERT INTO "Date" ("DateKey", "Date") VALUES
		(20240105, '2024-01-05'),
		(20240310, '2024-03-10 00:00:00')`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO "Resellers" ("ResellerKey", "Business Type", "Reseller") VALUES
		(1, 'Warehouse', 'Bike Depot'),
		(2, 'Specialty Bike Shop', 'Spoke Shop'),
		(3, NULL, 'Unknown Type')`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO "Territories" ("SalesTerritoryKey", "Region", "Country") VALUES
		(1, 'Northwest', 'United States'),
		(6, 'Canada', 'Canada')`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO "Sales" ("ResellerKey", "CustomerKey", "OrderDateKey", "SalesTerritoryKey", "Sales Amount") VALUES
		(1, -1, 20240105, 1, 100),
		(2, -1, 20240310, 6, 200),
		(7, -1, 20240310, 6, 5),
		(-1, 11000, 20240105, 1, 999)`)
	require.NoError(t, err)
}

func TestResellerSales(t *testing.T) {
	s := setupTestStore(t)
	seedResellers(t, s)

	list, err := s.ResellerSales(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	byKey := make(map[int64]int)
	for i, sl := range list {
		byKey[sl.ResellerKey] = i
	}

	first := list[byKey[1]]
	assert.True(t, first.Joined)
	assert.Equal(t, "Warehouse", first.BusinessType)
	assert.Equal(t, "United States", first.Country)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.InDelta(t, 100.0, first.Amount, 0.0001)

	second := list[byKey[2]]
	assert.True(t, second.Joined)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), second.Date)

	orphan := list[byKey[7]]
	assert.False(t, orphan.Joined)
	assert.Empty(t, orphan.BusinessType)
	assert.InDelta(t, 5.0, orphan.Amount, 0.0001)
}

func TestBusinessTypes(t *testing.T) {
	s := setupTestStore(t)
	seedResellers(t, s)

	list, err := s.BusinessTypes(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Warehouse", "Specialty Bike Shop"}, list)
}

func TestResellerSales_NilStore(t *testing.T) {
	var s *Store
	_, err := s.ResellerSales(context.Background())
	assert.Error(t, err)
	_, err = s.BusinessTypes(context.Background())
	assert.Error(t, err)
}
