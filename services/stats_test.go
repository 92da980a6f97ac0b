package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsStore struct {
	revenue map[Window]float64
	sales   map[Window]int64
	users   map[Window]int64
	active  map[Window]int64
	daily   map[string]DayBucket
	recent  []RecentSale
}

func (f *fakeStatsStore) RevenueAndSales(_ context.Context, w Window) (float64, int64, error) {
	return f.revenue[w], f.sales[w], nil
}

func (f *fakeStatsStore) NewUsers(_ context.Context, w Window) (int64, error) {
	return f.users[w], nil
}

func (f *fakeStatsStore) ActiveUsers(_ context.Context, w Window) (int64, error) {
	return f.active[w], nil
}

func (f *fakeStatsStore) DailyRevenue(context.Context, Window) (map[string]DayBucket, error) {
	return f.daily, nil
}

func (f *fakeStatsStore) RecentSales(_ context.Context, limit int64) ([]RecentSale, error) {
	if int64(len(f.recent)) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

var statsNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return statsNow }

func TestDashboardEmptyWindow(t *testing.T) {
	store := &fakeStatsStore{}
	svc := NewStatsService(store, fixedNow)

	dashboard, err := svc.Dashboard(context.Background(), DashboardQuery{Range: "7d"})
	require.NoError(t, err)

	assert.Zero(t, dashboard.Revenue.Current)
	assert.Zero(t, dashboard.Sales.Current)
	assert.Zero(t, dashboard.Revenue.Change, "both windows zero means 0% change")

	// One zero-valued point per calendar day, inclusive, no gaps.
	require.Len(t, dashboard.Overview, 8)
	assert.Equal(t, "2024-06-23", dashboard.Overview[0].Date)
	assert.Equal(t, "2024-06-30", dashboard.Overview[7].Date)
	for _, point := range dashboard.Overview {
		assert.Zero(t, point.Revenue)
		assert.Zero(t, point.Orders)
	}
	assert.Empty(t, dashboard.RecentSales)
}

func TestDashboardMetricsAndChange(t *testing.T) {
	current := Window{Start: statsNow.AddDate(0, 0, -30), End: statsNow}
	previous := current.Previous()

	store := &fakeStatsStore{
		revenue: map[Window]float64{current: 300, previous: 200},
		sales:   map[Window]int64{current: 3, previous: 4},
		users:   map[Window]int64{current: 5, previous: 0},
		active:  map[Window]int64{current: 0, previous: 0},
		daily: map[string]DayBucket{
			"2024-06-29": {Revenue: 300, Orders: 3},
		},
		recent: []RecentSale{{Code: "ORD-1001", Total: 100}},
	}
	svc := NewStatsService(store, fixedNow)

	dashboard, err := svc.Dashboard(context.Background(), DashboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, 300.0, dashboard.Revenue.Current)
	assert.Equal(t, 200.0, dashboard.Revenue.Previous)
	assert.InDelta(t, 50.0, dashboard.Revenue.Change, 1e-9)
	assert.InDelta(t, -25.0, dashboard.Sales.Change, 1e-9)
	assert.Equal(t, 100.0, dashboard.Subscriptions.Change, "growth from zero reports 100%")
	assert.Zero(t, dashboard.ActiveUsers.Change)

	// 30d window spans 31 calendar days inclusive.
	require.Len(t, dashboard.Overview, 31)
	assert.Equal(t, 300.0, dashboard.Overview[29].Revenue)
	assert.Len(t, dashboard.RecentSales, 1)
}

func TestDashboardExplicitWindowWins(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	svc := NewStatsService(&fakeStatsStore{}, fixedNow)

	dashboard, err := svc.Dashboard(context.Background(), DashboardQuery{
		Range: "30d", Start: &start, End: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, start, dashboard.Start)
	assert.Equal(t, end, dashboard.End)
	assert.Len(t, dashboard.Overview, 3)
}

func TestDashboardInvalidWindow(t *testing.T) {
	svc := NewStatsService(&fakeStatsStore{}, fixedNow)

	start := statsNow
	end := statsNow.AddDate(0, 0, -1)
	_, err := svc.Dashboard(context.Background(), DashboardQuery{Start: &start, End: &end})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRangeStart(t *testing.T) {
	cases := []struct {
		token string
		want  time.Time
	}{
		{"30d", statsNow.AddDate(0, 0, -30)},
		{"12w", statsNow.AddDate(0, 0, -84)},
		{"6m", statsNow.AddDate(0, -6, 0)},
		{"1y", statsNow.AddDate(-1, 0, 0)},
	}
	for _, tc := range cases {
		got, err := rangeStart(tc.token, statsNow)
		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.want, got, tc.token)
	}

	for _, token := range []string{"", "d", "30", "30x", "-3d", "0w", "abcd"} {
		_, err := rangeStart(token, statsNow)
		assert.ErrorIs(t, err, ErrInvalidInput, token)
	}
}

func TestWindowPrevious(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
	}
	prev := w.Previous()
	assert.Equal(t, time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, w.Start, prev.End)
}

func TestMetricChangeEdgeCases(t *testing.T) {
	assert.Zero(t, metric(0, 0).Change)
	assert.Equal(t, 100.0, metric(5, 0).Change)
	assert.Equal(t, -100.0, metric(0, 10).Change)
	assert.InDelta(t, 25.0, metric(125, 100).Change, 1e-9)
}

func TestDashboardRecentSalesLimit(t *testing.T) {
	recent := make([]RecentSale, 20)
	svc := NewStatsService(&fakeStatsStore{recent: recent}, fixedNow)

	dashboard, err := svc.Dashboard(context.Background(), DashboardQuery{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, dashboard.RecentSales, 5)

	// Default limit is 10.
	dashboard, err = svc.Dashboard(context.Background(), DashboardQuery{})
	require.NoError(t, err)
	assert.Len(t, dashboard.RecentSales, 10)
}
