package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Previous is the window of equal length immediately before w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
}

// DayBucket is one day's revenue and order count.
type DayBucket struct {
	Revenue float64
	Orders  int64
}

// RecentSale is one of the latest orders with the owner's contact attached.
type RecentSale struct {
	Code      string    `json:"code"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatsStore runs the aggregate queries. All order-side queries consider
// only active orders; RevenueAndSales and DailyRevenue additionally filter
// to statuses that count as revenue (paid, shipped, delivered).
type StatsStore interface {
	RevenueAndSales(ctx context.Context, w Window) (float64, int64, error)
	NewUsers(ctx context.Context, w Window) (int64, error)
	ActiveUsers(ctx context.Context, w Window) (int64, error)
	DailyRevenue(ctx context.Context, w Window) (map[string]DayBucket, error)
	RecentSales(ctx context.Context, limit int64) ([]RecentSale, error)
}

// Metric is a current/previous pair with the percent change between them.
type Metric struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
}

// OverviewPoint is one calendar day of the dashboard series.
type OverviewPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// Dashboard is the admin statistics response.
type Dashboard struct {
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Revenue       Metric          `json:"revenue"`
	Sales         Metric          `json:"sales"`
	Subscriptions Metric          `json:"subscriptions"`
	ActiveUsers   Metric          `json:"activeUsers"`
	Overview      []OverviewPoint `json:"overview"`
	RecentSales   []RecentSale    `json:"recentSales"`
}

// DashboardQuery selects the window and the recent-sales limit. Explicit
// Start/End win over the Range token.
type DashboardQuery struct {
	Range string
	Start *time.Time
	End   *time.Time
	Limit int64
}

const (
	defaultRange       = "30d"
	defaultSalesLimit  = 10
	maxSalesLimit      = 100
	overviewDateLayout = "2006-01-02"
)

// StatsService computes the dashboard. It is read-only; the five aggregate
// queries share no mutable state and run concurrently.
type StatsService struct {
	store StatsStore
	now   func() time.Time
}

func NewStatsService(store StatsStore, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{store: store, now: now}
}

func (s *StatsService) Dashboard(ctx context.Context, q DashboardQuery) (*Dashboard, error) {
	window, err := s.resolveWindow(q)
	if err != nil {
		return nil, err
	}
	previous := window.Previous()

	limit := q.Limit
	if limit < 1 {
		limit = defaultSalesLimit
	}
	if limit > maxSalesLimit {
		limit = maxSalesLimit
	}

	var (
		curRevenue, prevRevenue float64
		curSales, prevSales     int64
		curSubs, prevSubs       int64
		curActive, prevActive   int64
		daily                   map[string]DayBucket
		recent                  []RecentSale
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if curRevenue, curSales, err = s.store.RevenueAndSales(gctx, window); err != nil {
			return err
		}
		prevRevenue, prevSales, err = s.store.RevenueAndSales(gctx, previous)
		return err
	})
	g.Go(func() error {
		var err error
		if curSubs, err = s.store.NewUsers(gctx, window); err != nil {
			return err
		}
		prevSubs, err = s.store.NewUsers(gctx, previous)
		return err
	})
	g.Go(func() error {
		var err error
		if curActive, err = s.store.ActiveUsers(gctx, window); err != nil {
			return err
		}
		prevActive, err = s.store.ActiveUsers(gctx, previous)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.store.DailyRevenue(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.RecentSales(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []RecentSale{}
	}

	return &Dashboard{
		Start:         window.Start,
		End:           window.End,
		Revenue:       metric(curRevenue, prevRevenue),
		Sales:         metric(float64(curSales), float64(prevSales)),
		Subscriptions: metric(float64(curSubs), float64(prevSubs)),
		ActiveUsers:   metric(float64(curActive), float64(prevActive)),
		Overview:      buildOverview(window, daily),
		RecentSales:   recent,
	}, nil
}

func (s *StatsService) resolveWindow(q DashboardQuery) (Window, error) {
	if q.Start != nil && q.End != nil {
		if !q.End.After(*q.Start) {
			return Window{}, fmt.Errorf("%w: end must be after start", ErrInvalidInput)
		}
		return Window{Start: *q.Start, End: *q.End}, nil
	}

	token := q.Range
	if token == "" {
		token = defaultRange
	}
	end := s.now()
	start, err := rangeStart(token, end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// rangeStart parses a shorthand duration token ("30d", "12w", "6m", "1y")
// into the window's start.
func rangeStart(token string, end time.Time) (time.Time, error) {
	if len(token) < 2 {
		return time.Time{}, fmt.Errorf("%w: invalid range %q", ErrInvalidInput, token)
	}
	count, err := strconv.Atoi(token[:len(token)-1])
	if err != nil || count < 1 {
		return time.Time{}, fmt.Errorf("%w: invalid range %q", ErrInvalidInput, token)
	}
	switch token[len(token)-1] {
	case 'd':
		return end.AddDate(0, 0, -count), nil
	case 'w':
		return end.AddDate(0, 0, -7*count), nil
	case 'm':
		return end.AddDate(0, -count, 0), nil
	case 'y':
		return end.AddDate(-count, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: invalid range %q", ErrInvalidInput, token)
	}
}

// buildOverview produces one point per calendar day from start to end
// inclusive; days with no orders report zero so the series has no gaps.
func buildOverview(w Window, daily map[string]DayBucket) []OverviewPoint {
	var points []OverviewPoint
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	last := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, w.End.Location())
	for !day.After(last) {
		key := day.Format(overviewDateLayout)
		bucket := daily[key]
		points = append(points, OverviewPoint{
			Date:    key,
			Revenue: bucket.Revenue,
			Orders:  bucket.Orders,
		})
		day = day.AddDate(0, 0, 1)
	}
	return points
}

// metric computes the period-over-period percent change with the agreed
// edge cases: both zero is 0%, growth from zero is 100%.
func metric(current, previous float64) Metric {
	var change float64
	switch {
	case previous == 0 && current == 0:
		change = 0
	case previous == 0:
		change = 100
	default:
		change = (current - previous) / previous * 100
	}
	return Metric{Current: current, Previous: previous, Change: change}
}
