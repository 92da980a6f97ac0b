package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahem-ghaybour/storefront/models"
)

type fakeSettingsStore struct {
	settings *models.Settings
	loads    int
	saves    int
}

func (f *fakeSettingsStore) Load(context.Context) (*models.Settings, error) {
	f.loads++
	if f.settings == nil {
		return nil, ErrNotFound
	}
	return f.settings, nil
}

func (f *fakeSettingsStore) Save(_ context.Context, s *models.Settings) error {
	f.saves++
	f.settings = s
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCurrencyServedFromCacheWithinTTL(t *testing.T) {
	store := &fakeSettingsStore{settings: &models.Settings{ID: models.SettingsKey, Currency: "EUR"}}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewSettingsService(store, time.Minute, clock.Now)

	for i := 0; i < 3; i++ {
		code, err := svc.Currency(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "EUR", code)
		clock.Advance(10 * time.Second)
	}
	assert.Equal(t, 1, store.loads, "fresh cache must not hit the store")
}

func TestCurrencyReloadsAfterTTL(t *testing.T) {
	store := &fakeSettingsStore{settings: &models.Settings{ID: models.SettingsKey, Currency: "EUR"}}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewSettingsService(store, time.Minute, clock.Now)

	_, err := svc.Currency(context.Background())
	require.NoError(t, err)

	// The store changed behind the cache's back; the stale value is served
	// until the TTL elapses.
	store.settings = &models.Settings{ID: models.SettingsKey, Currency: "GBP"}
	clock.Advance(30 * time.Second)
	code, err := svc.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)

	clock.Advance(time.Minute)
	code, err = svc.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GBP", code)
	assert.Equal(t, 2, store.loads)
}

func TestCurrencyDefaultsWhenUnset(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(store, time.Minute, nil)

	code, err := svc.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, code)

	// The fallback is cached like any other value.
	_, err = svc.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)
}

func TestSetCurrencyRefreshesCache(t *testing.T) {
	store := &fakeSettingsStore{settings: &models.Settings{ID: models.SettingsKey, Currency: "USD"}}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewSettingsService(store, time.Hour, clock.Now)

	_, err := svc.Currency(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.SetCurrency(context.Background(), " eur "))
	assert.Equal(t, "EUR", store.settings.Currency)

	// The write-through means the next read needs no store round-trip.
	code, err := svc.Currency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", code)
	assert.Equal(t, 1, store.loads)
}

func TestSetCurrencyRejectsBadCodes(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(store, time.Minute, nil)

	for _, code := range []string{"", "EU", "EURO", "  "} {
		err := svc.SetCurrency(context.Background(), code)
		assert.ErrorIs(t, err, ErrInvalidInput, "code %q", code)
	}
	assert.Zero(t, store.saves)
}
