package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ibrahem-ghaybour/storefront/models"
)

// SettingsStore persists the single global settings document.
type SettingsStore interface {
	Load(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

// CurrencySource is the read side consumed by the cart and order services.
type CurrencySource interface {
	Currency(ctx context.Context) (string, error)
}

// SettingsService caches the global settings for a bounded TTL to keep
// per-request store round-trips down. Writes refresh the cache immediately.
type SettingsService struct {
	store SettingsStore
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	cached   string
	loadedAt time.Time
}

func NewSettingsService(store SettingsStore, ttl time.Duration, now func() time.Time) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{store: store, ttl: ttl, now: now}
}

// Currency returns the shop currency, serving from cache while fresh.
// A shop with no settings document yet falls back to the default currency.
func (s *SettingsService) Currency(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" && s.now().Sub(s.loadedAt) < s.ttl {
		return s.cached, nil
	}

	settings, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.cached = models.DefaultCurrency
			s.loadedAt = s.now()
			return s.cached, nil
		}
		return "", err
	}

	s.cached = settings.Currency
	s.loadedAt = s.now()
	return s.cached, nil
}

// SetCurrency persists a new shop currency and refreshes the cache.
func (s *SettingsService) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := &models.Settings{
		ID:        models.SettingsKey,
		Currency:  code,
		UpdatedAt: s.now(),
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return err
	}
	s.cached = code
	s.loadedAt = s.now()
	return nil
}
