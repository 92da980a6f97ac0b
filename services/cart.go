package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/models"
)

// CartStore persists the one-cart-per-user document.
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

// CartService owns the single mutable cart per user. Every mutation
// recomputes the aggregate total from the full item list rather than
// applying a relative delta, so the total never drifts from the lines.
type CartService struct {
	carts    CartStore
	catalog  Catalog
	currency CurrencySource
	log      *logrus.Logger
	now      func() time.Time
}

func NewCartService(carts CartStore, catalog Catalog, currency CurrencySource, log *logrus.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, currency: currency, log: log, now: time.Now}
}

// GetOrCreate loads the user's cart, lazily creating an empty one. The
// cart's currency is refreshed from settings if it has drifted.
func (s *CartService) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	currency, err := s.currency.Currency(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		now := s.now()
		cart = &models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Items:     []models.CartItem{},
			Currency:  currency,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	if cart.Currency != currency {
		cart.Currency = currency
		cart.UpdatedAt = s.now()
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Add puts quantity units of the product into the cart, accumulating onto
// an existing line rather than creating a duplicate.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidInput
	}

	product, err := s.catalog.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	s.recompute(cart)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity overwrites a line's quantity; zero removes the line. The
// product must already be in the cart.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidInput
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	s.recompute(cart)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove drops the product's line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	s.recompute(cart)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart unconditionally. It is idempotent and never
// deletes the cart document itself.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Items = []models.CartItem{}
	s.recompute(cart)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) recompute(cart *models.Cart) {
	var total float64
	for i := range cart.Items {
		cart.Items[i].Subtotal = cart.Items[i].Price * float64(cart.Items[i].Quantity)
		total += cart.Items[i].Subtotal
	}
	cart.Total = total
	cart.UpdatedAt = s.now()
}
