package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

// CartStore persists one cart document per user; the unique index on
// userId backs the get-or-create semantics.
type CartStore struct {
	carts *mongo.Collection
}

func NewCartStore(carts *mongo.Collection) *CartStore {
	return &CartStore{carts: carts}
}

func (s *CartStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	_, err := s.carts.ReplaceOne(ctx,
		bson.M{"userId": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrConflict
	}
	return err
}
