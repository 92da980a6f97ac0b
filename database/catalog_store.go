package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

// CatalogStore resolves products for the cart and order paths.
type CatalogStore struct {
	products *mongo.Collection
}

func NewCatalogStore(products *mongo.Collection) *CatalogStore {
	return &CatalogStore{products: products}
}

func (s *CatalogStore) FindActiveByID(ctx context.Context, id primitive.ObjectID) (*services.ProductRef, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &services.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price}, nil
}
