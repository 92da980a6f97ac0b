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

type AddressStore struct {
	addresses *mongo.Collection
}

func NewAddressStore(addresses *mongo.Collection) *AddressStore {
	return &AddressStore{addresses: addresses}
}

// FindActiveForUser resolves a shipping address that must belong to the
// user and still be active.
func (s *AddressStore) FindActiveForUser(ctx context.Context, userID, addressID primitive.ObjectID) (*models.Address, error) {
	var address models.Address
	err := s.addresses.FindOne(ctx, bson.M{
		"_id":    addressID,
		"userId": userID,
		"active": true,
	}).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}
