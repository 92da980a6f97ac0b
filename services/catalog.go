package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRef is the slice of a product the cart and order paths need.
type ProductRef struct {
	ID    primitive.ObjectID
	Name  string
	Price float64
}

// Catalog resolves product identifiers to current name/price. Missing and
// inactive products are both ErrNotFound.
type Catalog interface {
	FindActiveByID(ctx context.Context, id primitive.ObjectID) (*ProductRef, error)
}
