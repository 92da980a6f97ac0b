package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections bundles the named collection handles the way the handlers
// consume them.
type Collections struct {
	Users        *mongo.Collection
	Products     *mongo.Collection
	Categories   *mongo.Collection
	Governorates *mongo.Collection
	Cities       *mongo.Collection
	Carts        *mongo.Collection
	Orders       *mongo.Collection
	Addresses    *mongo.Collection
	Reviews      *mongo.Collection
	Wishlists    *mongo.Collection
	Settings     *mongo.Collection
	Counters     *mongo.Collection
}

func NewCollections(db *mongo.Database) *Collections {
	return &Collections{
		Users:        db.Collection("users"),
		Products:     db.Collection("products"),
		Categories:   db.Collection("categories"),
		Governorates: db.Collection("governorates"),
		Cities:       db.Collection("cities"),
		Carts:        db.Collection("carts"),
		Orders:       db.Collection("orders"),
		Addresses:    db.Collection("addresses"),
		Reviews:      db.Collection("reviews"),
		Wishlists:    db.Collection("wishlists"),
		Settings:     db.Collection("settings"),
		Counters:     db.Collection("counters"),
	}
}

// EnsureIndexes creates the unique indexes the data model relies on:
// one cart and one wishlist per user, unique user emails, unique order
// codes, and one review per user per product.
func (c *Collections) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := c.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = c.Carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = c.Wishlists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = c.Orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}}, Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = c.Reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
