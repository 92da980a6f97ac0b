package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/models"
)

// WishlistController keeps one wishlist document per user holding product
// ids; $addToSet and $pull keep mutation single-operation.
type WishlistController struct {
	wishlists *mongo.Collection
	products  *mongo.Collection
}

func NewWishlistController(wishlists, products *mongo.Collection) *WishlistController {
	return &WishlistController{wishlists: wishlists, products: products}
}

// Get resolves the wishlist's product ids to active product summaries.
func (wc *WishlistController) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var wishlist models.Wishlist
	err := wc.wishlists.FindOne(ctx, bson.M{"userId": actor.ID}).Decode(&wishlist)
	if err != nil {
		respondOK(c, http.StatusOK, gin.H{"items": []models.Product{}})
		return
	}

	products := []models.Product{}
	if len(wishlist.ProductIDs) > 0 {
		cursor, err := wc.products.Find(ctx, bson.M{
			"_id":    bson.M{"$in": wishlist.ProductIDs},
			"active": true,
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if err := cursor.All(ctx, &products); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	respondOK(c, http.StatusOK, gin.H{"items": products})
}

func (wc *WishlistController) Add(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := wc.products.CountDocuments(ctx, bson.M{"_id": productID, "active": true})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}

	_, err = wc.wishlists.UpdateOne(ctx,
		bson.M{"userId": actor.ID},
		bson.M{
			"$addToSet": bson.M{"productIds": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"added": true})
}

func (wc *WishlistController) Remove(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := wc.wishlists.UpdateOne(ctx,
		bson.M{"userId": actor.ID},
		bson.M{
			"$pull": bson.M{"productIds": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.ModifiedCount == 0 {
		respondError(c, http.StatusNotFound, "Product not in wishlist")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"removed": true})
}
