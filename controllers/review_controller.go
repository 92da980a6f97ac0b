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

type ReviewController struct {
	reviews  *mongo.Collection
	products *mongo.Collection
}

func NewReviewController(reviews, products *mongo.Collection) *ReviewController {
	return &ReviewController{reviews: reviews, products: products}
}

func (rc *ReviewController) ListForProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cursor, err := rc.reviews.Find(ctx,
		bson.M{"productId": productID, "active": true},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, reviews)
}

func (rc *ReviewController) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Comment   string `json:"comment" binding:"max=2000"`
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

	count, err := rc.products.CountDocuments(ctx, bson.M{"_id": productID, "active": true})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}

	review := models.Review{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if _, err := rc.reviews.InsertOne(ctx, review); err != nil {
		// Unique index on (userId, productId): one review per product.
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "You have already reviewed this product")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, review)
}

// Delete soft-deletes a review; owners delete their own, elevated actors
// any.
func (rc *ReviewController) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid review id")
		return
	}

	filter := bson.M{"_id": id, "active": true}
	if !actor.Elevated() {
		filter["userId"] = actor.ID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := rc.reviews.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Review not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}
