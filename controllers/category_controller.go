package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
)

type CategoryController struct {
	categories *mongo.Collection
}

func NewCategoryController(categories *mongo.Collection) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cursor, err := cc.categories.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

func (cc *CategoryController) Create(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	category := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := cc.categories.InsertOne(ctx, category); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, category)
}

func (cc *CategoryController) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	var input struct {
		Name   *string `json:"name"`
		Active *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var category models.Category
	err = cc.categories.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, category)
}

func (cc *CategoryController) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := cc.categories.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Category not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}
