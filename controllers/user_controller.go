package controllers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
)

// UserController is the elevated-only user administration surface.
type UserController struct {
	users *mongo.Collection
}

func NewUserController(users *mongo.Collection) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"active": true}
	if q := c.Query("q"); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = []bson.M{{"name": re}, {"email": re}}
	}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}

	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	total, err := uc.users.CountDocuments(ctx, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cursor, err := uc.users.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"items": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (uc *UserController) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.users.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

func (uc *UserController) UpdateRole(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var input struct {
		Role string `json:"role" binding:"required,oneof=customer user manager admin"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"role": input.Role, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

func (uc *UserController) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := uc.users.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}
