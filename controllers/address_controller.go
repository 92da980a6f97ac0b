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

	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/models"
)

// AddressController manages the caller's own shipping addresses.
type AddressController struct {
	addresses *mongo.Collection
}

func NewAddressController(addresses *mongo.Collection) *AddressController {
	return &AddressController{addresses: addresses}
}

func (ac *AddressController) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cursor, err := ac.addresses.Find(ctx,
		bson.M{"userId": actor.ID, "active": true},
		options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, addresses)
}

type addressInput struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" binding:"required"`
	IsDefault  bool   `json:"isDefault"`
}

func (ac *AddressController) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Creating a default unsets any existing default first so there is
	// never more than one per user.
	if input.IsDefault {
		if err := ac.unsetDefault(ctx, actor.ID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	now := time.Now()
	address := models.Address{
		ID:         primitive.NewObjectID(),
		UserID:     actor.ID,
		FullName:   input.FullName,
		Phone:      input.Phone,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		IsDefault:  input.IsDefault,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := ac.addresses.InsertOne(ctx, address); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, address)
}

func (ac *AddressController) Update(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if input.IsDefault {
		if err := ac.unsetDefault(ctx, actor.ID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	var address models.Address
	err = ac.addresses.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": actor.ID, "active": true},
		bson.M{"$set": bson.M{
			"fullName":   input.FullName,
			"phone":      input.Phone,
			"line1":      input.Line1,
			"line2":      input.Line2,
			"city":       input.City,
			"region":     input.Region,
			"postalCode": input.PostalCode,
			"country":    input.Country,
			"isDefault":  input.IsDefault,
			"updatedAt":  time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "Address not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, address)
}

func (ac *AddressController) SetDefault(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := ac.unsetDefault(ctx, actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	var address models.Address
	err = ac.addresses.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": actor.ID, "active": true},
		bson.M{"$set": bson.M{"isDefault": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "Address not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, address)
}

func (ac *AddressController) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid address id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := ac.addresses.UpdateOne(ctx,
		bson.M{"_id": id, "userId": actor.ID, "active": true},
		bson.M{"$set": bson.M{"active": false, "isDefault": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Address not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

func (ac *AddressController) unsetDefault(ctx context.Context, userID primitive.ObjectID) error {
	_, err := ac.addresses.UpdateMany(ctx,
		bson.M{"userId": userID, "isDefault": true},
		bson.M{"$set": bson.M{"isDefault": false, "updatedAt": time.Now()}},
	)
	return err
}
