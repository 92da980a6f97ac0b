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

	"github.com/ibrahem-ghaybour/storefront/models"
)

// LocationController serves the governorate/city reference data used by
// address forms.
type LocationController struct {
	governorates *mongo.Collection
	cities       *mongo.Collection
}

func NewLocationController(governorates, cities *mongo.Collection) *LocationController {
	return &LocationController{governorates: governorates, cities: cities}
}

func (lc *LocationController) ListGovernorates(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cursor, err := lc.governorates.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	governorates := []models.Governorate{}
	if err := cursor.All(ctx, &governorates); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, governorates)
}

func (lc *LocationController) CreateGovernorate(c *gin.Context) {
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
	governorate := models.Governorate{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := lc.governorates.InsertOne(ctx, governorate); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, governorate)
}

func (lc *LocationController) DeleteGovernorate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid governorate id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := lc.governorates.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Governorate not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

// ListCities optionally filters by governorateId.
func (lc *LocationController) ListCities(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"active": true}
	if governorateID := c.Query("governorateId"); governorateID != "" {
		id, err := primitive.ObjectIDFromHex(governorateID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid governorateId")
			return
		}
		filter["governorateId"] = id
	}

	cursor, err := lc.cities.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cities := []models.City{}
	if err := cursor.All(ctx, &cities); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cities)
}

func (lc *LocationController) CreateCity(c *gin.Context) {
	var input struct {
		Name          string `json:"name" binding:"required"`
		GovernorateID string `json:"governorateId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	governorateID, err := primitive.ObjectIDFromHex(input.GovernorateID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid governorateId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := lc.governorates.CountDocuments(ctx, bson.M{"_id": governorateID, "active": true})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, "Governorate not found")
		return
	}

	now := time.Now()
	city := models.City{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		GovernorateID: governorateID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := lc.cities.InsertOne(ctx, city); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, city)
}

func (lc *LocationController) DeleteCity(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid city id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := lc.cities.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "City not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}
