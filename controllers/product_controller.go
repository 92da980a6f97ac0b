package controllers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
)

type ProductController struct {
	products *mongo.Collection
}

func NewProductController(products *mongo.Collection) *ProductController {
	return &ProductController{products: products}
}

// List is the public catalog listing: active products only, filterable by
// category, name and price range.
func (pc *ProductController) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"active": true}
	if q := c.Query("q"); q != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		id, err := primitive.ObjectIDFromHex(categoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		filter["categoryId"] = id
	}
	price := bson.M{}
	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$gte"] = f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$lte"] = f
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	total, err := pc.products.CountDocuments(ctx, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cursor, err := pc.products.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"items": products,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (pc *ProductController) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	err = pc.products.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

type productInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	CategoryID  string   `json:"categoryId"`
	Images      []string `json:"images"`
}

func (pc *ProductController) Create(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Images:      input.Images,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		product.CategoryID = categoryID
	}

	if _, err := pc.products.InsertOne(ctx, product); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, product)
}

func (pc *ProductController) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	var input struct {
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Stock       *int      `json:"stock"`
		CategoryID  *string   `json:"categoryId"`
		Images      *[]string `json:"images"`
		Active      *bool     `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			respondError(c, http.StatusBadRequest, "Price must be positive")
			return
		}
		set["price"] = *input.Price
	}
	if input.Stock != nil {
		set["stock"] = *input.Stock
	}
	if input.CategoryID != nil {
		categoryID, err := primitive.ObjectIDFromHex(*input.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		set["categoryId"] = categoryID
	}
	if input.Images != nil {
		set["images"] = *input.Images
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res := pc.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var product models.Product
	if err := res.Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

func (pc *ProductController) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := pc.products.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.MatchedCount == 0 {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

func queryInt64(c *gin.Context, key string, fallback int64) int64 {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
