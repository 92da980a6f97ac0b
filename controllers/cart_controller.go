package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/services"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func (cc *CartController) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.carts.GetOrCreate(ctx, actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

func (cc *CartController) Add(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
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

	cart, err := cc.carts.Add(ctx, actor.ID, productID, input.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, cart)
}

// SetQuantity overwrites a line's quantity; zero removes the line.
func (cc *CartController) SetQuantity(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	var input struct {
		Quantity *int `json:"quantity" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.carts.SetQuantity(ctx, actor.ID, productID, *input.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

func (cc *CartController) Remove(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid productId")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.carts.Remove(ctx, actor.ID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}

func (cc *CartController) Clear(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.carts.Clear(ctx, actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart)
}
