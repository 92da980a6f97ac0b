package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type orderItemPayload struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func toItemInputs(payload []orderItemPayload) []services.ItemInput {
	items := make([]services.ItemInput, 0, len(payload))
	for _, p := range payload {
		items = append(items, services.ItemInput{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	return items
}

// Create materializes an order from an explicit item list or, when items
// are omitted, from the caller's cart.
func (oc *OrderController) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input struct {
		UserID    string             `json:"userId"`
		AddressID string             `json:"addressId" binding:"required"`
		Items     []orderItemPayload `json:"items" binding:"omitempty,dive"`
		Notes     string             `json:"notes" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.Create(ctx, actor, services.CreateOrderInput{
		ForUser:   input.UserID,
		AddressID: input.AddressID,
		Items:     toItemInputs(input.Items),
		Notes:     input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

// Checkout is the cart-sourced creation path: the caller's cart becomes an
// order and is cleared on success.
func (oc *OrderController) Checkout(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input struct {
		AddressID string `json:"addressId" binding:"required"`
		Notes     string `json:"notes" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.Create(ctx, actor, services.CreateOrderInput{
		AddressID: input.AddressID,
		Notes:     input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

// CreateGuest is the unauthenticated checkout with an inline address.
func (oc *OrderController) CreateGuest(c *gin.Context) {
	var input struct {
		Items    []orderItemPayload `json:"items" binding:"required,min=1,dive"`
		Shipping struct {
			FullName   string `json:"fullName" binding:"required"`
			Phone      string `json:"phone" binding:"required"`
			Line1      string `json:"line1" binding:"required"`
			Line2      string `json:"line2"`
			City       string `json:"city" binding:"required"`
			Region     string `json:"region"`
			PostalCode string `json:"postalCode"`
			Country    string `json:"country" binding:"required"`
		} `json:"shippingAddress" binding:"required"`
		Guest struct {
			Name  string `json:"name" binding:"required"`
			Email string `json:"email" binding:"required,email"`
		} `json:"guest" binding:"required"`
		Notes string `json:"notes" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.CreateGuest(ctx, services.GuestOrderInput{
		Items: toItemInputs(input.Items),
		Shipping: models.ShippingAddress{
			FullName:   input.Shipping.FullName,
			Phone:      input.Shipping.Phone,
			Line1:      input.Shipping.Line1,
			Line2:      input.Shipping.Line2,
			City:       input.Shipping.City,
			Region:     input.Shipping.Region,
			PostalCode: input.Shipping.PostalCode,
			Country:    input.Shipping.Country,
		},
		GuestName: input.Guest.Name,
		Email:     input.Guest.Email,
		Notes:     input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

func (oc *OrderController) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	q := services.OrderListQuery{
		Status:    c.Query("status"),
		Search:    c.Query("q"),
		Page:      queryInt64(c, "page", 1),
		Limit:     queryInt64(c, "limit", 20),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if v := c.Query("minAmount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid minAmount")
			return
		}
		q.MinAmount = &f
	}
	if v := c.Query("maxAmount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid maxAmount")
			return
		}
		q.MaxAmount = &f
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid startDate")
			return
		}
		q.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid endDate")
			return
		}
		q.EndDate = &t
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, total, err := oc.orders.List(ctx, actor, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondOK(c, http.StatusOK, gin.H{
		"items": orders,
		"total": total,
		"page":  q.Page,
		"limit": q.Limit,
	})
}

func (oc *OrderController) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := oc.orders.Get(ctx, actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// Cancel is owner-only and permitted only while the order is pending.
func (oc *OrderController) Cancel(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := oc.orders.Cancel(ctx, actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// SetStatus is the elevated transition; the route group enforces the role.
func (oc *OrderController) SetStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := oc.orders.SetStatus(ctx, c.Param("id"), input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// BulkSetStatus accepts a mixed list of order codes and raw ids.
func (oc *OrderController) BulkSetStatus(c *gin.Context) {
	var input struct {
		OrderIDs []string `json:"orderIds" binding:"required,min=1"`
		Status   string   `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := oc.orders.BulkSetStatus(ctx, input.OrderIDs, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func (oc *OrderController) BulkDelete(c *gin.Context) {
	var input struct {
		OrderIDs []string `json:"orderIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := oc.orders.BulkSoftDelete(ctx, input.OrderIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
