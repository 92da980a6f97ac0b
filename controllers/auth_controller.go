package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/ibrahem-ghaybour/storefront/auth"
	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/models"
)

type AuthController struct {
	users    *mongo.Collection
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthController(users *mongo.Collection, secret []byte, tokenTTL time.Duration) *AuthController {
	return &AuthController{users: users, secret: secret, tokenTTL: tokenTTL}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	err := ac.users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		respondError(c, http.StatusConflict, "Email already registered")
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		respondServiceError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
		Status:    models.UserStatusActive,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ac.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "Email already registered")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.users.FindOne(ctx, bson.M{
		"email":  strings.ToLower(strings.TrimSpace(input.Email)),
		"active": true,
	}).Decode(&user)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.IssueToken(ac.secret, user.ID.Hex(), user.Role, ac.tokenTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"token": token, "user": user})
}

func (ac *AuthController) Me(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.users.FindOne(ctx, bson.M{"_id": actor.ID, "active": true}).Decode(&user)
	if err != nil {
		respondError(c, http.StatusNotFound, "Not found")
		return
	}
	respondOK(c, http.StatusOK, user)
}
