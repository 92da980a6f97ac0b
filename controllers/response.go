package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ibrahem-ghaybour/storefront/services"
)

// respondOK wraps data in the success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError emits a failure envelope with a client-safe message.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondBindError turns a gin binding failure into a 400 with per-field
// issues when the validator produced them.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on rule: " + fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"fields":  fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "Invalid request body")
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unexpected errors are logged server-side and never leak detail to the
// client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidState):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, "Already exists")
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
