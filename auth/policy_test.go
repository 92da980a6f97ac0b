package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/models"
)

func TestElevated(t *testing.T) {
	assert.True(t, Actor{Role: models.RoleManager}.Elevated())
	assert.True(t, Actor{Role: models.RoleAdmin}.Elevated())
	assert.False(t, Actor{Role: models.RoleCustomer}.Elevated())
	assert.False(t, Actor{Role: models.RoleUser}.Elevated())
	assert.False(t, Actor{Role: ""}.Elevated())
}

func TestCanAccessOwnerScoped(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	actor := Actor{ID: owner, Role: models.RoleCustomer}
	assert.True(t, CanAccess(actor, owner, ActionRead))
	assert.True(t, CanAccess(actor, owner, ActionWrite))
	assert.False(t, CanAccess(actor, stranger, ActionRead))
	assert.False(t, CanAccess(actor, stranger, ActionWrite))
}

func TestCanAccessManageRequiresElevation(t *testing.T) {
	owner := primitive.NewObjectID()

	assert.False(t, CanAccess(Actor{ID: owner, Role: models.RoleCustomer}, owner, ActionManage),
		"owning a resource does not grant manage")
	assert.True(t, CanAccess(Actor{Role: models.RoleManager}, owner, ActionManage))
	assert.True(t, CanAccess(Actor{Role: models.RoleAdmin}, primitive.NilObjectID, ActionManage))
}

func TestCanAccessElevatedBypassesOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	admin := Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	assert.True(t, CanAccess(admin, owner, ActionRead))
	assert.True(t, CanAccess(admin, owner, ActionWrite))
}
