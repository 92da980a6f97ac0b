package auth

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/models"
)

// Actor is the authenticated principal resolved from a bearer token.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// Elevated reports whether the actor holds a manager or admin role.
// The two are equivalent everywhere authorization is checked.
func (a Actor) Elevated() bool {
	return a.Role == models.RoleManager || a.Role == models.RoleAdmin
}

type Action string

const (
	// ActionRead and ActionWrite are owner-scoped resource access.
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	// ActionManage covers operations reserved for elevated roles, such as
	// status transitions and bulk updates.
	ActionManage Action = "manage"
)

// CanAccess is the single authorization decision consumed by every handler.
// Elevated actors may do anything; everyone else is limited to reading and
// writing resources they own.
func CanAccess(actor Actor, ownerID primitive.ObjectID, action Action) bool {
	if actor.Elevated() {
		return true
	}
	switch action {
	case ActionRead, ActionWrite:
		return actor.ID == ownerID
	default:
		return false
	}
}
