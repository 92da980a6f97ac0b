package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles accepted by the API. Manager and admin are treated as equivalent
// ("elevated") everywhere authorization is checked.
const (
	RoleCustomer = "customer"
	RoleUser     = "user"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const UserStatusActive = "active"

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Status    string             `bson:"status" json:"status"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
