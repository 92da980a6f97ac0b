package models

import "time"

// SettingsKey is the fixed _id of the single global settings document.
const SettingsKey = "global"

const DefaultCurrency = "USD"

type Settings struct {
	ID        string    `bson:"_id" json:"-"`
	Currency  string    `bson:"currency" json:"currency"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
