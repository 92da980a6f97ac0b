package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

// SettingsStore persists the single global settings document under a
// fixed key.
type SettingsStore struct {
	settings *mongo.Collection
}

func NewSettingsStore(settings *mongo.Collection) *SettingsStore {
	return &SettingsStore{settings: settings}
}

func (s *SettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.settings.FindOne(ctx, bson.M{"_id": models.SettingsKey}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	_, err := s.settings.ReplaceOne(ctx,
		bson.M{"_id": models.SettingsKey},
		settings,
		options.Replace().SetUpsert(true),
	)
	return err
}
