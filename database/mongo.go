package database

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Manager owns the single process-wide MongoDB connection. The first caller
// that needs a handle dials; concurrent callers block on the same attempt
// instead of racing to reconnect. A failed attempt leaves the manager
// disconnected so the next call retries rather than replaying the failure.
type Manager struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewManager(uri, dbName string) *Manager {
	return &Manager{uri: uri, dbName: dbName}
}

// Database returns the connected database handle, dialing on first use.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	m.client = client
	m.db = client.Database(m.dbName)
	logrus.WithField("db", m.dbName).Info("connected to MongoDB")
	return m.db, nil
}

func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	return err
}
