package services

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeCatalog struct {
	products map[primitive.ObjectID]ProductRef
}

func (f *fakeCatalog) FindActiveByID(_ context.Context, id primitive.ObjectID) (*ProductRef, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

type fakeCurrency struct {
	code string
}

func (f *fakeCurrency) Currency(context.Context) (string, error) {
	return f.code, nil
}

type fakeCartStore struct {
	carts   map[primitive.ObjectID]*models.Cart
	saveErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (f *fakeCartStore) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cart, nil
}

func (f *fakeCartStore) Save(_ context.Context, cart *models.Cart) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[cart.UserID] = cart
	return nil
}

type fakeOrderStore struct {
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (f *fakeOrderStore) Insert(_ context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || !order.Active {
		return nil, ErrNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) CancelPending(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	order, ok := f.orders[id]
	if !ok || !order.Active || order.UserID != userID || order.Status != models.OrderStatusPending {
		return false, nil
	}
	order.Status = models.OrderStatusCancelled
	return true, nil
}

func (f *fakeOrderStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	order, ok := f.orders[id]
	if !ok || !order.Active {
		return ErrNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderStore) FindRefs(_ context.Context, ids []primitive.ObjectID, codes []string) ([]OrderRef, error) {
	var refs []OrderRef
	for _, id := range ids {
		if order, ok := f.orders[id]; ok && order.Active {
			refs = append(refs, OrderRef{ID: order.ID, Code: order.Code})
		}
	}
	for _, code := range codes {
		for _, order := range f.orders {
			if order.Active && order.Code == code {
				refs = append(refs, OrderRef{ID: order.ID, Code: order.Code})
			}
		}
	}
	return refs, nil
}

func (f *fakeOrderStore) SetStatusByIDs(_ context.Context, ids []primitive.ObjectID, status string) (int64, error) {
	var n int64
	for _, id := range ids {
		if order, ok := f.orders[id]; ok && order.Active {
			order.Status = status
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderStore) SoftDeleteByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	var n int64
	for _, id := range ids {
		if order, ok := f.orders[id]; ok && order.Active {
			order.Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderStore) List(_ context.Context, q OrderListQuery) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range f.orders {
		if !order.Active {
			continue
		}
		if q.UserID != nil && order.UserID != *q.UserID {
			continue
		}
		if q.Status != "" && order.Status != q.Status {
			continue
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

type fakeAddressFinder struct {
	addresses map[primitive.ObjectID]*models.Address
}

func (f *fakeAddressFinder) FindActiveForUser(_ context.Context, userID, addressID primitive.ObjectID) (*models.Address, error) {
	address, ok := f.addresses[addressID]
	if !ok || !address.Active || address.UserID != userID {
		return nil, ErrNotFound
	}
	return address, nil
}

type fakeCustomerStore struct {
	byEmail map[string]*models.User
}

func (f *fakeCustomerStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (f *fakeCustomerStore) Insert(_ context.Context, user *models.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return ErrConflict
	}
	f.byEmail[user.Email] = user
	return nil
}

type fakeSeq struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeSeq) Next(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next, nil
}
