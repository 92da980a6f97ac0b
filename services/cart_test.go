package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibrahem-ghaybour/storefront/models"
)

func newCartFixture(products map[primitive.ObjectID]ProductRef) (*CartService, *fakeCartStore) {
	store := newFakeCartStore()
	svc := NewCartService(store, &fakeCatalog{products: products}, &fakeCurrency{code: "USD"}, testLogger())
	return svc, store
}

func cartTotal(cart *models.Cart) float64 {
	var total float64
	for _, item := range cart.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func TestCartGetOrCreateLazilyCreates(t *testing.T) {
	svc, store := newCartFixture(nil)
	userID := primitive.NewObjectID()

	cart, err := svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
	assert.Equal(t, "USD", cart.Currency)
	assert.Contains(t, store.carts, userID)
}

func TestCartCurrencyRefreshedOnRead(t *testing.T) {
	store := newFakeCartStore()
	currency := &fakeCurrency{code: "USD"}
	svc := NewCartService(store, &fakeCatalog{}, currency, testLogger())
	userID := primitive.NewObjectID()

	_, err := svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)

	currency.code = "EUR"
	cart, err := svc.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", cart.Currency)
}

func TestCartAddAccumulatesSameProduct(t *testing.T) {
	productID := primitive.NewObjectID()
	svc, _ := newCartFixture(map[primitive.ObjectID]ProductRef{
		productID: {ID: productID, Name: "Mug", Price: 7.5},
	})
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, productID, 2)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, userID, productID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 37.5, cart.Total)
	assert.Equal(t, cartTotal(cart), cart.Total)
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc, _ := newCartFixture(nil)

	_, err := svc.Add(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newCartFixture(nil)

	_, err := svc.Add(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCartTotalInvariantAfterMutations(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()
	svc, _ := newCartFixture(map[primitive.ObjectID]ProductRef{
		productA: {ID: productA, Name: "A", Price: 10},
		productB: {ID: productB, Name: "B", Price: 5},
	})
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, productA, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, productB, 1)
	require.NoError(t, err)
	cart, err := svc.SetQuantity(ctx, userID, productA, 4)
	require.NoError(t, err)
	assert.Equal(t, 45.0, cart.Total)
	assert.Equal(t, cartTotal(cart), cart.Total)

	cart, err = svc.Remove(ctx, userID, productB)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cart.Total)
	assert.Equal(t, cartTotal(cart), cart.Total)
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	productID := primitive.NewObjectID()
	svc, _ := newCartFixture(map[primitive.ObjectID]ProductRef{
		productID: {ID: productID, Name: "Mug", Price: 7.5},
	})
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, productID, 2)
	require.NoError(t, err)

	cart, err := svc.SetQuantity(ctx, userID, productID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
}

func TestCartSetQuantityMissingLine(t *testing.T) {
	svc, _ := newCartFixture(nil)

	_, err := svc.SetQuantity(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartRemoveAbsentProduct(t *testing.T) {
	productID := primitive.NewObjectID()
	svc, _ := newCartFixture(map[primitive.ObjectID]ProductRef{
		productID: {ID: productID, Name: "Mug", Price: 7.5},
	})
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, productID, 1)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, userID, productID)
	require.NoError(t, err)

	// A second remove of the same product is a miss.
	_, err = svc.Remove(ctx, userID, productID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartClearIsIdempotent(t *testing.T) {
	productID := primitive.NewObjectID()
	svc, _ := newCartFixture(map[primitive.ObjectID]ProductRef{
		productID: {ID: productID, Name: "Mug", Price: 7.5},
	})
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, productID, 3)
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)

	cart, err = svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)
}
