package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/ibrahem-ghaybour/storefront/auth"
	"github.com/ibrahem-ghaybour/storefront/models"
)

// OrderCodeSequence is the counter name behind ORD- codes.
const OrderCodeSequence = "orderCode"

const maxNotesLength = 1000

// FormatOrderCode renders a sequence value as a human-readable order code.
func FormatOrderCode(n int64) string {
	return "ORD-" + strconv.FormatInt(n, 10)
}

// OrderRef pairs an order's storage id with its human-readable code, used
// to classify mixed-identifier bulk requests.
type OrderRef struct {
	ID   primitive.ObjectID
	Code string
}

// OrderListQuery is the filtered, paginated listing request.
type OrderListQuery struct {
	UserID    *primitive.ObjectID
	Status    string
	MinAmount *float64
	MaxAmount *float64
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int64
	Limit     int64
	SortBy    string
	SortOrder string
}

// OrderStore persists orders. All reads filter on active:true unless a
// method says otherwise.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// CancelPending conditionally flips a pending order owned by userID to
	// cancelled; it reports whether the condition matched.
	CancelPending(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	FindRefs(ctx context.Context, ids []primitive.ObjectID, codes []string) ([]OrderRef, error)
	SetStatusByIDs(ctx context.Context, ids []primitive.ObjectID, status string) (int64, error)
	SoftDeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	List(ctx context.Context, q OrderListQuery) ([]models.Order, int64, error)
}

// AddressFinder resolves an address that must belong to the user and be
// active.
type AddressFinder interface {
	FindActiveForUser(ctx context.Context, userID, addressID primitive.ObjectID) (*models.Address, error)
}

// CustomerStore covers guest-checkout account provisioning.
type CustomerStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

// SequenceSource hands out the next value of a named counter; implementations
// must be atomic under concurrent callers.
type SequenceSource interface {
	Next(ctx context.Context, name string) (int64, error)
}

// ItemInput is one requested {product, quantity} pair.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput materializes an order for an authenticated caller.
// ForUser may only be set by elevated callers.
type CreateOrderInput struct {
	ForUser   string
	AddressID string
	Items     []ItemInput
	Notes     string
}

// GuestOrderInput materializes an order for an unauthenticated caller with
// an inline shipping address.
type GuestOrderInput struct {
	Items     []ItemInput
	Shipping  models.ShippingAddress
	GuestName string
	Email     string
	Notes     string
}

// BulkResult reports a mixed-identifier bulk operation without failing the
// batch on unknown tokens.
type BulkResult struct {
	Matched  int64    `json:"matched"`
	NotFound []string `json:"notFound"`
}

// OrderService converts carts and item payloads into immutable order
// snapshots and owns the status lifecycle.
type OrderService struct {
	orders    OrderStore
	carts     CartStore
	catalog   Catalog
	addresses AddressFinder
	customers CustomerStore
	seq       SequenceSource
	currency  CurrencySource
	log       *logrus.Logger
	now       func() time.Time
}

func NewOrderService(
	orders OrderStore,
	carts CartStore,
	catalog Catalog,
	addresses AddressFinder,
	customers CustomerStore,
	seq SequenceSource,
	currency CurrencySource,
	log *logrus.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		catalog:   catalog,
		addresses: addresses,
		customers: customers,
		seq:       seq,
		currency:  currency,
		log:       log,
		now:       time.Now,
	}
}

// Create materializes an order for the target user. Items come from the
// explicit payload when given, otherwise from the user's cart; the cart is
// cleared best-effort after the order commits.
func (s *OrderService) Create(ctx context.Context, actor auth.Actor, input CreateOrderInput) (*models.Order, error) {
	target := actor.ID
	if input.ForUser != "" {
		if !actor.Elevated() {
			return nil, ErrForbidden
		}
		id, err := primitive.ObjectIDFromHex(input.ForUser)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id", ErrInvalidInput)
		}
		target = id
	}

	if len(input.Notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes too long", ErrInvalidInput)
	}
	if input.AddressID == "" {
		return nil, fmt.Errorf("%w: addressId is required", ErrInvalidInput)
	}
	addressID, err := primitive.ObjectIDFromHex(input.AddressID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid addressId", ErrInvalidInput)
	}
	address, err := s.addresses.FindActiveForUser(ctx, target, addressID)
	if err != nil {
		return nil, err
	}

	requested := input.Items
	fromCart := false
	if len(requested) == 0 {
		cart, err := s.carts.FindByUser(ctx, target)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if cart == nil || len(cart.Items) == 0 {
			return nil, fmt.Errorf("%w: empty cart", ErrInvalidState)
		}
		for _, line := range cart.Items {
			requested = append(requested, ItemInput{
				ProductID: line.ProductID.Hex(),
				Quantity:  line.Quantity,
			})
		}
		fromCart = true
	}

	order, err := s.materialize(ctx, target, requested, address.Snapshot(), input.Notes)
	if err != nil {
		return nil, err
	}

	if fromCart {
		s.clearCartAfterCommit(ctx, target, order.Code)
	}
	return order, nil
}

// CreateGuest materializes an order for a guest, provisioning (or reusing,
// matched by email) a customer account to own it.
func (s *OrderService) CreateGuest(ctx context.Context, input GuestOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", ErrInvalidInput)
	}
	if len(input.Notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes too long", ErrInvalidInput)
	}

	owner, err := s.customers.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		owner, err = s.provisionCustomer(ctx, input.GuestName, input.Email)
		if err != nil {
			return nil, err
		}
	}

	return s.materialize(ctx, owner.ID, input.Items, input.Shipping, input.Notes)
}

// materialize is the all-or-nothing core: every item is re-resolved against
// the catalog at commit time so the order carries current prices, never
// client-supplied or cart-cached ones.
func (s *OrderService) materialize(
	ctx context.Context,
	userID primitive.ObjectID,
	requested []ItemInput,
	shipping models.ShippingAddress,
	notes string,
) (*models.Order, error) {
	merged, err := mergeItems(requested)
	if err != nil {
		return nil, err
	}

	var items []models.OrderItem
	var total float64
	for _, in := range merged {
		product, err := s.catalog.FindActiveByID(ctx, in.productID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s unavailable", ErrInvalidInput, in.productID.Hex())
			}
			return nil, err
		}
		subtotal := product.Price * float64(in.quantity)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  in.quantity,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	currency, err := s.currency.Currency(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.seq.Next(ctx, OrderCodeSequence)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:        primitive.NewObjectID(),
		Code:      FormatOrderCode(n),
		UserID:    userID,
		Items:     items,
		Total:     total,
		Currency:  currency,
		Status:    models.OrderStatusPending,
		Shipping:  shipping,
		Notes:     notes,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// clearCartAfterCommit is best-effort cleanup: the order already committed,
// so a failed clear is logged, not returned.
func (s *OrderService) clearCartAfterCommit(ctx context.Context, userID primitive.ObjectID, code string) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("order", code).Warn("cart clear after checkout failed")
		return
	}
	cart.Items = []models.CartItem{}
	cart.Total = 0
	cart.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, cart); err != nil {
		s.log.WithError(err).WithField("order", code).Warn("cart clear after checkout failed")
	}
}

func (s *OrderService) provisionCustomer(ctx context.Context, name, email string) (*models.User, error) {
	// Guests get a throwaway password; they reset it if they ever claim
	// the account.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
		Status:    models.UserStatusActive,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customers.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns one order; non-elevated callers may only read their own.
func (s *OrderService) Get(ctx context.Context, actor auth.Actor, idHex string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(actor, order.UserID, auth.ActionRead) {
		return nil, ErrForbidden
	}
	return order, nil
}

// List returns a filtered page of orders; non-elevated callers are scoped
// to their own.
func (s *OrderService) List(ctx context.Context, actor auth.Actor, q OrderListQuery) ([]models.Order, int64, error) {
	if q.Status != "" && !models.ValidOrderStatus(q.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status", ErrInvalidInput)
	}
	if !actor.Elevated() {
		owner := actor.ID
		q.UserID = &owner
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return s.orders.List(ctx, q)
}

// Cancel is the owner-initiated cancellation, permitted only while the
// order is exactly pending. The store-level conditional update keeps the
// rule correct under concurrent status changes.
func (s *OrderService) Cancel(ctx context.Context, actor auth.Actor, idHex string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidState, order.Status)
	}

	matched, err := s.orders.CancelPending(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Lost the race with a concurrent status change.
		return nil, fmt.Errorf("%w: order is no longer pending", ErrInvalidState)
	}

	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = s.now()
	return order, nil
}

// SetStatus is the elevated transition: any target status is accepted,
// including backward transitions. Route middleware gates it to elevated
// actors.
func (s *OrderService) SetStatus(ctx context.Context, idHex, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", ErrInvalidInput)
	}
	if err := s.orders.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// BulkSetStatus updates all matched orders and reports unmatched tokens
// without failing the batch. Tokens may be storage ids or ORD- codes.
func (s *OrderService) BulkSetStatus(ctx context.Context, tokens []string, status string) (*BulkResult, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	matchedIDs, result, err := s.resolveTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(matchedIDs) > 0 {
		if _, err := s.orders.SetStatusByIDs(ctx, matchedIDs, status); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// BulkSoftDelete flips the active flag on all matched orders.
func (s *OrderService) BulkSoftDelete(ctx context.Context, tokens []string) (*BulkResult, error) {
	matchedIDs, result, err := s.resolveTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(matchedIDs) > 0 {
		if _, err := s.orders.SoftDeleteByIDs(ctx, matchedIDs); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolveTokens classifies each token as a storage id or an order code,
// looks up both classes in one query each, and reports per-token misses.
func (s *OrderService) resolveTokens(ctx context.Context, tokens []string) ([]primitive.ObjectID, *BulkResult, error) {
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("%w: orderIds is required", ErrInvalidInput)
	}

	var ids []primitive.ObjectID
	var codes []string
	for _, token := range tokens {
		if id, err := primitive.ObjectIDFromHex(token); err == nil {
			ids = append(ids, id)
		} else {
			codes = append(codes, token)
		}
	}

	refs, err := s.orders.FindRefs(ctx, ids, codes)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]struct{}, len(refs))
	byCode := make(map[string]struct{}, len(refs))
	matched := make([]primitive.ObjectID, 0, len(refs))
	for _, ref := range refs {
		byID[ref.ID.Hex()] = struct{}{}
		byCode[ref.Code] = struct{}{}
		matched = append(matched, ref.ID)
	}

	result := &BulkResult{Matched: int64(len(matched)), NotFound: []string{}}
	for _, token := range tokens {
		if _, ok := byID[token]; ok {
			continue
		}
		if _, ok := byCode[token]; ok {
			continue
		}
		result.NotFound = append(result.NotFound, token)
	}
	return matched, result, nil
}

type mergedItem struct {
	productID primitive.ObjectID
	quantity  int
}

// mergeItems validates quantities, parses product ids and collapses
// duplicate product references into single lines.
func mergeItems(requested []ItemInput) ([]mergedItem, error) {
	var order []primitive.ObjectID
	quantities := make(map[primitive.ObjectID]int)
	for _, in := range requested {
		if in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
		}
		id, err := primitive.ObjectIDFromHex(in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid productId %q", ErrInvalidInput, in.ProductID)
		}
		if _, seen := quantities[id]; !seen {
			order = append(order, id)
		}
		quantities[id] += in.Quantity
	}

	merged := make([]mergedItem, 0, len(order))
	for _, id := range order {
		merged = append(merged, mergedItem{productID: id, quantity: quantities[id]})
	}
	return merged, nil
}
