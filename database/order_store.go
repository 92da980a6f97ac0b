package database

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

// OrderStore persists order snapshots. Every read filters active:true, so
// soft-deleted orders disappear from all default paths.
type OrderStore struct {
	orders *mongo.Collection
}

func NewOrderStore(orders *mongo.Collection) *OrderStore {
	return &OrderStore{orders: orders}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	_, err := s.orders.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrConflict
	}
	return err
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id, "active": true}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// CancelPending flips a pending order to cancelled only when the ownership
// and status conditions still hold at update time.
func (s *OrderStore) CancelPending(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := s.orders.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"userId": userID,
			"status": models.OrderStatusPending,
			"active": true,
		},
		bson.M{"$set": bson.M{
			"status":    models.OrderStatusCancelled,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *OrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// FindRefs returns id/code pairs for every active order matching either
// identifier class.
func (s *OrderStore) FindRefs(ctx context.Context, ids []primitive.ObjectID, codes []string) ([]services.OrderRef, error) {
	var or []bson.M
	if len(ids) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": ids}})
	}
	if len(codes) > 0 {
		or = append(or, bson.M{"code": bson.M{"$in": codes}})
	}
	if len(or) == 0 {
		return nil, nil
	}

	cursor, err := s.orders.Find(ctx,
		bson.M{"active": true, "$or": or},
		options.Find().SetProjection(bson.M{"_id": 1, "code": 1}),
	)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Code string             `bson:"code"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	refs := make([]services.OrderRef, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, services.OrderRef{ID: d.ID, Code: d.Code})
	}
	return refs, nil
}

func (s *OrderStore) SetStatusByIDs(ctx context.Context, ids []primitive.ObjectID, status string) (int64, error) {
	res, err := s.orders.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "active": true},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *OrderStore) SoftDeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	res, err := s.orders.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "active": true},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

var orderSortFields = map[string]string{
	"createdAt": "createdAt",
	"total":     "total",
	"status":    "status",
	"code":      "code",
}

func (s *OrderStore) List(ctx context.Context, q services.OrderListQuery) ([]models.Order, int64, error) {
	filter := bson.M{"active": true}
	if q.UserID != nil {
		filter["userId"] = *q.UserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	amount := bson.M{}
	if q.MinAmount != nil {
		amount["$gte"] = *q.MinAmount
	}
	if q.MaxAmount != nil {
		amount["$lte"] = *q.MaxAmount
	}
	if len(amount) > 0 {
		filter["total"] = amount
	}
	created := bson.M{}
	if q.StartDate != nil {
		created["$gte"] = *q.StartDate
	}
	if q.EndDate != nil {
		created["$lte"] = *q.EndDate
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}
	if q.Search != "" {
		filter["code"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}

	total, err := s.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField, ok := orderSortFields[q.SortBy]
	if !ok {
		sortField = "createdAt"
	}
	sortDir := -1
	if q.SortOrder == "asc" {
		sortDir = 1
	}

	cursor, err := s.orders.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDir}}).
		SetSkip((q.Page-1)*q.Limit).
		SetLimit(q.Limit),
	)
	if err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
