package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ibrahem-ghaybour/storefront/models"
	"github.com/ibrahem-ghaybour/storefront/services"
)

// Statuses that count toward revenue.
var revenueStatuses = []string{
	models.OrderStatusPaid,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

// StatsStore runs the dashboard aggregation pipelines. All queries are
// read-only and consider only active documents.
type StatsStore struct {
	orders *mongo.Collection
	users  *mongo.Collection
}

func NewStatsStore(orders, users *mongo.Collection) *StatsStore {
	return &StatsStore{orders: orders, users: users}
}

func revenueMatch(w services.Window) bson.M {
	return bson.M{
		"active": true,
		"status": bson.M{"$in": revenueStatuses},
		"createdAt": bson.M{
			"$gte": w.Start,
			"$lt":  w.End,
		},
	}
}

func (s *StatsStore) RevenueAndSales(ctx context.Context, w services.Window) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: revenueMatch(w)}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$total"},
			"sales":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}

	var rows []struct {
		Revenue float64 `bson:"revenue"`
		Sales   int64   `bson:"sales"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Revenue, rows[0].Sales, nil
}

func (s *StatsStore) NewUsers(ctx context.Context, w services.Window) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": w.Start, "$lt": w.End},
	})
}

func (s *StatsStore) ActiveUsers(ctx context.Context, w services.Window) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{
		"status":    models.UserStatusActive,
		"active":    true,
		"updatedAt": bson.M{"$gte": w.Start, "$lt": w.End},
	})
}

func (s *StatsStore) DailyRevenue(ctx context.Context, w services.Window) (map[string]services.DayBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: revenueMatch(w)}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"revenue": bson.M{"$sum": "$total"},
			"orders":  bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Day     string  `bson:"_id"`
		Revenue float64 `bson:"revenue"`
		Orders  int64   `bson:"orders"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	daily := make(map[string]services.DayBucket, len(rows))
	for _, row := range rows {
		daily[row.Day] = services.DayBucket{Revenue: row.Revenue, Orders: row.Orders}
	}
	return daily, nil
}

func (s *StatsStore) RecentSales(ctx context.Context, limit int64) ([]services.RecentSale, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"active": true}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$user",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$project", Value: bson.M{
			"code":      1,
			"total":     1,
			"currency":  1,
			"status":    1,
			"createdAt": 1,
			"userName":  "$user.name",
			"userEmail": "$user.email",
		}}},
	}
	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Code      string    `bson:"code"`
		Total     float64   `bson:"total"`
		Currency  string    `bson:"currency"`
		Status    string    `bson:"status"`
		CreatedAt time.Time `bson:"createdAt"`
		UserName  string    `bson:"userName"`
		UserEmail string    `bson:"userEmail"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	sales := make([]services.RecentSale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, services.RecentSale{
			Code:      row.Code,
			Total:     row.Total,
			Currency:  row.Currency,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
			UserName:  row.UserName,
			UserEmail: row.UserEmail,
		})
	}
	return sales, nil
}
