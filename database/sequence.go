package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequence hands out monotonically increasing integers per named counter.
// The increment-and-fetch is a single FindOneAndUpdate with $inc, so two
// concurrent callers can never observe the same value.
type Sequence struct {
	counters *mongo.Collection
	base     int64
}

// SequenceBase offsets the raw counter so the first order code reads
// ORD-1001 rather than ORD-1.
const SequenceBase = 1000

func NewSequence(counters *mongo.Collection) *Sequence {
	return &Sequence{counters: counters, base: SequenceBase}
}

func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return s.base + doc.Seq, nil
}
