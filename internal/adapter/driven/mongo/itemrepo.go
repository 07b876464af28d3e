package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

const (
	collectionName = "Items"

	fieldCode      = "code"
	fieldDesc      = "desc"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Compile-time interface satisfaction check.
var _ driven.ItemStore = (*ItemRepo)(nil)

// itemDocument is the stored shape of an item. Documents written by other
// clients may lack the timestamps or carry an _id that is not an ObjectID.
type itemDocument struct {
	ID        bson.RawValue `bson:"_id"`
	Code      string        `bson:"code"`
	Desc      string        `bson:"desc"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d itemDocument) toModel() model.Item {
	return model.Item{
		ID:          documentID(d.ID),
		Code:        d.Code,
		Description: d.Desc,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// documentID renders an _id of any BSON type as a string.
func documentID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if str, ok := v.StringValueOK(); ok {
		return str
	}
	if len(v.Value) == 0 {
		return ""
	}
	return v.String()
}

// ItemRepo is the MongoDB implementation of the ItemStore port interface.
type ItemRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewItemRepo creates a new ItemRepo over the given collection.
func NewItemRepo(coll *mongo.Collection) *ItemRepo {
	return &ItemRepo{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every item in natural order.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	items := make([]model.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toModel())
	}
	return items, nil
}

// GetByCode returns the item with the given code, or (nil, nil) if absent.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*model.Item, error) {
	var doc itemDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: fieldCode, Value: code}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %q: %w", code, err)
	}

	item := doc.toModel()
	return &item, nil
}

// InsertIfAbsent upserts with $setOnInsert so an existing document is never
// modified. A duplicate-key error from a concurrent insert of the same code
// counts as not inserted.
func (r *ItemRepo) InsertIfAbsent(ctx context.Context, item model.Item) (bool, error) {
	now := r.now()
	filter := bson.D{{Key: fieldCode, Value: item.Code}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: fieldDesc, Value: item.Description},
		{Key: fieldCreatedAt, Value: now},
		{Key: fieldUpdatedAt, Value: now},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert item %q: %w", item.Code, err)
	}
	return res.UpsertedCount == 1, nil
}

// Save sets the description of the item with the same code.
func (r *ItemRepo) Save(ctx context.Context, item model.Item) error {
	filter := bson.D{{Key: fieldCode, Value: item.Code}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldDesc, Value: item.Description},
		{Key: fieldUpdatedAt, Value: r.now()},
	}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update item %q: %w", item.Code, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("item %q: %w", item.Code, driven.ErrItemNotFound)
	}
	return nil
}

// Delete removes the item with the given code.
func (r *ItemRepo) Delete(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: fieldCode, Value: code}})
	if err != nil {
		return fmt.Errorf("delete item %q: %w", code, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("item %q: %w", code, driven.ErrItemNotFound)
	}
	return nil
}
