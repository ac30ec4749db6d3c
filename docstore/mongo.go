package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// Mongo is the MongoDB-backed document store.
type Mongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// Connect dials MongoDB at uri and returns the client. The caller owns it and
// must Disconnect it on shutdown.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := bound(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewMongo returns a store over the given collection. Every call is bounded by
// timeout.
func NewMongo(coll *mongo.Collection, timeout time.Duration) *Mongo {
	return &Mongo{coll: coll, timeout: timeout}
}

// EnsureIndexes creates the unique fruit_id index Insert relies on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: models.KeyFruitID, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("fruit_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create fruit_id index: %w", err)
	}
	return nil
}

var noID = options.Find().SetProjection(bson.M{models.KeyMongoID: 0})

// FindByKeyword returns records whose name_vi or name_en contains keyword,
// ignoring case. The keyword is matched literally.
func (m *Mongo) FindByKeyword(ctx context.Context, keyword string) ([]models.Record, error) {
	return m.find(ctx, keywordFilter(keyword))
}

func keywordFilter(keyword string) bson.M {
	pattern := bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{models.KeyNameVI: pattern},
		bson.M{models.KeyNameEN: pattern},
	}}
}

// FindAll returns every record.
func (m *Mongo) FindAll(ctx context.Context) ([]models.Record, error) {
	return m.find(ctx, bson.M{})
}

func (m *Mongo) find(ctx context.Context, filter bson.M) ([]models.Record, error) {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	cursor, err := m.coll.Find(ctx, filter, noID)
	if err != nil {
		return nil, fmt.Errorf("find fruits: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode fruits: %w", err)
	}
	records := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRecord(doc))
	}
	return records, nil
}

// FindByID returns the record with fruitID or ErrNotFound.
func (m *Mongo) FindByID(ctx context.Context, fruitID string) (models.Record, error) {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	var doc bson.M
	err := m.coll.FindOne(ctx, bson.M{models.KeyFruitID: fruitID},
		options.FindOne().SetProjection(bson.M{models.KeyMongoID: 0})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find fruit %q: %w", fruitID, err)
	}
	return toRecord(doc), nil
}

// Insert stores record as a new document.
func (m *Mongo) Insert(ctx context.Context, record models.Record) error {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	// InsertOne adds _id to a bson.M it is given; keep the caller's map clean.
	doc := bson.M(record.Clone())
	_, err := m.coll.InsertOne(ctx, doc)
	return insertError(record.FruitID(), err)
}

func insertError(fruitID string, err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("insert fruit %q: %w", fruitID, ErrDuplicateKey)
	default:
		return fmt.Errorf("insert fruit %q: %w", fruitID, err)
	}
}

// UpdateFields sets the given fields on the record, leaving others intact.
// Updating a missing record is a no-op.
func (m *Mongo) UpdateFields(ctx context.Context, fruitID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	_, err := m.coll.UpdateOne(ctx, bson.M{models.KeyFruitID: fruitID}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("update fruit %q: %w", fruitID, err)
	}
	return nil
}

// UnsetFields removes the given keys from the record. Missing keys and a
// missing record are no-ops.
func (m *Mongo) UnsetFields(ctx context.Context, fruitID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	if _, err := m.coll.UpdateOne(ctx, bson.M{models.KeyFruitID: fruitID}, unsetUpdate(keys)); err != nil {
		return fmt.Errorf("unset fields of fruit %q: %w", fruitID, err)
	}
	return nil
}

func unsetUpdate(keys []string) bson.M {
	fields := make(bson.M, len(keys))
	for _, k := range keys {
		fields[k] = ""
	}
	return bson.M{"$unset": fields}
}

// Delete removes the record. Deleting a missing record is a no-op.
func (m *Mongo) Delete(ctx context.Context, fruitID string) error {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	if _, err := m.coll.DeleteOne(ctx, bson.M{models.KeyFruitID: fruitID}); err != nil {
		return fmt.Errorf("delete fruit %q: %w", fruitID, err)
	}
	return nil
}

// Count returns the number of records.
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	n, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count fruits: %w", err)
	}
	return n, nil
}

// DistinctCounts unwinds the array field and counts records per distinct
// value, most frequent first. Records where the field is missing, null,
// not an array or empty are not counted.
func (m *Mongo) DistinctCounts(ctx context.Context, field string) ([]models.ValueCount, error) {
	ctx, cancel := bound(ctx, m.timeout)
	defer cancel()

	cursor, err := m.coll.Aggregate(ctx, distinctCountsPipeline(field))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", field, err)
	}
	counts := []models.ValueCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}
	return counts, nil
}

func distinctCountsPipeline(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$type": "array", "$ne": bson.A{}}}}},
		{{Key: "$unwind", Value: "$" + field}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func toRecord(doc bson.M) models.Record {
	delete(doc, models.KeyMongoID)
	record := make(models.Record, len(doc))
	for k, v := range doc {
		record[k] = plain(v)
	}
	return record
}

// plain converts driver container types into plain maps and slices so
// records encode to JSON naturally and callers can type-switch on []any.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plain(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	}
	return v
}
