// Package mongo implements the record store on MongoDB with the v2 driver.
// Events, devices, patients and mdr_texts are collections keyed like their
// SQL counterparts; event ids come from a counters collection so scans keep
// insertion order.
//
// Without a replica set there are no multi-document transactions, so a failed
// Insert may leave the documents before the failure stored.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"maude/internal/domain"
	"maude/internal/storage"
	"maude/internal/value"
)

// DefaultDatabase is used when the options carry no "database".
const DefaultDatabase = "maude"

// Config holds MongoDB store configuration.
type Config struct {
	URI      string
	Database string
}

// Repository is a MongoDB-backed storage.Store.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewRepository connects, pings and ensures indexes. The returned function
// disconnects the client.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return nil, nil, fmt.Errorf("mongo: URI must start with mongodb:// or mongodb+srv://")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}

	r := &Repository{client: client, db: client.Database(cfg.Database)}
	if err := r.ensureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return r, closeFn, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection("events").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "raw_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: index events: %w", err)
	}
	for _, c := range storage.Tables[1:] {
		_, err := r.db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "event_id", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("mongo: index %s: %w", c, err)
		}
	}
	return nil
}

// nextID atomically increments the events counter.
func (r *Repository) nextID(ctx context.Context) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection("counters").FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: "events"}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("mongo: next id: %w", err)
	}
	return out.Seq, nil
}

// rowDoc zips a split row with its column names. The event_id column is
// replaced by id.
func rowDoc(columns []string, row []any, id int64) bson.D {
	d := make(bson.D, 0, len(columns))
	for i, c := range columns {
		v := row[i]
		if c == "event_id" {
			v = id
		}
		d = append(d, bson.E{Key: c, Value: v})
	}
	return d
}

func (r *Repository) Insert(ctx context.Context, docs []value.Value) (storage.InsertResult, error) {
	var res storage.InsertResult
	events := r.db.Collection("events")
	for i, doc := range docs {
		split, err := storage.SplitDoc(doc)
		if err != nil {
			return res, fmt.Errorf("mongo: insert doc %d: %w", i, err)
		}
		err = events.FindOne(ctx, bson.D{{Key: "raw_hash", Value: split.Hash}}).Err()
		switch {
		case err == nil:
			res.Duplicates++
			continue
		case !errors.Is(err, mongo.ErrNoDocuments):
			return res, fmt.Errorf("mongo: lookup hash: %w", err)
		}

		id, err := r.nextID(ctx)
		if err != nil {
			return res, err
		}
		ev := append(bson.D{{Key: "_id", Value: id}}, rowDoc(storage.EventColumns, split.Event, id)...)
		if _, err := events.InsertOne(ctx, ev); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				res.Duplicates++
				continue
			}
			return res, fmt.Errorf("mongo: insert event: %w", err)
		}
		children := []struct {
			coll string
			cols []string
			rows [][]any
		}{
			{"devices", storage.DeviceColumns, split.Devices},
			{"patients", storage.PatientColumns, split.Patients},
			{"mdr_texts", storage.TextColumns, split.Texts},
		}
		for _, c := range children {
			if len(c.rows) == 0 {
				continue
			}
			many := make([]any, 0, len(c.rows))
			for _, row := range c.rows {
				many = append(many, rowDoc(c.cols, row, id))
			}
			if _, err := r.db.Collection(c.coll).InsertMany(ctx, many); err != nil {
				return res, fmt.Errorf("mongo: insert %s: %w", c.coll, err)
			}
		}
		res.Inserted++
	}
	return res, nil
}

func (r *Repository) Scan(ctx context.Context, fn func(storage.Raw) error) error {
	cur, err := r.db.Collection("events").Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetProjection(bson.D{{Key: "raw_json", Value: 1}}))
	if err != nil {
		return fmt.Errorf("mongo: scan: %w", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID   int64  `bson:"_id"`
			JSON string `bson:"raw_json"`
		}
		if err := cur.Decode(&row); err != nil {
			return fmt.Errorf("mongo: scan decode: %w", err)
		}
		if err := fn(storage.Raw{ID: row.ID, JSON: []byte(row.JSON)}); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("mongo: scan: %w", err)
	}
	return nil
}

func (r *Repository) MissingPatients(ctx context.Context) ([]domain.MissingPatient, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "patients"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "event_id"},
			{Key: "as", Value: "p"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "p", Value: bson.D{{Key: "$size", Value: 0}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{{Key: "report_number", Value: 1}}}},
	}
	cur, err := r.db.Collection("events").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo: missing patients: %w", err)
	}
	defer cur.Close(ctx)
	var out []domain.MissingPatient
	for cur.Next(ctx) {
		var row struct {
			ID           int64   `bson:"_id"`
			ReportNumber *string `bson:"report_number"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("mongo: missing patients decode: %w", err)
		}
		m := domain.MissingPatient{EventID: row.ID}
		if row.ReportNumber != nil {
			m.ReportNumber = *row.ReportNumber
		}
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo: missing patients: %w", err)
	}
	return out, nil
}

func (r *Repository) Counts(ctx context.Context) (storage.Counts, error) {
	var c storage.Counts
	dst := []*int64{&c.Events, &c.Devices, &c.Patients, &c.Texts}
	for i, name := range storage.Tables {
		n, err := r.db.Collection(name).CountDocuments(ctx, bson.D{})
		if err != nil {
			return storage.Counts{}, fmt.Errorf("mongo: count %s: %w", name, err)
		}
		*dst[i] = n
	}
	return c, nil
}

// Clear removes children first. The id counter is kept.
func (r *Repository) Clear(ctx context.Context) error {
	for i := len(storage.Tables) - 1; i >= 0; i-- {
		if _, err := r.db.Collection(storage.Tables[i]).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("mongo: clear %s: %w", storage.Tables[i], err)
		}
	}
	return nil
}

// Close is a no-op; the adapter disconnects through the cleanup function.
func (r *Repository) Close() {}
