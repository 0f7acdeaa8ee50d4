// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Ensure reconciles the desired indexes of one collection. It is idempotent:
an index with the same keys and uniqueness is reused, one with the same keys
under another name is renamed, and one whose options changed is dropped and
recreated. Problems are aggregated so every failing index is reported.
*/
func Ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := list(ctx, coll)
	if err != nil {
		return fmt.Errorf("%s: list indexes: %w", coll.Name(), err)
	}

	var errs []string
	for _, m := range models {
		if err := ensureOne(ctx, coll, m, existing); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func list(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[KeySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureOne(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, existing map[string]existingIndex) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	keys, ok := m.Keys.(bson.D)
	if !ok {
		return fmt.Errorf("%s(%s): keys must be bson.D", coll.Name(), name)
	}
	sig := KeySig(keys)
	start := time.Now()

	if ex, found := existing[sig]; found {
		if sameBoolPtr(unique, ex.Unique) && (name == "" || ex.Name == name) {
			zap.L().Debug("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop %s: %w", coll.Name(), name, ex.Name, err)
		}
		zap.L().Info("dropped index for recreation",
			zap.String("collection", coll.Name()),
			zap.String("from", ex.Name),
			zap.String("to", name))
	}

	created, err := coll.Indexes().CreateOne(ctx, m)
	if err != nil {
		if isDuplicateKeyErr(err) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	zap.L().Info("index ensured",
		zap.String("collection", coll.Name()),
		zap.String("name", created),
		zap.String("keys", sig),
		zap.Duration("took", time.Since(start)))
	return nil
}

// KeySig renders an index key pattern, e.g. "login:1, created_at:-1".
func KeySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
