// Package mongodb is the document storage backend.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
)

const (
	identitiesCollection = "identities"
	schedulesCollection  = "work_schedules"
	dayRecordsCollection = "day_records"
	countersCollection   = "counters"
)

// Gateway keeps one collection per entity plus a counters collection that
// hands out numeric ids.
type Gateway struct {
	db         *database.MongoDB
	identities *mongo.Collection
	schedules  *mongo.Collection
	dayRecords *mongo.Collection
	counters   *mongo.Collection

	// transactions is set by Initialize when the deployment is a replica set
	// or sharded cluster.
	transactions bool
}

var _ storage.Gateway = (*Gateway)(nil)

func NewGateway(db *database.MongoDB) *Gateway {
	return &Gateway{
		db:         db,
		identities: db.Database.Collection(identitiesCollection),
		schedules:  db.Database.Collection(schedulesCollection),
		dayRecords: db.Database.Collection(dayRecordsCollection),
		counters:   db.Database.Collection(countersCollection),
	}
}

// nextID increments and returns the named sequence.
func (g *Gateway) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := g.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storage.Wrap("next id "+name, err)
	}
	return counter.Seq, nil
}

// EnsureIndexes creates the unique keys the contract relies on.
func (g *Gateway) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		g.identities: {
			{Keys: bson.D{{Key: "cpf", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		g.schedules: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "weekday", Value: 1}}},
		},
		g.dayRecords: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return storage.Wrap(fmt.Sprintf("create indexes on %s", coll.Name()), err)
		}
	}
	return nil
}

func (g *Gateway) Initialize(ctx context.Context) error {
	if err := g.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := g.detectTransactions(ctx); err != nil {
		return err
	}

	admin, err := g.GetAdminIdentity(ctx)
	if err != nil {
		return err
	}
	if admin != nil {
		return nil
	}

	def, err := storage.DefaultAdmin()
	if err != nil {
		return err
	}
	if _, err := g.CreateIdentity(ctx, def); err != nil && !errors.Is(err, identity.ErrCPFExists) {
		return err
	}
	return nil
}

// detectTransactions asks the server whether it is part of a replica set or
// a mongos router. Standalone servers reject multi-document transactions.
func (g *Gateway) detectTransactions(ctx context.Context) error {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := g.db.Client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return storage.Wrap("hello", err)
	}

	g.transactions = hello.SetName != "" || hello.Msg == "isdbgrid"
	if !g.transactions {
		slog.Warn("MongoDB deployment is standalone; multi-step writes are not atomic")
	}
	return nil
}

// SupportsTransactions reports what Initialize detected.
func (g *Gateway) SupportsTransactions() bool {
	return g.transactions
}

// WithinTransaction runs fn in a session transaction on replica sets and
// sharded clusters. The driver may run fn again on a transient error. On a
// standalone server fn runs as plain sequential calls, and a failure midway
// leaves earlier writes in place. Nested calls join the outer transaction.
func (g *Gateway) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !g.transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := g.db.Client.StartSession()
	if err != nil {
		return storage.Wrap("start session", err)
	}
	defer sess.EndSession(ctx)

	var fnErr error
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		fnErr = fn(sc)
		return nil, fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storage.Wrap("commit transaction", err)
}

func (g *Gateway) Ping(ctx context.Context) error {
	return storage.Wrap("ping", g.db.Client.Ping(ctx, readpref.Primary()))
}

func (g *Gateway) Close(ctx context.Context) error {
	return storage.Wrap("close", g.db.Close(ctx))
}

// DropAll removes every collection. Used by tests.
func (g *Gateway) DropAll(ctx context.Context) error {
	for _, coll := range []*mongo.Collection{g.identities, g.schedules, g.dayRecords, g.counters} {
		if err := coll.Drop(ctx); err != nil {
			return storage.Wrap("drop "+coll.Name(), err)
		}
	}
	return nil
}
