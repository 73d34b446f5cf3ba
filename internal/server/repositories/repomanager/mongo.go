package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories for one database.
type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri, checks the primary and creates the indexes the
// repositories rely on.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	m := &MongoRepositoryManager{client: client, db: client.Database(database)}

	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	return m, nil
}

func (m *MongoRepositoryManager) ensureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(users.CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(files.CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "_id", Value: -1}},
	})
	return err
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return users.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Files() files.Repository {
	return files.NewMongoRepository(m.db)
}

// Counts runs two independent counts; Mongo gives no cross-collection
// snapshot without a replica set.
func (m *MongoRepositoryManager) Counts(ctx context.Context) (int64, int64, error) {
	usersCount, err := m.Users().Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	filesCount, err := m.Files().Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return usersCount, filesCount, nil
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
