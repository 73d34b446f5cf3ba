package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding file documents.
const CollectionName = "files"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if _, err := r.coll.InsertOne(ctx, file); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return file, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.File, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.File, error) {
	f := &models.File{}
	if err := r.coll.FindOne(ctx, filter).Decode(f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return f, nil
}

func (r *MongoRepository) List(ctx context.Context, q ListQuery) ([]*models.File, error) {
	filter := bson.M{"userId": q.UserID}
	if q.ParentID != "" {
		filter["parentId"] = q.ParentID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*models.File, 0, q.Limit)
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return result, nil
}

func (r *MongoRepository) SetPublic(ctx context.Context, id, userID string, isPublic bool) (*models.File, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	f := &models.File{}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		opts,
	).Decode(f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return f, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo error: %w", err)
	}
	return n, nil
}
