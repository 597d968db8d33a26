package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/models"
)

type conversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepository(coll *mongo.Collection) ConversationRepository {
	// membership lookups filter on the user_ids array
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_ids", Value: 1}},
		Options: options.Index().SetName("user_ids_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &conversationRepo{coll: coll}
}

func (r *conversationRepo) Insert(ctx context.Context, conv *models.Conversation) error {
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, conv)
	return err
}

func (r *conversationRepo) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("could not find conversation with id %s", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepo) FindPageByIDs(ctx context.Context, ids []string, skip, take int64) ([]*models.Conversation, int64, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(take)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, cur.Err()
}

func (r *conversationRepo) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"user_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func (r *conversationRepo) FindAll(ctx context.Context) ([]*models.Conversation, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *conversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	conv.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, conv.ID, bson.M{"$set": bson.M{
		"name":         conv.Name,
		"user_ids":     conv.UserIDs,
		"admin_ids":    conv.AdminIDs,
		"last_message": conv.LastMessage,
		"updated_at":   conv.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("could not find conversation with id %s", conv.ID)
	}
	return nil
}
