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

type messageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepository(coll *mongo.Collection) MessageRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("conversation_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &messageRepo{coll: coll}
}

func (r *messageRepo) Insert(ctx context.Context, msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()
	if msg.ReadBy == nil {
		msg.ReadBy = []models.ReadReceipt{}
	}
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("could not find message with id %s", id)
		}
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) FindByIDs(ctx context.Context, ids []string) ([]*models.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *messageRepo) FindPageByConversation(ctx context.Context, conversationID string, skip, take int64) ([]*models.Message, int64, error) {
	filter := bson.M{"conversation_id": conversationID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(take)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, 0, err
		}
		out = append(out, &m)
	}
	return out, total, cur.Err()
}

func (r *messageRepo) Update(ctx context.Context, msg *models.Message) error {
	res, err := r.coll.UpdateByID(ctx, msg.ID, bson.M{"$set": bson.M{
		"read_by": msg.ReadBy,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("could not find message with id %s", msg.ID)
	}
	return nil
}
