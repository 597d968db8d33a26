package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davant/chat-service/internal/config"
	"github.com/davant/chat-service/internal/models"
)

// NewMongoClient connects and pings so a bad URI fails at boot, not on the
// first request.
func NewMongoClient(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	FindAll(ctx context.Context, skip, take int64) ([]*models.User, int64, error)
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type ConversationRepository interface {
	Insert(ctx context.Context, conv *models.Conversation) error
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	FindPageByIDs(ctx context.Context, ids []string, skip, take int64) ([]*models.Conversation, int64, error)
	IDsByUser(ctx context.Context, userID string) ([]string, error)
	FindAll(ctx context.Context) ([]*models.Conversation, error)
	Update(ctx context.Context, conv *models.Conversation) error
}

type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.Message, error)
	FindPageByConversation(ctx context.Context, conversationID string, skip, take int64) ([]*models.Message, int64, error)
	Update(ctx context.Context, msg *models.Message) error
}
