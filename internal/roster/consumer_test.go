package roster

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
)

func newTestConsumer(t *testing.T) (*Consumer, *Service, *repository.MemoryUserRepository) {
	t.Helper()
	log := zap.NewNop().Sugar()
	repo := repository.NewMemoryUserRepository()
	svc := NewService(repo, log)
	return NewConsumer(svc, log), svc, repo
}

func payload(t *testing.T, u ExternalUser) []byte {
	t.Helper()
	b, err := json.Marshal(u)
	require.NoError(t, err)
	return b
}

func TestHandleUserCreated(t *testing.T) {
	consumer, svc, _ := newTestConsumer(t)

	consumer.Handle(TopicUserCreated, payload(t, ExternalUser{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
	}))

	user, err := svc.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestHandleUserUpdatedOverwritesProfile(t *testing.T) {
	consumer, svc, repo := newTestConsumer(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "u1", Email: "old@example.com"}))

	consumer.Handle(TopicUserUpdated, payload(t, ExternalUser{
		ID:    "u1",
		Email: "new@example.com",
	}))

	user, err := svc.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestHandleUserDeleted(t *testing.T) {
	consumer, svc, repo := newTestConsumer(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "u1"}))

	consumer.Handle(TopicUserDeleted, payload(t, ExternalUser{ID: "u1"}))

	_, err := svc.FindByID(ctx, "u1")
	assert.Error(t, err)
}

func TestHandleUserDeletedUnknownUser(t *testing.T) {
	consumer, _, _ := newTestConsumer(t)

	// deleting a user that was never cached is a logged no-op
	consumer.Handle(TopicUserDeleted, payload(t, ExternalUser{ID: "ghost"}))
}

func TestHandleMalformedPayload(t *testing.T) {
	consumer, _, _ := newTestConsumer(t)

	consumer.Handle(TopicUserCreated, []byte("{not json"))
}
