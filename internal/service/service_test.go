package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
	"github.com/davant/chat-service/internal/roster"
)

func newTestEngines(t *testing.T) (*ConversationService, *MessageService, *repository.MemoryUserRepository) {
	t.Helper()
	log := zap.NewNop().Sugar()
	userRepo := repository.NewMemoryUserRepository()
	rosterSvc := roster.NewService(userRepo, log)
	convSvc := NewConversationService(repository.NewMemoryConversationRepository(), rosterSvc, nil, log)
	msgSvc := NewMessageService(repository.NewMemoryMessageRepository(), convSvc, rosterSvc, log)
	return convSvc, msgSvc, userRepo
}

func seedUsers(t *testing.T, repo *repository.MemoryUserRepository, ids ...string) map[string]*models.User {
	t.Helper()
	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		u := &models.User{
			ID:       id,
			Username: "user-" + id,
			Email:    id + "@example.com",
		}
		require.NoError(t, repo.Upsert(context.Background(), u))
		users[id] = u
	}
	return users
}

func mustCreate(t *testing.T, convs *ConversationService, users map[string]*models.User, creator string, participants ...string) *models.Conversation {
	t.Helper()
	members := make([]*models.User, 0, len(participants))
	for _, id := range participants {
		members = append(members, users[id])
	}
	conv, err := convs.Create(context.Background(), users[creator], members, "")
	require.NoError(t, err)
	return conv
}
