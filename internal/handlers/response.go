package handlers

import (
	"context"
	"time"

	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/service"
)

type ConversationResponse struct {
	ID          string          `json:"conversationId"`
	Name        string          `json:"name"`
	Users       []*models.User  `json:"users"`
	Admins      []*models.User  `json:"admins"`
	CreatedBy   string          `json:"createdBy"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ConversationsResponse struct {
	Items       []*ConversationResponse `json:"items"`
	Total       int64                   `json:"total"`
	Page        int                     `json:"page"`
	Take        int                     `json:"take"`
	HasNextPage bool                    `json:"hasNextPage"`
}

type MessagesResponse struct {
	Items       []*models.Message `json:"items"`
	Total       int64             `json:"total"`
	Page        int               `json:"page"`
	Take        int               `json:"take"`
	HasNextPage bool              `json:"hasNextPage"`
}

type UsersResponse struct {
	Users []*models.User `json:"users"`
}

// newConversationResponse resolves the member and admin id sets through the
// roster in one lookup per conversation.
func newConversationResponse(ctx context.Context, users service.UserDirectory, conv *models.Conversation) (*ConversationResponse, error) {
	members, err := users.FindByIDs(ctx, conv.UserIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.User, len(members))
	for _, u := range members {
		byID[u.ID] = u
	}
	var admins []*models.User
	for _, id := range conv.AdminIDs {
		if u, ok := byID[id]; ok {
			admins = append(admins, u)
		}
	}
	if members == nil {
		members = []*models.User{}
	}
	if admins == nil {
		admins = []*models.User{}
	}
	return &ConversationResponse{
		ID:          conv.ID,
		Name:        conv.Name,
		Users:       members,
		Admins:      admins,
		CreatedBy:   conv.CreatedBy,
		LastMessage: conv.LastMessage,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}, nil
}
