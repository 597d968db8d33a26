package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
)

type MessageService struct {
	msgs  repository.MessageRepository
	convs *ConversationService
	users UserDirectory
	log   *zap.SugaredLogger
}

func NewMessageService(msgs repository.MessageRepository, convs *ConversationService, users UserDirectory, log *zap.SugaredLogger) *MessageService {
	return &MessageService{msgs: msgs, convs: convs, users: users, log: log}
}

// Create persists the message, then updates the conversation's last-message
// pointer. These are two independent writes, not one transaction: a failure
// between them leaves the message durable with a stale pointer, which is
// accepted for a read-optimization field.
func (s *MessageService) Create(ctx context.Context, conv *models.Conversation, from *models.User, text string) (*models.Message, error) {
	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		FromID:         from.ID,
		Text:           text,
	}
	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if _, err := s.convs.UpdateLastMessage(ctx, conv.ID, msg); err != nil {
		return nil, err
	}
	msg.From = from
	return msg, nil
}

func (s *MessageService) FindByID(ctx context.Context, id string) (*models.Message, error) {
	msg, err := s.msgs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveSenders(ctx, []*models.Message{msg})
	return msg, nil
}

func (s *MessageService) FindByIDs(ctx context.Context, ids []string) ([]*models.Message, error) {
	msgs, err := s.msgs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.resolveSenders(ctx, msgs)
	return msgs, nil
}

// FindByConversation pages newest-first for the pagination math, then
// reverses each page so it reads oldest-first: windows count backward from
// the newest message but are delivered in chronological order.
func (s *MessageService) FindByConversation(ctx context.Context, conversationID string, page, take int) (*models.MessagePage, error) {
	skip := int64((page - 1) * take)
	items, total, err := s.msgs.FindPageByConversation(ctx, conversationID, skip, int64(take))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	s.resolveSenders(ctx, items)
	return &models.MessagePage{
		Items:       items,
		Total:       total,
		HasNextPage: int64(page*take) < total,
	}, nil
}

// MarkRead adds a receipt for the reader on every message they have not
// read yet. Already-read messages are untouched, so the call is idempotent.
// The full resolved message set is returned, including messages that were
// already read.
func (s *MessageService) MarkRead(ctx context.Context, reader *models.User, messageIDs []string) ([]*models.Message, error) {
	if len(messageIDs) == 0 {
		return []*models.Message{}, nil
	}

	msgs, err := s.FindByIDs(ctx, messageIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, msg := range msgs {
		if msg.ReadByUser(reader.ID) {
			continue
		}
		msg.ReadBy = append(msg.ReadBy, models.ReadReceipt{UserID: reader.ID, ReadAt: now})
		if err := s.msgs.Update(ctx, msg); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

// resolveSenders fills in From for each message from the roster. A sender
// that has since left the roster stays nil.
func (s *MessageService) resolveSenders(ctx context.Context, msgs []*models.Message) {
	if len(msgs) == 0 {
		return
	}
	idSet := make(map[string]bool, len(msgs))
	var ids []string
	for _, m := range msgs {
		if !idSet[m.FromID] {
			idSet[m.FromID] = true
			ids = append(ids, m.FromID)
		}
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Errorw("resolve message senders", "error", err)
		}
		return
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, m := range msgs {
		m.From = byID[m.FromID]
	}
}
