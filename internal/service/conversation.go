// Package service holds the conversation and messaging engines. They own
// the domain rules around conversations, membership and messages; policy
// decisions about who may call what live in the handlers.
package service

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/cache"
	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/repository"
)

// UserDirectory resolves identities from the local roster. The engines only
// ever resolve users, they never create them.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

type ConversationService struct {
	convs repository.ConversationRepository
	users UserDirectory
	cache *cache.Conversations
	log   *zap.SugaredLogger
}

func NewConversationService(convs repository.ConversationRepository, users UserDirectory, c *cache.Conversations, log *zap.SugaredLogger) *ConversationService {
	return &ConversationService{convs: convs, users: users, cache: c, log: log}
}

// Create starts a conversation with the given participants. The caller is
// responsible for including the creator in users; the engine does not add
// them. No uniqueness check is made against existing conversations with the
// same participant set.
func (s *ConversationService) Create(ctx context.Context, createdBy *models.User, users []*models.User, name string) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Name:      name,
		UserIDs:   userIDs(users),
		AdminIDs:  []string{createdBy.ID},
		CreatedBy: createdBy.ID,
	}
	if err := s.convs.Insert(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	if conv, ok := s.cache.Get(ctx, id); ok {
		return conv, nil
	}
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, conv)
	return conv, nil
}

// FindAllByUser pages the caller's conversations, most recently active
// first. The user's conversation-id set is resolved up front so a user with
// no conversations gets an empty page without hitting the conversation
// query at all.
func (s *ConversationService) FindAllByUser(ctx context.Context, userID string, page, take int) (*models.ConversationPage, error) {
	ids, err := s.convs.IDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &models.ConversationPage{Items: []*models.Conversation{}}, nil
	}

	skip := int64((page - 1) * take)
	items, total, err := s.convs.FindPageByIDs(ctx, ids, skip, int64(take))
	if err != nil {
		return nil, err
	}
	return &models.ConversationPage{
		Items:       items,
		Total:       total,
		HasNextPage: int64(page*take) < total,
	}, nil
}

// FindByUserIDs returns the conversation whose member set equals ids
// exactly, as an unordered set. This is a linear scan; exact set equality is
// the contract, not containment.
func (s *ConversationService) FindByUserIDs(ctx context.Context, ids []string) (*models.Conversation, error) {
	want := append([]string(nil), ids...)
	sort.Strings(want)

	convs, err := s.convs.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, conv := range convs {
		have := append([]string(nil), conv.UserIDs...)
		sort.Strings(have)
		if slices.Equal(have, want) {
			return conv, nil
		}
	}
	return nil, apperr.NotFound("could not find a conversation for the given users")
}

func (s *ConversationService) HasAccess(ctx context.Context, id, userID string) (bool, error) {
	conv, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return conv.HasUser(userID), nil
}

func (s *ConversationService) HasAdminAccess(ctx context.Context, id, userID string) (bool, error) {
	conv, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return conv.HasAdmin(userID), nil
}

func (s *ConversationService) FindUsers(ctx context.Context, id string) ([]*models.User, error) {
	conv, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []*models.User{}, nil
		}
		return nil, err
	}
	return s.users.FindByIDs(ctx, conv.UserIDs)
}

func (s *ConversationService) FindAdmins(ctx context.Context, id string) ([]*models.User, error) {
	conv, err := s.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []*models.User{}, nil
		}
		return nil, err
	}
	return s.users.FindByIDs(ctx, conv.AdminIDs)
}

// AddAdmin promotes a member to admin. The handler is responsible for first
// checking that the candidate is a member and not already an admin.
func (s *ConversationService) AddAdmin(ctx context.Context, id, userID string) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	conv.AdminIDs = append(conv.AdminIDs, user.ID)
	if err := s.convs.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return conv, nil
}

// AddUsers appends resolved users to the membership. Group-only and
// duplicate-member policy is enforced by the handler before calling.
func (s *ConversationService) AddUsers(ctx context.Context, id string, ids []string) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	conv.UserIDs = append(conv.UserIDs, userIDs(users)...)
	if err := s.convs.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return conv, nil
}

// DeleteUser removes the user from the members and the admins in the same
// save, so a departing admin never lingers in the admin set.
func (s *ConversationService) DeleteUser(ctx context.Context, id, userID string) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.UserIDs = slices.DeleteFunc(conv.UserIDs, func(u string) bool { return u == userID })
	conv.AdminIDs = slices.DeleteFunc(conv.AdminIDs, func(u string) bool { return u == userID })
	if err := s.convs.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return conv, nil
}

// UpdateLastMessage sets the denormalized last-message pointer. It is a
// read optimization for conversation lists, not a correctness-critical
// field; the message collection stays authoritative.
func (s *ConversationService) UpdateLastMessage(ctx context.Context, id string, msg *models.Message) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.LastMessage = msg
	if err := s.convs.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return conv, nil
}

func userIDs(users []*models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
