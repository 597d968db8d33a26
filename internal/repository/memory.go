package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/models"
)

// In-memory implementations of the repository interfaces. They back the
// service and handler test suites, so they mirror the Mongo implementations'
// semantics: copies in and out (no shared pointers with callers), newest-first
// sorting, and the same partial Update behavior.

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("could not find user with id %s", id)
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(ids))
	var out []*models.User
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := r.users[id]; ok {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) FindAll(_ context.Context, skip, take int64) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + take
	if end > total {
		end = total
	}
	var out []*models.User
	for _, u := range all[skip:end] {
		u := u
		out = append(out, &u)
	}
	return out, total, nil
}

func (r *MemoryUserRepository) Upsert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type convEntry struct {
	conv    models.Conversation
	touched int64
}

type MemoryConversationRepository struct {
	mu    sync.Mutex
	convs map[string]*convEntry
	seq   int64
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{convs: make(map[string]*convEntry)}
}

func (r *MemoryConversationRepository) Insert(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	r.seq++
	r.convs[conv.ID] = &convEntry{conv: cloneConversation(conv), touched: r.seq}
	return nil
}

func (r *MemoryConversationRepository) FindByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.convs[id]
	if !ok {
		return nil, apperr.NotFound("could not find conversation with id %s", id)
	}
	c := cloneConversation(&e.conv)
	return &c, nil
}

func (r *MemoryConversationRepository) FindPageByIDs(_ context.Context, ids []string, skip, take int64) ([]*models.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*convEntry
	for _, id := range ids {
		if e, ok := r.convs[id]; ok {
			entries = append(entries, e)
		}
	}
	// most recently touched first, matching the updated_at desc sort
	sort.Slice(entries, func(i, j int) bool { return entries[i].touched > entries[j].touched })
	total := int64(len(entries))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + take
	if end > total {
		end = total
	}
	var out []*models.Conversation
	for _, e := range entries[skip:end] {
		c := cloneConversation(&e.conv)
		out = append(out, &c)
	}
	return out, total, nil
}

func (r *MemoryConversationRepository) IDsByUser(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, e := range r.convs {
		if e.conv.HasUser(userID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryConversationRepository) FindAll(_ context.Context) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, e := range r.convs {
		c := cloneConversation(&e.conv)
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryConversationRepository) Update(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.convs[conv.ID]
	if !ok {
		return apperr.NotFound("could not find conversation with id %s", conv.ID)
	}
	conv.UpdatedAt = time.Now().UTC()
	e.conv.Name = conv.Name
	e.conv.UserIDs = append([]string(nil), conv.UserIDs...)
	e.conv.AdminIDs = append([]string(nil), conv.AdminIDs...)
	e.conv.LastMessage = cloneMessagePtr(conv.LastMessage)
	e.conv.UpdatedAt = conv.UpdatedAt
	r.seq++
	e.touched = r.seq
	return nil
}

type msgEntry struct {
	msg models.Message
	seq int64
}

type MemoryMessageRepository struct {
	mu   sync.Mutex
	msgs map[string]*msgEntry
	seq  int64
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{msgs: make(map[string]*msgEntry)}
}

func (r *MemoryMessageRepository) Insert(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.CreatedAt = time.Now().UTC()
	if msg.ReadBy == nil {
		msg.ReadBy = []models.ReadReceipt{}
	}
	r.seq++
	r.msgs[msg.ID] = &msgEntry{msg: cloneMessage(msg), seq: r.seq}
	return nil
}

func (r *MemoryMessageRepository) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.msgs[id]
	if !ok {
		return nil, apperr.NotFound("could not find message with id %s", id)
	}
	m := cloneMessage(&e.msg)
	return &m, nil
}

func (r *MemoryMessageRepository) FindByIDs(_ context.Context, ids []string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(ids))
	var out []*models.Message
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := r.msgs[id]; ok {
			m := cloneMessage(&e.msg)
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MemoryMessageRepository) FindPageByConversation(_ context.Context, conversationID string, skip, take int64) ([]*models.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []*msgEntry
	for _, e := range r.msgs {
		if e.msg.ConversationID == conversationID {
			entries = append(entries, e)
		}
	}
	// insertion order stands in for created_at, which can collide in tests
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })
	total := int64(len(entries))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + take
	if end > total {
		end = total
	}
	var out []*models.Message
	for _, e := range entries[skip:end] {
		m := cloneMessage(&e.msg)
		out = append(out, &m)
	}
	return out, total, nil
}

func (r *MemoryMessageRepository) Update(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.msgs[msg.ID]
	if !ok {
		return apperr.NotFound("could not find message with id %s", msg.ID)
	}
	e.msg.ReadBy = append([]models.ReadReceipt(nil), msg.ReadBy...)
	return nil
}

func cloneConversation(c *models.Conversation) models.Conversation {
	out := *c
	out.UserIDs = append([]string(nil), c.UserIDs...)
	out.AdminIDs = append([]string(nil), c.AdminIDs...)
	out.LastMessage = cloneMessagePtr(c.LastMessage)
	return out
}

func cloneMessage(m *models.Message) models.Message {
	out := *m
	out.ReadBy = append([]models.ReadReceipt(nil), m.ReadBy...)
	out.From = nil
	return out
}

func cloneMessagePtr(m *models.Message) *models.Message {
	if m == nil {
		return nil
	}
	out := cloneMessage(m)
	return &out
}
