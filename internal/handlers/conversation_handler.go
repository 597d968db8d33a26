// Package handlers is the policy boundary. Access and admin checks, group
// membership rules and input validation all happen here before anything
// reaches the engines; the engines trust their preconditions.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/events"
	"github.com/davant/chat-service/internal/middleware"
	"github.com/davant/chat-service/internal/models"
	"github.com/davant/chat-service/internal/service"
)

const requestTimeout = 5 * time.Second

type ConversationHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
	users         service.UserDirectory
	publisher     *events.Publisher
	log           *zap.SugaredLogger
}

func NewConversationHandler(
	conversations *service.ConversationService,
	messages *service.MessageService,
	users service.UserDirectory,
	publisher *events.Publisher,
	log *zap.SugaredLogger,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		users:         users,
		publisher:     publisher,
		log:           log,
	}
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

type createConversationRequest struct {
	UserIDs []string `json:"userIds"`
	Name    string   `json:"name"`
	Message string   `json:"message"`
}

// Create starts a conversation between the caller and the given users,
// optionally with a first message. Nothing prevents a second conversation
// over the same participant set.
func (h *ConversationHandler) Create(c *fiber.Ctx) error {
	var req createConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if len(req.UserIDs) == 0 {
		return apperr.InvalidState("no user ids provided")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	userID := middleware.UserID(c)
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	participants, err := h.users.FindByIDs(ctx, append([]string{userID}, req.UserIDs...))
	if err != nil {
		return err
	}

	conv, err := h.conversations.Create(ctx, user, participants, req.Name)
	if err != nil {
		return err
	}
	if req.Message != "" {
		if _, err := h.messages.Create(ctx, conv, user, req.Message); err != nil {
			return err
		}
	}

	resp, err := newConversationResponse(ctx, h.users, conv)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// List returns the caller's conversations, most recently active first.
func (h *ConversationHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	take := c.QueryInt("take", 10)

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.conversations.FindAllByUser(ctx, middleware.UserID(c), page, take)
	if err != nil {
		return err
	}

	items := make([]*ConversationResponse, 0, len(result.Items))
	for _, conv := range result.Items {
		resp, err := newConversationResponse(ctx, h.users, conv)
		if err != nil {
			return err
		}
		items = append(items, resp)
	}
	return c.JSON(ConversationsResponse{
		Items:       items,
		Total:       result.Total,
		Page:        page,
		Take:        take,
		HasNextPage: result.HasNextPage,
	})
}

// GetByUsers finds the conversation whose participant set is exactly the
// caller plus the given user ids.
func (h *ConversationHandler) GetByUsers(c *fiber.Ctx) error {
	raw := c.Query("userIds")
	if raw == "" {
		return apperr.InvalidState("no user ids provided")
	}
	userIDs := strings.Split(raw, ",")

	ctx, cancel := requestContext(c)
	defer cancel()

	ids := append([]string{middleware.UserID(c)}, userIDs...)
	conv, err := h.conversations.FindByUserIDs(ctx, ids)
	if err != nil {
		return err
	}
	resp, err := newConversationResponse(ctx, h.users, conv)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.requireAccess(ctx, id, middleware.UserID(c)); err != nil {
		return err
	}
	conv, err := h.conversations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	resp, err := newConversationResponse(ctx, h.users, conv)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *ConversationHandler) GetUsers(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.requireAccess(ctx, id, middleware.UserID(c)); err != nil {
		return err
	}
	users, err := h.conversations.FindUsers(ctx, id)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(UsersResponse{Users: users})
}

type addUsersRequest struct {
	UserIDs []string `json:"userIds"`
}

// AddUsers adds members to a group conversation. Only admins may add, the
// conversation must already be a group, and none of the candidates may be a
// member already.
func (h *ConversationHandler) AddUsers(c *fiber.Ctx) error {
	id := c.Params("id")
	var req addUsersRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if len(req.UserIDs) == 0 {
		return apperr.InvalidState("no user ids provided")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	hasAdmin, err := h.conversations.HasAdminAccess(ctx, id, middleware.UserID(c))
	if err != nil {
		return err
	}
	if !hasAdmin {
		return apperr.Forbidden("only admins can add users")
	}

	members, err := h.conversations.FindUsers(ctx, id)
	if err != nil {
		return err
	}
	for _, member := range members {
		for _, candidate := range req.UserIDs {
			if member.ID == candidate {
				return apperr.InvalidState("cannot add users that are already in the conversation")
			}
		}
	}
	if len(members) <= 2 {
		return apperr.InvalidState("cannot add users to a conversation that is not a group")
	}

	conv, err := h.conversations.AddUsers(ctx, id, req.UserIDs)
	if err != nil {
		return err
	}
	resp, err := newConversationResponse(ctx, h.users, conv)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AddAdmin promotes an existing member to admin.
func (h *ConversationHandler) AddAdmin(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Params("userId")

	ctx, cancel := requestContext(c)
	defer cancel()

	hasAdmin, err := h.conversations.HasAdminAccess(ctx, id, middleware.UserID(c))
	if err != nil {
		return err
	}
	if !hasAdmin {
		return apperr.Forbidden("no admin access to the conversation")
	}

	conv, err := h.conversations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !conv.HasUser(userID) {
		return apperr.InvalidState("cannot add an admin that is not in the conversation")
	}
	if conv.HasAdmin(userID) {
		return apperr.InvalidState("cannot add an admin that is already an admin in the conversation")
	}

	updated, err := h.conversations.AddAdmin(ctx, id, userID)
	if err != nil {
		return err
	}
	resp, err := newConversationResponse(ctx, h.users, updated)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RemoveUser removes a member; the engine drops them from the admin set in
// the same operation.
func (h *ConversationHandler) RemoveUser(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Params("userId")

	ctx, cancel := requestContext(c)
	defer cancel()

	hasAdmin, err := h.conversations.HasAdminAccess(ctx, id, middleware.UserID(c))
	if err != nil {
		return err
	}
	if !hasAdmin {
		return apperr.Forbidden("you must be an admin to remove users")
	}

	conv, err := h.conversations.DeleteUser(ctx, id, userID)
	if err != nil {
		return err
	}
	resp, err := newConversationResponse(ctx, h.users, conv)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *ConversationHandler) requireAccess(ctx context.Context, id, userID string) error {
	hasAccess, err := h.conversations.HasAccess(ctx, id, userID)
	if err != nil {
		return err
	}
	if !hasAccess {
		return apperr.Forbidden("no access to the conversation")
	}
	return nil
}
