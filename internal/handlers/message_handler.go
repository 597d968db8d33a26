package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/middleware"
	"github.com/davant/chat-service/internal/models"
)

// ListMessages pages a conversation's messages. Each page reads oldest
// first even though pagination counts backward from the newest message.
func (h *ConversationHandler) ListMessages(c *fiber.Ctx) error {
	id := c.Params("id")
	page := c.QueryInt("page", 1)
	take := c.QueryInt("take", 10)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.requireAccess(ctx, id, middleware.UserID(c)); err != nil {
		return err
	}

	result, err := h.messages.FindByConversation(ctx, id, page, take)
	if err != nil {
		return err
	}
	if result.Items == nil {
		result.Items = []*models.Message{}
	}
	return c.JSON(MessagesResponse{
		Items:       result.Items,
		Total:       result.Total,
		Page:        page,
		Take:        take,
		HasNextPage: result.HasNextPage,
	})
}

type createMessageRequest struct {
	Message string `json:"message"`
}

// CreateMessage posts a message and notifies every participant over the
// bus. The publish is best effort and never fails the request.
func (h *ConversationHandler) CreateMessage(c *fiber.Ctx) error {
	id := c.Params("id")
	var req createMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if req.Message == "" {
		return apperr.InvalidState("message cannot be empty")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	userID := middleware.UserID(c)
	if err := h.requireAccess(ctx, id, userID); err != nil {
		return err
	}

	conv, err := h.conversations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	msg, err := h.messages.Create(ctx, conv, user, req.Message)
	if err != nil {
		return err
	}

	h.publisher.MessageCreated(ctx, msg, conv.UserIDs, userID)
	return c.JSON(msg)
}

type readMessagesRequest struct {
	MessageIDs []string `json:"messageIds"`
}

// ReadMessages marks the given messages as read by the caller and notifies
// the participants. Re-reading already-read messages is a no-op.
func (h *ConversationHandler) ReadMessages(c *fiber.Ctx) error {
	id := c.Params("id")
	var req readMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	userID := middleware.UserID(c)
	if err := h.requireAccess(ctx, id, userID); err != nil {
		return err
	}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	members, err := h.conversations.FindUsers(ctx, id)
	if err != nil {
		return err
	}

	msgs, err := h.messages.MarkRead(ctx, user, req.MessageIDs)
	if err != nil {
		return err
	}

	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}
	h.publisher.MessageRead(ctx, msgs, memberIDs, userID)
	return c.JSON(msgs)
}
