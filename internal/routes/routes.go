package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/apperr"
	"github.com/davant/chat-service/internal/handlers"
)

// New builds the fiber app with the error taxonomy translation installed.
func New(log *zap.SugaredLogger) *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})
}

// Register wires the conversation API under /api/v1. All conversation
// routes sit behind the auth middleware; policy checks inside the handlers
// assume an authenticated caller id.
func Register(app *fiber.App, h *handlers.ConversationHandler, auth fiber.Handler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	conversations := api.Group("/conversations")
	conversations.Use(auth)
	conversations.Post("/", h.Create)
	conversations.Get("/", h.List)
	conversations.Get("/users", h.GetByUsers)
	conversations.Get("/:id", h.Get)
	conversations.Get("/:id/users", h.GetUsers)
	conversations.Post("/:id/users", h.AddUsers)
	conversations.Put("/:id/admins/:userId", h.AddAdmin)
	conversations.Delete("/:id/users/:userId", h.RemoveUser)
	conversations.Get("/:id/messages", h.ListMessages)
	conversations.Post("/:id/messages", h.CreateMessage)
	conversations.Put("/:id/messages/read", h.ReadMessages)
}

// errorHandler maps the error taxonomy to response codes: not-found and
// access-denied stay distinguishable, invalid-state carries the violated
// rule in the body.
func errorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, apperr.ErrForbidden):
			code = fiber.StatusForbidden
		case errors.Is(err, apperr.ErrInvalidState):
			code = fiber.StatusBadRequest
		case errors.Is(err, apperr.ErrUpstream):
			code = fiber.StatusBadGateway
		case errors.As(err, &fe):
			code = fe.Code
		default:
			log.Errorw("unhandled error", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
