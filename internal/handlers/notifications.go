package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vertexhq/vertex-api/internal/storage"
)

type NotificationsHandler struct {
	Store storage.NotificationStore
}

func NewNotificationsHandler(store storage.NotificationStore) *NotificationsHandler {
	return &NotificationsHandler{Store: store}
}

// List returns the caller's latest notifications (default 50).
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	items, err := h.Store.ListByUser(c.Context(), userID, limit)
	if err != nil {
		return fail500(c, "failed to load notifications")
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *NotificationsHandler) ListUnread(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	items, err := h.Store.ListUnread(c.Context(), userID)
	if err != nil {
		return fail500(c, "failed to load notifications")
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	count, err := h.Store.UnreadCount(c.Context(), userID)
	if err != nil {
		return fail500(c, "failed to count notifications")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"unread_count": count},
	})
}

func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid notification id",
		})
	}

	ok, err := h.Store.MarkRead(c.Context(), id, userID)
	if err != nil {
		return fail500(c, "failed to mark notification read")
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "notification not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"notification_id": id},
	})
}

func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	count, err := h.Store.MarkAllRead(c.Context(), userID)
	if err != nil {
		return fail500(c, "failed to mark notifications read")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"marked_count": count},
	})
}

func fail500(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
