package audit

import (
	"fmt"

	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=...&limit=...
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 100
		if limStr := c.Query("limit"); limStr != "" {
			if _, err := fmt.Sscan(limStr, &limit); err != nil || limit < 1 || limit > 500 {
				return fiber.NewError(fiber.StatusBadRequest, "limit is invalid")
			}
		}

		dbq := database.DB.Model(&models.AuditLog{})
		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		return c.JSON(logs)
	}
}

// POST /api/audit-logs/:id/undo (admin)
func UndoAuditLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logID uint
		if _, err := fmt.Sscan(c.Params("id"), &logID); err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id is invalid")
		}

		userIDVal := c.Locals(auth.CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Could not resolve user")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User not found")
		}

		if err := UndoLog(logID, userID, user.Name); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{"message": "Action undone"})
	}
}
