package client

import (
	"fmt"
	"log"
	"strings"

	"catering-backend/internal/audit"
	"catering-backend/internal/auth"
	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SaveClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type ClientResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func toResponse(cl *models.Client) ClientResponse {
	return ClientResponse{
		ID:      cl.ID,
		Name:    cl.Name,
		Phone:   cl.Phone,
		Email:   cl.Email,
		Address: cl.Address,
		Notes:   cl.Notes,
	}
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Could not resolve user")
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}
	return userID, user.Name, nil
}

// GET /api/clients?q=...
func ListClientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Client{})
		if q := c.Query("q"); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("name LIKE ? OR phone LIKE ?", like, like)
		}

		var rows []models.Client
		if err := dbq.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list clients")
		}

		resp := make([]ClientResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/clients/:id
func GetClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return c.JSON(toResponse(&cl))
	}
}

// POST /api/clients
func CreateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cl := models.Client{
			Name:    body.Name,
			Phone:   body.Phone,
			Email:   body.Email,
			Address: body.Address,
			Notes:   body.Notes,
		}
		if err := database.DB.Create(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create client")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "client",
				EntityID:    cl.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Client added: %s", cl.Name),
				Before:      nil,
				After:       cl,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&cl))
	}
}

// PUT /api/clients/:id
func UpdateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		var body SaveClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		before := cl
		cl.Name = body.Name
		cl.Phone = body.Phone
		cl.Email = body.Email
		cl.Address = body.Address
		cl.Notes = body.Notes

		if err := database.DB.Save(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update client")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "client",
				EntityID:    cl.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Client updated: %s", cl.Name),
				Before:      before,
				After:       cl,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.JSON(toResponse(&cl))
	}
}

// DELETE /api/clients/:id (admin)
func DeleteClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		if err := database.DB.Delete(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete client")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "client",
				EntityID:    cl.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Client deleted: %s", cl.Name),
				Before:      nil,
				After:       cl,
			}); logErr != nil {
				log.Printf("Could not write audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
