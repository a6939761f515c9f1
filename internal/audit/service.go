package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"catering-backend/internal/database"
	"catering-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns need the JSON literal "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// UndoLog reverses a logged action for the simple row-shaped entities.
// Quotations and payments carry derived state (line items, rolled-up totals)
// and cannot be safely undone from a snapshot.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("this action has already been undone")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("could not delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("could not restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("could not recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("this action type cannot be undone")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("could not update log: %w", err)
	}

	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("could not write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "client":
		return database.DB.Delete(&models.Client{}, "id = ?", entityID).Error
	case "menu_item":
		return database.DB.Delete(&models.MenuItem{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("entity type cannot be undone: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		expense.ID = 0
		return database.DB.Create(&expense).Error

	case "client":
		var client models.Client
		if err := json.Unmarshal([]byte(dataJSON), &client); err != nil {
			return err
		}
		client.ID = 0
		return database.DB.Create(&client).Error

	case "menu_item":
		var item models.MenuItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		item.ID = 0
		return database.DB.Create(&item).Error

	default:
		return fmt.Errorf("entity type cannot be undone: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"category_id": expense.CategoryID,
			"date":        expense.Date,
			"amount":      expense.Amount,
			"description": expense.Description,
		}).Error

	case "client":
		var client models.Client
		if err := json.Unmarshal([]byte(dataJSON), &client); err != nil {
			return err
		}
		return database.DB.Model(&models.Client{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":    client.Name,
			"phone":   client.Phone,
			"email":   client.Email,
			"address": client.Address,
			"notes":   client.Notes,
		}).Error

	case "menu_item":
		var item models.MenuItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		return database.DB.Model(&models.MenuItem{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"category_id": item.CategoryID,
			"name":        item.Name,
			"unit_price":  item.UnitPrice,
			"unit":        item.Unit,
			"description": item.Description,
			"is_active":   item.IsActive,
		}).Error

	default:
		return fmt.Errorf("entity type cannot be undone: %s", entityType)
	}
}
