package menu

import (
	"strconv"
	"strings"

	"catering-backend/internal/database"
	"catering-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportResultResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// POST /api/admin/menu-items/import (admin)
//
// Accepts a multipart .xlsx upload. Expected columns on the first sheet:
//
//	A: category name, B: item name, C: unit price, D: unit (optional)
//
// The first row is treated as a header and skipped. Missing categories are
// created on the fly; rows with an empty name or an unparseable price are
// skipped and reported.
func ImportMenuItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are supported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open uploaded file: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not parse workbook: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Workbook has no sheets")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read sheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Workbook is empty")
		}

		result := ImportResultResponse{Errors: []string{}}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			catCache := make(map[string]uint)

			for i, row := range rows {
				if i == 0 {
					continue // header
				}

				cell := func(idx int) string {
					if idx < len(row) {
						return strings.TrimSpace(row[idx])
					}
					return ""
				}

				catName := cell(0)
				itemName := cell(1)
				priceStr := cell(2)
				unit := cell(3)

				if catName == "" && itemName == "" && priceStr == "" {
					continue // blank row
				}

				if catName == "" || itemName == "" {
					result.Skipped++
					result.Errors = append(result.Errors, "row "+strconv.Itoa(i+1)+": category and name are required")
					continue
				}

				price, perr := strconv.ParseFloat(strings.ReplaceAll(priceStr, ",", "."), 64)
				if perr != nil || price < 0 {
					result.Skipped++
					result.Errors = append(result.Errors, "row "+strconv.Itoa(i+1)+": price is invalid")
					continue
				}

				catID, ok := catCache[catName]
				if !ok {
					var cat models.MenuCategory
					if err := tx.Where("name = ?", catName).First(&cat).Error; err != nil {
						cat = models.MenuCategory{Name: catName}
						if err := tx.Create(&cat).Error; err != nil {
							return err
						}
					}
					catID = cat.ID
					catCache[catName] = catID
				}

				item := models.MenuItem{
					CategoryID: catID,
					Name:       itemName,
					UnitPrice:  price,
					Unit:       unit,
					IsActive:   true,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				result.Imported++
			}

			return nil
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Import failed: "+txErr.Error())
		}

		return c.JSON(result)
	}
}
