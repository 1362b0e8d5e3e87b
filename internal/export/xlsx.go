// Package export serializes expense rows to a downloadable xlsx file.
package export

import (
	"errors"
	"fmt"

	"github.com/kez1254/budget-app/internal/models"

	"github.com/xuri/excelize/v2"
)

// Filename is the download name offered to the client.
const Filename = "depenses.xlsx"

// ContentType is the MIME type of the generated file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoExpenses is returned when there is nothing to export.
var ErrNoExpenses = errors.New("no expenses to export")

var header = []any{"Date", "Amount", "Category", "Description"}

// Expenses renders one spreadsheet row per expense, preceded by a
// header row. Columns are Date, Amount, Category, Description in that
// order, with no aggregate rows. Returns ErrNoExpenses for an empty
// set.
func Expenses(rows []models.Expense) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoExpenses
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, e := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			e.Date.Format("2006-01-02"),
			e.Amount,
			string(e.Category),
			e.Description,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
