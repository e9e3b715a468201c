package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/domain/entity"
)

const sheetName = "Expenses"

var headers = []string{
	"ID", "Employee ID", "Date", "Category", "Description",
	"Amount", "Currency", "Amount (Company Currency)", "Status", "Auto Approved",
}

// Exporter writes company expense reports as xlsx workbooks.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export writes one workbook with a header row, one row per expense, and a
// trailing total in company currency.
func (e *Exporter) Export(w io.Writer, currencyCode string, expenses []*entity.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	total := decimal.Zero
	for i, exp := range expenses {
		row := i + 2
		values := []interface{}{
			exp.ID.String(),
			exp.EmployeeID.String(),
			exp.Date.Format("2006-01-02"),
			exp.Category,
			exp.Description,
			exp.AmountOriginal.String(),
			exp.CurrencyOriginal,
			exp.AmountCompanyCurrency.String(),
			exp.Status,
			exp.AutoApproved,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
		total = total.Add(exp.AmountCompanyCurrency)
	}

	totalRow := len(expenses) + 2
	labelCell, _ := excelize.CoordinatesToCellName(7, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(8, totalRow)
	if err := f.SetCellValue(sheetName, labelCell, "Total ("+currencyCode+")"); err != nil {
		return fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellValue(sheetName, valueCell, total.String()); err != nil {
		return fmt.Errorf("write total: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("Expense report exported", zap.Int("rows", len(expenses)))
	return nil
}
