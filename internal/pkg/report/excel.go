// Package report exports inventory listings as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReorderCandidates writes the reorder candidate listing
func ReorderCandidates(w io.Writer, candidates []supplierarticle.ReorderCandidate) error {
	headers := []string{"ArticleID", "Description", "SupplierID", "Supplier", "Stock", "ReorderPoint", "OptimalLot"}
	rows := make([][]interface{}, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []interface{}{c.ArticleID, c.Description, c.SupplierID, c.SupplierName, c.Stock, c.ReorderPoint, c.OptimalLot})
	}
	return writeSheet(w, "Reorder", headers, rows)
}

// SafetyStockAlerts writes the below-safety-stock listing
func SafetyStockAlerts(w io.Writer, alerts []supplierarticle.SafetyStockAlert) error {
	headers := []string{"ArticleID", "Description", "SupplierID", "Policy", "Stock", "SafetyStock"}
	rows := make([][]interface{}, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []interface{}{a.ArticleID, a.Description, a.SupplierID, string(a.Policy), a.Stock, a.SafetyStock})
	}
	return writeSheet(w, "SafetyStock", headers, rows)
}

// SupplierCosts writes the CGI comparison of one article's suppliers
func SupplierCosts(w io.Writer, costs []supplierarticle.SupplierCost) error {
	headers := []string{"SupplierID", "Supplier", "Policy", "Default", "Lot/Period", "Holding", "Ordering", "Purchase", "Total", "StoredCGI"}
	rows := make([][]interface{}, 0, len(costs))
	for _, c := range costs {
		var sizing interface{}
		switch {
		case c.OptimalLot != nil:
			sizing = *c.OptimalLot
		case c.ReviewPeriodDays != nil:
			sizing = fmt.Sprintf("%dd", *c.ReviewPeriodDays)
		}
		rows = append(rows, []interface{}{
			c.SupplierID, c.SupplierName, string(c.Policy), c.IsDefault, sizing,
			c.HoldingCost, c.OrderingCost, c.PurchaseCost, c.TotalCost, c.StoredCost,
		})
	}
	return writeSheet(w, "Costs", headers, rows)
}

func writeSheet(w io.Writer, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
