package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"claimdesk/internal"
)

// ExportWorkQueueToXLSX writes the prioritized queue plus a metrics
// summary sheet.
func ExportWorkQueueToXLSX(analysis Analysis, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetName(sheet, "Work Queue")
	sheet = "Work Queue"

	headers := []string{
		"Priority", "Category", "Assigned Team", "Claim ID", "Age", "Amount at Risk", "Billing Provider",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, claim := range WorkQueue(analysis.Claims) {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, claim.PriorityScore)
		set(2, claim.Category)
		set(3, claim.Team)
		set(4, claim.ClaimID)
		set(5, claim.Age)
		set(6, fmt.Sprintf("$%.2f", claim.NetPayment))
		set(7, claim.ProviderName)
	}

	if err := writeSummarySheet(f, analysis.Metrics); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeSummarySheet(f *excelize.File, metrics internal.Metrics) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	_ = f.SetCellValue(sheet, "A1", "Total Claims")
	_ = f.SetCellValue(sheet, "B1", metrics.TotalClaims)
	_ = f.SetCellValue(sheet, "A2", "Total Net Payment")
	_ = f.SetCellValue(sheet, "B2", metrics.TotalNetPayment)

	statuses := make([]string, 0, len(metrics.ClaimsByStatus))
	for status := range metrics.ClaimsByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	_ = f.SetCellValue(sheet, "A4", "Status")
	_ = f.SetCellValue(sheet, "B4", "Claims")
	for i, status := range statuses {
		r := i + 5
		cell, _ := excelize.CoordinatesToCellName(1, r)
		_ = f.SetCellValue(sheet, cell, status)
		cell, _ = excelize.CoordinatesToCellName(2, r)
		_ = f.SetCellValue(sheet, cell, metrics.ClaimsByStatus[status])
	}

	return nil
}

// Sheet names of the discovery assignment workbook. An operator fills
// the category_id column and feeds the workbook back through the
// rules:save command.
const (
	DiscoveryEditsSheet = "Edits"
	DiscoveryNotesSheet = "Notes"
)

// ExportDiscoveryToXLSX writes the uncategorized items as an
// assignment workbook, one sheet per rule kind.
func ExportDiscoveryToXLSX(result internal.DiscoveryResult, outputPath string) error {
	f := excelize.NewFile()
	_ = f.SetSheetName(f.GetSheetName(0), DiscoveryEditsSheet)
	if _, err := f.NewSheet(DiscoveryNotesSheet); err != nil {
		return err
	}

	writeItems := func(sheet string, items []internal.DiscoveryItem) {
		_ = f.SetCellValue(sheet, "A1", "text")
		_ = f.SetCellValue(sheet, "B1", "category_id")
		for i, item := range items {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			_ = f.SetCellValue(sheet, cell, item.Text)
		}
	}
	writeItems(DiscoveryEditsSheet, result.Edits)
	writeItems(DiscoveryNotesSheet, result.Notes)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
