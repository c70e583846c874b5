package approval

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const reviewSheet = "Review Queue"

var reviewColumns = []string{
	"ID",
	"Client Name",
	"Business Name",
	"Email",
	"Report Type",
	"Report Month",
	"Subject",
	"Status",
	"Notes",
	"Extraction Errors",
	"Generated",
}

// statusFills maps a review state to a cell fill color for the workbook.
var statusFills = map[Status]string{
	StatusPending:       "FFF3CD",
	StatusApproved:      "D4EDDA",
	StatusNeedsRevision: "F8D7DA",
}

// ExportWorkbook writes the review queue to a styled Excel workbook so the
// reviewer can work through a big batch in one place. The header row is bold
// and frozen; the status column is color coded per state.
func ExportWorkbook(entries []*Entry, path string, logger *slog.Logger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reviewSheet); err != nil {
		return fmt.Errorf("rename review sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
	})
	if err != nil {
		return fmt.Errorf("build header style: %w", err)
	}

	for i, name := range reviewColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(reviewSheet, cell, name); err != nil {
			return fmt.Errorf("write header %q: %w", name, err)
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(reviewColumns), 1)
	if err := f.SetCellStyle(reviewSheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	statusStyles := make(map[Status]int, len(statusFills))
	for status, fill := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		})
		if err != nil {
			return fmt.Errorf("build status style: %w", err)
		}
		statusStyles[status] = id
	}

	for i, e := range entries {
		row := i + 2
		values := []any{
			e.ID,
			e.ClientName,
			e.BusinessName,
			e.Email,
			e.ReportType,
			e.ReportMonth,
			e.Subject,
			string(e.Status),
			e.Notes,
			e.ExtractionErrors,
			e.GeneratedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(reviewSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
		if styleID, ok := statusStyles[e.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(8, row)
			if err := f.SetCellStyle(reviewSheet, statusCell, statusCell, styleID); err != nil {
				return fmt.Errorf("style row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(reviewSheet, "A", "A", 36); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}
	if err := f.SetColWidth(reviewSheet, "B", "G", 24); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}
	if err := f.SetColWidth(reviewSheet, "H", "K", 20); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}

	if err := f.SetPanes(reviewSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save review workbook: %w", err)
	}

	logger.Info("review workbook exported",
		slog.String("path", path),
		slog.Int("entries", len(entries)),
	)
	return nil
}
