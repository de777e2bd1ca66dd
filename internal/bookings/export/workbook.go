package export

import (
	"fmt"
	"time"

	"servicehub/pkg/model"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"ID", "Service", "Customer", "Provider", "Date", "Time",
	"Duration (h)", "Status", "Total Price", "Messages", "Created At",
}

var statusColors = map[model.BookingStatus]string{
	model.StatusPending:   "#FFEB9C",
	model.StatusConfirmed: "#DDEBF7",
	model.StatusCompleted: "#C6EFCE",
	model.StatusCancelled: "#FFC7CE",
}

// FileName names an export taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.UTC().Format("20060102_150405"))
}

// Workbook renders bookings as a single-sheet xlsx file, one row each.
func Workbook(bookings []*model.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("error renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("error writing header row: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("error styling header row: %w", err)
	}

	statusStyles := make(map[model.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating %s style: %w", status, err)
		}
		statusStyles[status] = style
	}

	for i, b := range bookings {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			b.ID,
			b.ServiceID,
			b.CustomerID,
			b.ProviderID,
			b.Date,
			b.Time,
			b.Duration,
			b.Status.String(),
			b.TotalPrice,
			len(b.Messages),
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}

		if style, ok := statusStyles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(8, row)
			if err := f.SetCellStyle(SheetName, statusCell, statusCell, style); err != nil {
				return nil, fmt.Errorf("error styling row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "D", 26); err != nil {
		return nil, fmt.Errorf("error setting column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "E", "K", 14); err != nil {
		return nil, fmt.Errorf("error setting column width: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("error freezing header row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
