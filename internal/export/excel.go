package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sharovik/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// ExcelService renders booking lists into xlsx files under the configured
// export directory.
type ExcelService struct {
	path   string
	logger *zerolog.Logger
}

func NewExcelService(path string, logger *zerolog.Logger) *ExcelService {
	return &ExcelService{path: path, logger: logger}
}

// ExportOwnerBookings writes the owner's bookings to a spreadsheet and
// returns the file path.
func (s *ExcelService) ExportOwnerBookings(ownerID int64, bookings []*models.Booking) (string, error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Item", "Booker ID", "Start", "End", "Status", "Created At"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), booking.ItemName)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), booking.BookerID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), booking.Start.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), booking.End.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), booking.Status)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))

		if styleID, err := s.statusStyle(f, booking.Status); err == nil {
			statusCell := fmt.Sprintf("F%d", row)
			_ = f.SetCellStyle(bookingsSheet, statusCell, statusCell, styleID)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 8)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 25)
	_ = f.SetColWidth(bookingsSheet, "C", "C", 12)
	_ = f.SetColWidth(bookingsSheet, "D", "E", 18)
	_ = f.SetColWidth(bookingsSheet, "F", "F", 12)
	_ = f.SetColWidth(bookingsSheet, "G", "G", 18)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_owner_%d_%s.xlsx", ownerID, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(s.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	s.logger.Info().Str("file_path", filePath).Int64("owner_id", ownerID).Msg("bookings export created")
	return filePath, nil
}

func (s *ExcelService) statusStyle(f *excelize.File, status string) (int, error) {
	color := "#FFFFFF"
	switch status {
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusWaiting:
		color = "#FFEB9C"
	case models.StatusRejected:
		color = "#FFC7CE"
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}
