package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/formacode/course-service/internal/models"
)

// OutlineService renders a course tree as a spreadsheet for instructors who
// review structure outside the editor.
type OutlineService interface {
	// ExportOutlineToExcel renders one row per item, with module context and
	// chapter counts, as an XLSX workbook.
	ExportOutlineToExcel(ctx context.Context, courseID uint) ([]byte, error)
}

type outlineService struct {
	sync   SyncService
	logger *slog.Logger
}

func NewOutlineService(sync SyncService, logger *slog.Logger) OutlineService {
	return &outlineService{
		sync:   sync,
		logger: logger,
	}
}

func (s *outlineService) ExportOutlineToExcel(ctx context.Context, courseID uint) ([]byte, error) {
	doc, err := s.sync.ExportCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Outline"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Module", "Module Position", "Item", "Item Position", "Type",
		"Published", "Chapters", "Game Type",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, module := range doc.Modules {
		for _, item := range module.Items {
			row := []interface{}{
				module.Title,
				module.Position,
				item.Title,
				item.Position,
				item.Type,
				item.Published == nil || *item.Published,
				len(item.Chapters),
				outlineGameType(&item),
			}
			for colIndex, value := range row {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIndex++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("course outline exported",
		"course_id", courseID,
		"rows", rowIndex-2)

	return buf.Bytes(), nil
}

func outlineGameType(item *models.ItemDocument) string {
	if item.Type != string(models.ItemGame) || item.Content == nil {
		return ""
	}
	gameType, _ := item.Content[models.GameTypeKey].(string)
	return gameType
}
