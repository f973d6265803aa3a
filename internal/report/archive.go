// Package report builds archive exports of completed procurement requests.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
)

const (
	summarySheet = "Completed Requests"
	historySheet = "Approval History"

	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04"
)

var summaryHeaders = []string{
	"Request Number", "Item", "Quantity", "Unit", "Category", "Created By",
	"Delivery Address", "Submitted At", "Completed At", "Revisions",
}

var historyHeaders = []string{
	"Request Number", "Action", "Actor", "Level", "From", "To", "Notes", "At",
}

// Archiver exports completed requests and their approval trails to xlsx
type Archiver struct {
	requestRepo port.RequestRepository
	historyRepo port.HistoryRepository
	logger      *zap.Logger
}

// NewArchiver creates a new archiver
func NewArchiver(requestRepo port.RequestRepository, historyRepo port.HistoryRepository, logger *zap.Logger) *Archiver {
	return &Archiver{
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Export writes an xlsx archive of requests completed inside [from, to) to w.
// It returns the number of requests exported.
func (a *Archiver) Export(ctx context.Context, from, to time.Time, w io.Writer) (int, error) {
	requests, err := a.requestRepo.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list completed requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(historySheet); err != nil {
		return 0, fmt.Errorf("failed to create history sheet: %w", err)
	}

	f.SetSheetRow(summarySheet, "A1", &summaryHeaders)
	f.SetSheetRow(historySheet, "A1", &historyHeaders)

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(summarySheet, "A1", "J1", style)
		f.SetCellStyle(historySheet, "A1", "H1", style)
	}

	historyRow := 2
	for i, request := range requests {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := summaryRow(request)
		f.SetSheetRow(summarySheet, cell, &row)

		entries, err := a.historyRepo.GetByRequestID(ctx, request.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to load history for %s: %w", request.RequestNumber, err)
		}
		for _, entry := range entries {
			cell, _ := excelize.CoordinatesToCellName(1, historyRow)
			row := historyEntryRow(request.RequestNumber, entry)
			f.SetSheetRow(historySheet, cell, &row)
			historyRow++
		}
	}

	f.SetColWidth(summarySheet, "A", "A", 18)
	f.SetColWidth(summarySheet, "B", "B", 30)
	f.SetColWidth(summarySheet, "F", "I", 20)
	f.SetColWidth(historySheet, "A", "A", 18)
	f.SetColWidth(historySheet, "E", "F", 22)
	f.SetColWidth(historySheet, "G", "G", 40)

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write archive: %w", err)
	}

	a.logger.Info("Archive exported",
		zap.Int("requests", len(requests)),
		zap.Time("from", from),
		zap.Time("to", to))

	return len(requests), nil
}

func summaryRow(request *entity.Request) []interface{} {
	var submittedAt string
	if request.SubmittedAt != nil {
		submittedAt = request.SubmittedAt.Format(dateFormat)
	}

	return []interface{}{
		request.RequestNumber,
		request.Item,
		request.Quantity.String(),
		request.Unit,
		request.Category,
		request.CreatedBy,
		request.DeliveryAddress,
		submittedAt,
		request.UpdatedAt.Format(dateFormat),
		request.RevisionCount,
	}
}

func historyEntryRow(requestNumber string, entry *entity.ApprovalHistory) []interface{} {
	return []interface{}{
		requestNumber,
		entry.Action.String(),
		entry.ActorName,
		entry.Level,
		entry.PreviousStatus.String(),
		entry.NewStatus.String(),
		entry.Notes,
		entry.CreatedAt.Format(dateTimeFormat),
	}
}
