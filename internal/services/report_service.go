package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	completionsSheet = "Completions"
	summarySheet     = "Summary"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportService exports completion data for staff.
type ReportService interface {
	ExportCompletions(ctx context.Context, principal Principal, courseID, instanceID uint) (*CompletionExport, error)
}

type reportService struct {
	completion CompletionService
	logger     *ServiceLogger
	now        func() time.Time
}

func NewReportService(completion CompletionService, logger *ServiceLogger) ReportService {
	return &reportService{
		completion: completion,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *reportService) ExportCompletions(ctx context.Context, principal Principal, courseID, instanceID uint) (*CompletionExport, error) {
	op := s.logger.WithOperation(ctx, "export_completions", principal.UserID)

	report, err := s.completion.CourseCompletion(ctx, principal, courseID, instanceID)
	if err != nil {
		op.LogResult(instanceID, "block_instance", err)
		return nil, err
	}

	data, err := buildCompletionWorkbook(report)
	op.LogResult(instanceID, "block_instance", err)
	if err != nil {
		return nil, err
	}

	generated := s.now().UTC()
	return &CompletionExport{
		FileName:    fmt.Sprintf("completions_%d_%d_%s.xlsx", courseID, instanceID, generated.Format("20060102_150405")),
		ContentType: xlsxContentType,
		Data:        data,
		GeneratedAt: generated,
	}, nil
}

func buildCompletionWorkbook(report *models.CourseCompletion) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", completionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Name", "User ID", "Status", "Answered", "Total", "Completed At"}
	if err := f.SetSheetRow(completionsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write Excel headers: %w", err)
	}
	for i, student := range report.Students {
		completedAt := ""
		if student.TimeCompleted != nil {
			completedAt = student.TimeCompleted.UTC().Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			student.FullName,
			student.UserID,
			string(student.Status),
			student.Answered,
			student.Total,
			completedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(completionsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	summary := report.Summary
	rows := [][]interface{}{
		{"Status", "Count", "Percent"},
		{string(models.StatusCompleted), summary.Completed, summary.CompletedPercent},
		{string(models.StatusInProgress), summary.InProgress, summary.InProgressPercent},
		{string(models.StatusNotStarted), summary.NotStarted, summary.NotStartedPercent},
		{"total", summary.Total, 100.0},
	}
	if summary.Total == 0 {
		rows[len(rows)-1][2] = 0.0
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
