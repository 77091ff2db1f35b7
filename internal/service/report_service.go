package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lshigami/psytest/internal/access"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
)

// ReportService renders printable reports for psychologists.
type ReportService interface {
	DetailedResultPDF(ctx context.Context, attemptID uint, caller *access.Caller) ([]byte, error)
}

type reportService struct {
	stats StatisticsService
}

func NewReportService(stats StatisticsService) ReportService {
	return &reportService{stats: stats}
}

func (s *reportService) DetailedResultPDF(ctx context.Context, attemptID uint, caller *access.Caller) ([]byte, error) {
	detail, err := s.stats.DetailedResult(ctx, attemptID, caller)
	if err != nil {
		return nil, err
	}
	return renderDetailedResult(detail)
}

func renderDetailedResult(d *dto.DetailedResultDTO) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s (%s)", d.TestDisplayName, d.TestName)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	line := func(label, value string) {
		pdf.CellFormat(50, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}
	line("Result ID", fmt.Sprint(d.ID))
	line("Participant", d.UserName)
	line("Status", d.Status)
	line("Score", fmt.Sprintf("%d / %d", d.Score, d.TotalQuestions))
	line("Percentage", fmt.Sprintf("%.2f%%", d.Percentage))
	if d.TimeSpent != nil {
		line("Time spent", fmt.Sprintf("%d s", *d.TimeSpent))
	}
	if d.CompletedAt != nil {
		line("Completed at", d.CompletedAt.Format("2006-01-02 15:04"))
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	for _, h := range []struct {
		title string
		w     float64
	}{{"Question", 30}, {"Selected", 40}, {"Correct", 40}, {"Result", 40}} {
		pdf.CellFormat(h.w, 8, h.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, a := range d.Answers {
		mark := "wrong"
		if a.IsCorrect {
			mark = "correct"
		}
		pdf.CellFormat(30, 7, fmt.Sprint(a.QuestionNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprint(a.SelectedAnswer), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprint(a.CorrectAnswer), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, mark, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if d.MethodicalRecommendations != nil && *d.MethodicalRecommendations != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Methodical recommendations")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, tr(*d.MethodicalRecommendations), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperror.Internal(err, "failed to render report")
	}
	return buf.Bytes(), nil
}
