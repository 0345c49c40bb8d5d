package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/model"
	"github.com/nurpe/ledger-service/internal/repository"
)

const DefaultBestClientsLimit = 2

var dateRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$`)

// ReportGenerator renders an admin report into a downloadable document.
type ReportGenerator interface {
	Generate(report model.AdminReport) ([]byte, error)
}

type ReportService struct {
	store        repository.ReportStore
	excel        ReportGenerator
	pdf          ReportGenerator
	defaultLimit int
	now          func() time.Time
}

func NewReportService(store repository.ReportStore, excel, pdf ReportGenerator, defaultLimit int) *ReportService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultBestClientsLimit
	}
	return &ReportService{
		store:        store,
		excel:        excel,
		pdf:          pdf,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// BestProfession returns the contractor profession that earned the most in
// the window. With no paid jobs in the window the result is a zero sum and
// an empty profession.
func (s *ReportService) BestProfession(ctx context.Context, start, end string) (model.ProfessionEarnings, error) {
	window, err := ParseWindow(start, end)
	if err != nil {
		return model.ProfessionEarnings{}, err
	}
	best, err := s.store.BestProfession(ctx, window)
	if err != nil {
		return model.ProfessionEarnings{}, internalError("best profession", err)
	}
	if best == nil {
		return model.ProfessionEarnings{Sum: decimal.Zero}, nil
	}
	return *best, nil
}

// BestClients returns the clients that paid the most in the window. A
// non-positive limit falls back to the configured default.
func (s *ReportService) BestClients(ctx context.Context, start, end string, limit int) ([]model.ClientPayment, error) {
	window, err := ParseWindow(start, end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	clients, err := s.store.BestClients(ctx, window, limit)
	if err != nil {
		return nil, internalError("best clients", err)
	}
	if clients == nil {
		clients = []model.ClientPayment{}
	}
	return clients, nil
}

type ExportReportInput struct {
	Format string
	Start  string
	End    string
	Limit  int
}

type ExportReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *ReportService) ExportReport(ctx context.Context, input ExportReportInput) (*ExportReportResult, error) {
	format := model.ReportFormat(strings.ToLower(strings.TrimSpace(input.Format)))
	var (
		generator   ReportGenerator
		contentType string
	)
	switch format {
	case model.ReportFormatXLSX:
		generator = s.excel
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case model.ReportFormatPDF:
		generator = s.pdf
		contentType = "application/pdf"
	default:
		return nil, ErrInvalidInput.With("format must be xlsx or pdf")
	}
	if generator == nil {
		return nil, ErrInvalidInput.With("%s export is not available", format)
	}

	window, err := ParseWindow(input.Start, input.End)
	if err != nil {
		return nil, err
	}

	best, err := s.BestProfession(ctx, input.Start, input.End)
	if err != nil {
		return nil, err
	}
	clients, err := s.BestClients(ctx, input.Start, input.End, input.Limit)
	if err != nil {
		return nil, err
	}

	report := model.AdminReport{
		Window:         window,
		BestProfession: best,
		BestClients:    clients,
		GeneratedAt:    s.now().UTC(),
	}
	content, err := generator.Generate(report)
	if err != nil {
		return nil, internalError("render report", err)
	}

	return &ExportReportResult{
		FileName:    buildFileName(report, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// ParseWindow validates optional YYYY-MM-DD bounds and turns them into a
// half-open window in UTC.
func ParseWindow(start, end string) (model.Window, error) {
	var window model.Window

	startAt, err := parseDate("start", start)
	if err != nil {
		return window, err
	}
	endAt, err := parseDate("end", end)
	if err != nil {
		return window, err
	}
	if startAt != nil && endAt != nil && endAt.Before(*startAt) {
		return window, ErrInvalidDate.With("end must not be before start")
	}

	window.Start = startAt
	window.End = endAt
	return window, nil
}

func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if !dateRegex.MatchString(raw) {
		return nil, ErrInvalidDate.With("%s is not a valid date, expected YYYY-MM-DD", field)
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, ErrInvalidDate.With("%s is not a valid calendar date", field)
	}
	return &parsed, nil
}

func buildFileName(report model.AdminReport, format model.ReportFormat) string {
	period := "all-time"
	if report.Window.Start != nil || report.Window.End != nil {
		period = fmt.Sprintf("%s-%s", formatBound(report.Window.Start), formatBound(report.Window.End))
	}
	return fmt.Sprintf("ledger-report-%s.%s", sanitizeFileName(period), format)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format("20060102")
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
