package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-reports/internal/model"
)

type ExportJournal interface {
	Create(ctx context.Context, req *model.ExportRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.ExportRequest, error)
	ListRecent(ctx context.Context, companyID string, limit int) ([]model.ExportRequest, error)
}

const (
	defaultExportLimit = 50
	maxExportLimit     = 200
)

type ExportNotifier interface {
	ExportRequested(ctx context.Context, req model.ExportRequest) error
}

// ExportService accepts entity export requests. Exports are acknowledged and
// journaled but never produced.
type ExportService struct {
	journal  ExportJournal
	notifier ExportNotifier
	log      zerolog.Logger
	now      func() time.Time
}

type ExportResult struct {
	Request model.ExportRequest
	Message string
}

func NewExportService(journal ExportJournal, notifier ExportNotifier, log zerolog.Logger) *ExportService {
	return &ExportService{
		journal:  journal,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Request records the export and returns the acknowledgement together with
// ErrNotImplemented.
func (s *ExportService) Request(ctx context.Context, principal model.Principal, entity, format string) (*ExportResult, error) {
	if !principal.CanViewReports() {
		return nil, ErrPermissionDenied
	}

	collection, ok := model.ParseCollection(entity)
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %q", ErrInvalidInput, entity)
	}
	exportFormat, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}

	req := model.ExportRequest{
		ID:          uuid.New(),
		Entity:      collection,
		Format:      exportFormat,
		Status:      model.ExportStatusRequested,
		RequestedBy: principal.UserID,
		Message:     acknowledgement(collection, exportFormat),
		CreatedAt:   s.now().UTC(),
	}
	if principal.CompanyID != "" {
		companyID := principal.CompanyID
		req.CompanyID = &companyID
	}

	if s.journal != nil {
		if err := s.journal.Create(ctx, &req); err != nil {
			return nil, fmt.Errorf("record export request: %w", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.ExportRequested(ctx, req); err != nil {
			s.log.Warn().Err(err).Str("export_id", req.ID.String()).Msg("export notification failed")
		}
	}

	s.log.Info().
		Str("export_id", req.ID.String()).
		Str("entity", string(req.Entity)).
		Str("format", string(req.Format)).
		Str("user_id", principal.UserID).
		Msg("export requested")

	return &ExportResult{Request: req, Message: req.Message}, ErrNotImplemented
}

// List returns the caller's most recent export requests. Platform admins see
// every company.
func (s *ExportService) List(ctx context.Context, principal model.Principal, limit int) ([]model.ExportRequest, error) {
	if !principal.CanViewReports() {
		return nil, ErrPermissionDenied
	}
	if limit <= 0 {
		limit = defaultExportLimit
	}
	if limit > maxExportLimit {
		limit = maxExportLimit
	}

	companyID := principal.CompanyID
	if !principal.IsPlatformAdmin() && companyID == "" {
		return []model.ExportRequest{}, nil
	}
	if principal.IsPlatformAdmin() {
		companyID = ""
	}

	requests, err := s.journal.ListRecent(ctx, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list export requests: %w", err)
	}
	return requests, nil
}

// Get returns one export request. Requests of another company are reported
// as not found.
func (s *ExportService) Get(ctx context.Context, principal model.Principal, rawID string) (*model.ExportRequest, error) {
	if !principal.CanViewReports() {
		return nil, ErrPermissionDenied
	}
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid export id", ErrInvalidInput)
	}

	req, err := s.journal.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get export request: %w", err)
	}
	if !principal.IsPlatformAdmin() && (req.CompanyID == nil || *req.CompanyID != principal.CompanyID) {
		return nil, ErrNotFound
	}
	return req, nil
}

func parseExportFormat(raw string) (model.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "csv":
		return model.ExportFormatCSV, nil
	case "pdf":
		return model.ExportFormatPDF, nil
	default:
		return "", fmt.Errorf("%w: format must be csv or pdf", ErrInvalidInput)
	}
}

func acknowledgement(entity model.Collection, format model.ExportFormat) string {
	return fmt.Sprintf("Exporting %s as %s... feature coming soon", entity.Label(), strings.ToUpper(string(format)))
}
