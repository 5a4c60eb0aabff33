package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-reports/internal/model"
)

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) Create(ctx context.Context, req *model.ExportRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO export_request (id, entity, format, status, requested_by, company_id, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.ID,
		string(req.Entity),
		string(req.Format),
		string(req.Status),
		req.RequestedBy,
		req.CompanyID,
		req.Message,
		req.CreatedAt,
	).Error
}

type exportRow struct {
	ID          uuid.UUID
	Entity      string
	Format      string
	Status      string
	RequestedBy string
	CompanyID   *string
	Message     string
	CreatedAt   time.Time
}

func (row exportRow) toModel() model.ExportRequest {
	return model.ExportRequest{
		ID:          row.ID,
		Entity:      model.Collection(row.Entity),
		Format:      model.ExportFormat(row.Format),
		Status:      model.ExportStatus(row.Status),
		RequestedBy: row.RequestedBy,
		CompanyID:   row.CompanyID,
		Message:     row.Message,
		CreatedAt:   row.CreatedAt,
	}
}

func (r *ExportRepository) Get(ctx context.Context, id uuid.UUID) (*model.ExportRequest, error) {
	var row exportRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, entity, format, status, requested_by, company_id, message, created_at
		FROM export_request
		WHERE id = ?
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	req := row.toModel()
	return &req, nil
}

// ListRecent returns the newest requests first. An empty companyID lists all companies.
func (r *ExportRepository) ListRecent(ctx context.Context, companyID string, limit int) ([]model.ExportRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, entity, format, status, requested_by, company_id, message, created_at
		FROM export_request
	`
	args := []interface{}{}
	if companyID != "" {
		query += " WHERE company_id = ?"
		args = append(args, companyID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	var rows []exportRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]model.ExportRequest, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}
