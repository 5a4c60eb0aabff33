package model

import (
	"time"

	"github.com/google/uuid"
)

type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type ExportStatus string

// ExportStatusRequested is the only state an export request reaches.
const ExportStatusRequested ExportStatus = "requested"

type ExportRequest struct {
	ID          uuid.UUID    `json:"id"`
	Entity      Collection   `json:"entity"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	RequestedBy string       `json:"requested_by"`
	CompanyID   *string      `json:"company_id,omitempty"`
	Message     string       `json:"message"`
	CreatedAt   time.Time    `json:"created_at"`
}
