package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/model"
)

type recordingPublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subject = subject
	p.data = data
	return p.err
}

func TestExportRequestedPublishesEvent(t *testing.T) {
	company := "42"
	req := model.ExportRequest{
		ID:          uuid.MustParse("0b7b8f4e-7c55-4c6d-9c5b-5b1b6b0d6f11"),
		Entity:      model.CollectionVehicles,
		Format:      model.ExportFormatCSV,
		Status:      model.ExportStatusRequested,
		RequestedBy: "7",
		CompanyID:   &company,
		CreatedAt:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	pub := &recordingPublisher{}

	require.NoError(t, NewNATSNotifier(pub, "fleet.reports.exports").ExportRequested(context.Background(), req))

	assert.Equal(t, "fleet.reports.exports", pub.subject)
	var event ExportEvent
	require.NoError(t, json.Unmarshal(pub.data, &event))
	assert.Equal(t, "vehicles", event.Entity)
	assert.Equal(t, "csv", event.Format)
	assert.Equal(t, "requested", event.Status)
	assert.Equal(t, "42", event.CompanyID)
}

func TestExportRequestedWrapsPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection closed")}

	err := NewNATSNotifier(pub, "subj").ExportRequested(context.Background(), model.ExportRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish subj")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.ExportRequested(context.Background(), model.ExportRequest{}))
}
