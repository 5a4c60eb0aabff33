package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-reports/internal/model"
)

// ExportEvent is published when an export is requested.
type ExportEvent struct {
	ID          string    `json:"id"`
	Entity      string    `json:"entity"`
	Format      string    `json:"format"`
	Status      string    `json:"status"`
	RequestedBy string    `json:"requested_by"`
	CompanyID   string    `json:"company_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewExportEvent(req model.ExportRequest) ExportEvent {
	event := ExportEvent{
		ID:          req.ID.String(),
		Entity:      string(req.Entity),
		Format:      string(req.Format),
		Status:      string(req.Status),
		RequestedBy: req.RequestedBy,
		RequestedAt: req.CreatedAt,
	}
	if req.CompanyID != nil {
		event.CompanyID = *req.CompanyID
	}
	return event
}

type publisher interface {
	Publish(subject string, data []byte) error
}

type NATSNotifier struct {
	conn    publisher
	subject string
}

func Connect(url, subject string, log zerolog.Logger) (*NATSNotifier, *nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("fleet-reports"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATSNotifier(conn, subject), conn, nil
}

func NewNATSNotifier(conn publisher, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

func (n *NATSNotifier) ExportRequested(_ context.Context, req model.ExportRequest) error {
	data, err := json.Marshal(NewExportEvent(req))
	if err != nil {
		return fmt.Errorf("marshal export event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	return nil
}

// Noop drops events. Used when NATS_URL is not configured.
type Noop struct{}

func (Noop) ExportRequested(context.Context, model.ExportRequest) error { return nil }
