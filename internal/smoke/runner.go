package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-reports/internal/model"
)

// API is the backend surface exercised by the CRUD flows.
type API interface {
	List(ctx context.Context, resource string, query url.Values) ([]model.Record, error)
	Create(ctx context.Context, resource string, payload any) (model.Record, error)
	Update(ctx context.Context, resource, id string, payload any) (model.Record, error)
	Replace(ctx context.Context, resource, id string, payload any) (model.Record, error)
	Delete(ctx context.Context, resource, id string) error
}

var errMissingID = errors.New("response has no id")

type Runner struct {
	api API
	log zerolog.Logger
	now func() time.Time
}

func NewRunner(api API, log zerolog.Logger) *Runner {
	return &Runner{api: api, log: log, now: time.Now}
}

type created struct {
	resource string
	id       string
}

// RunCRUD walks vehicle, issue, ticket, shift and inspection through
// create, list, update and delete; the vehicle is also replaced in full.
// Later flows are skipped when a record they depend on could not be created.
func (r *Runner) RunCRUD(ctx context.Context) *Results {
	results := &Results{}
	var cleanup []created

	suffix := r.now().Format("150405")

	vehicle := model.VehicleForm{
		Registration: "SMK " + suffix,
		Make:         "Volvo",
		Model:        "FH16",
		Status:       model.VehicleStatusActive,
		FuelType:     "DIESEL",
		Mileage:      1200,
	}
	vehicleID := r.createFlow(ctx, results, "vehicle", "vehicles", vehicle, map[string]any{"status": model.VehicleStatusMaintenance})
	if vehicleID != "" {
		cleanup = append(cleanup, created{"vehicles", vehicleID})

		vehicle.Mileage += 150
		started := r.now()
		_, err := r.api.Replace(ctx, "vehicles", vehicleID, vehicle)
		results.Record("vehicle", "replace", started, err)
	}

	if vehicleID != "" {
		issueID := r.createFlow(ctx, results, "issue", "issues", model.IssueForm{
			Vehicle:     vehicleID,
			Type:        "MECHANICAL",
			Priority:    model.PriorityHigh,
			Status:      "OPEN",
			Description: "Smoke test: brake pressure warning",
		}, map[string]any{"status": "IN_PROGRESS"})
		if issueID != "" {
			cleanup = append(cleanup, created{"issues", issueID})

			ticketID := r.createFlow(ctx, results, "ticket", "tickets", model.TicketForm{
				Issue:       issueID,
				Title:       "Smoke test ticket " + suffix,
				Description: "Inspect brake lines",
				Priority:    model.PriorityMedium,
				Status:      model.TicketStatusOpen,
			}, map[string]any{"status": model.TicketStatusResolved})
			if ticketID != "" {
				cleanup = append(cleanup, created{"tickets", ticketID})
			}
		}

		shiftID := r.createFlow(ctx, results, "shift", "shifts", model.ShiftForm{
			Vehicle: vehicleID,
			StartAt: r.now().UTC().Format(time.RFC3339),
			Status:  model.ShiftStatusActive,
		}, map[string]any{"status": model.ShiftStatusCompleted, "end_at": r.now().UTC().Format(time.RFC3339)})
		if shiftID != "" {
			cleanup = append(cleanup, created{"shifts", shiftID})

			inspectionID := r.createFlow(ctx, results, "inspection", "inspections", model.InspectionForm{
				Shift:  shiftID,
				Type:   model.InspectionTypeStart,
				Status: model.InspectionStatusInProgress,
				Notes:  "smoke",
			}, map[string]any{"status": model.InspectionStatusPass})
			if inspectionID != "" {
				cleanup = append(cleanup, created{"inspections", inspectionID})
			}
		}
	}

	for i := len(cleanup) - 1; i >= 0; i-- {
		item := cleanup[i]
		started := r.now()
		err := r.api.Delete(ctx, item.resource, item.id)
		results.Record(item.resource, "delete", started, err)
	}

	r.log.Info().Int("passed", results.Passed()).Int("failed", results.Failed()).Msg("smoke run finished")
	return results
}

type validator interface {
	Validate() error
}

func (r *Runner) createFlow(ctx context.Context, results *Results, flow, resource string, form validator, patch map[string]any) string {
	started := r.now()
	if err := form.Validate(); err != nil {
		results.Record(flow, "validate", started, err)
		return ""
	}

	record, err := r.api.Create(ctx, resource, form)
	id := ""
	if err == nil {
		id = recordID(record)
		if id == "" {
			err = errMissingID
		}
	}
	results.Record(flow, "create", started, err)
	if err != nil {
		r.log.Warn().Err(err).Str("flow", flow).Msg("create failed")
		return ""
	}

	started = r.now()
	records, err := r.api.List(ctx, resource, nil)
	if err == nil && !containsID(records, id) {
		err = fmt.Errorf("created %s %s not listed", flow, id)
	}
	results.Record(flow, "list", started, err)

	started = r.now()
	_, err = r.api.Update(ctx, resource, id, patch)
	results.Record(flow, "update", started, err)

	return id
}

func recordID(record model.Record) string {
	value, ok := record["id"]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprint(value)
}

func containsID(records []model.Record, id string) bool {
	for _, record := range records {
		if recordID(record) == id {
			return true
		}
	}
	return false
}
