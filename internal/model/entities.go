package model

import (
	"fmt"
	"strings"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "ACTIVE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRetired     VehicleStatus = "RETIRED"
)

type ShiftStatus string

const (
	ShiftStatusActive    ShiftStatus = "ACTIVE"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
)

type InspectionType string

const (
	InspectionTypeStart InspectionType = "START"
	InspectionTypeEnd   InspectionType = "END"
)

type InspectionStatus string

const (
	InspectionStatusInProgress InspectionStatus = "IN_PROGRESS"
	InspectionStatusPass       InspectionStatus = "PASS"
	InspectionStatusFail       InspectionStatus = "FAIL"
	InspectionStatusCancelled  InspectionStatus = "CANCELLED"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// FormError reports a required form field that was left empty.
type FormError struct {
	Field string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func requireFields(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return &FormError{Field: f[0]}
		}
	}
	return nil
}

type VehicleForm struct {
	Registration string        `json:"registration"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Status       VehicleStatus `json:"status,omitempty"`
	FuelType     string        `json:"fuel_type,omitempty"`
	Mileage      int           `json:"mileage,omitempty"`
}

func (f VehicleForm) Validate() error {
	return requireFields(
		[2]string{"registration", f.Registration},
		[2]string{"make", f.Make},
		[2]string{"model", f.Model},
	)
}

type IssueForm struct {
	Vehicle     string   `json:"vehicle"`
	Type        string   `json:"type,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Status      string   `json:"status,omitempty"`
	Description string   `json:"description"`
}

func (f IssueForm) Validate() error {
	return requireFields(
		[2]string{"vehicle", f.Vehicle},
		[2]string{"description", f.Description},
	)
}

type TicketForm struct {
	Issue       string       `json:"issue"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        string       `json:"type,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
	Status      TicketStatus `json:"status,omitempty"`
	DueDate     string       `json:"due_date,omitempty"`
}

func (f TicketForm) Validate() error {
	return requireFields(
		[2]string{"issue", f.Issue},
		[2]string{"title", f.Title},
	)
}

type ShiftForm struct {
	Driver       string      `json:"driver,omitempty"`
	Vehicle      string      `json:"vehicle"`
	StartAt      string      `json:"start_at"`
	Status       ShiftStatus `json:"status,omitempty"`
	StartLat     *float64    `json:"start_lat,omitempty"`
	StartLng     *float64    `json:"start_lng,omitempty"`
	StartAddress string      `json:"start_address,omitempty"`
}

func (f ShiftForm) Validate() error {
	return requireFields(
		[2]string{"vehicle", f.Vehicle},
		[2]string{"start_at", f.StartAt},
	)
}

type InspectionForm struct {
	Shift       string           `json:"shift"`
	Type        InspectionType   `json:"type"`
	Status      InspectionStatus `json:"status,omitempty"`
	Weather     string           `json:"weather,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

func (f InspectionForm) Validate() error {
	return requireFields(
		[2]string{"shift", f.Shift},
		[2]string{"type", string(f.Type)},
	)
}
