package prescription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the prescription lifecycle state. The only legal path is
// pending -> approved -> dispensed -> completed; nothing moves backward
// and no state is skipped.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDispensed Status = "dispensed"
	StatusCompleted Status = "completed"
)

var nextStatus = map[Status]Status{
	StatusPending:   StatusApproved,
	StatusApproved:  StatusDispensed,
	StatusDispensed: StatusCompleted,
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusDispensed, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// CanTransitionTo reports whether to is the single legal successor of s.
func (s Status) CanTransitionTo(to Status) bool {
	return nextStatus[s] == to
}

// Actionable reports whether a pharmacy still has work to do on a
// prescription in this state.
func (s Status) Actionable() bool {
	return s == StatusPending || s == StatusApproved
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// MedicationEntry is one line of a prescription's medication list.
type MedicationEntry struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription is the shared record coordinating doctor and pharmacy.
// PharmacyID is nil until a pharmacy is assigned or claims it.
type Prescription struct {
	ID            uuid.UUID         `json:"id"`
	DoctorID      uuid.UUID         `json:"doctor_id"`
	PatientID     uuid.UUID         `json:"patient_id"`
	AppointmentID *uuid.UUID        `json:"appointment_id,omitempty"`
	PharmacyID    *uuid.UUID        `json:"pharmacy_id,omitempty"`
	Medications   []MedicationEntry `json:"medications"`
	Instructions  string            `json:"instructions,omitempty"`
	ValidUntil    *time.Time        `json:"valid_until,omitempty"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
