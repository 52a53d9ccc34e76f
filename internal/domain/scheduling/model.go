package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the booking state. Bookings start scheduled; doctors
// confirm and complete them; either party may cancel.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseStatus validates a raw appointment status.
func ParseStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return AppointmentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

// Appointment links a patient and a doctor at a point in time. There is no
// slot-conflict checking; overlapping bookings are allowed.
type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	PatientID   uuid.UUID         `json:"patient_id"`
	DoctorID    uuid.UUID         `json:"doctor_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	Reason      string            `json:"reason,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
