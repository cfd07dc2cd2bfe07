package domain

import (
	"time"

	"github.com/google/uuid"
)

// Supported check-in methods.
const (
	CheckInMethodPhone    = "phone"
	CheckInMethodOnline   = "online"
	CheckInMethodInPerson = "in_person"
)

// CheckInRepository defines the interface for managing defendant check-ins.
type CheckInRepository interface {
	// CreateCheckIn saves a new check-in.
	CreateCheckIn(checkIn *CheckIn) error
	// UpdateCheckIn updates an existing check-in.
	UpdateCheckIn(checkIn *CheckIn) error
	// DeleteCheckIn removes a check-in.
	DeleteCheckIn(tenantID, id uuid.UUID) error
	// GetCheckIns retrieves all check-ins for a person, newest first.
	GetCheckIns(personID uuid.UUID) ([]*CheckIn, error)
	// LastCheckIn returns the person's most recent check-in, or nil when
	// the person has never checked in.
	LastCheckIn(personID uuid.UUID) (*CheckIn, error)
}

// CheckIn represents a single supervision contact with a defendant, either
// recorded by staff or submitted through a self-service link.
type CheckIn struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PersonID     uuid.UUID
	Phone        string // Phone number reported at check-in time.
	Address      string // Address reported at check-in time.
	Method       string // One of the CheckInMethod constants.
	Photo        []byte // Optional photo captured during a self check-in.
	PhotoType    string // Detected MIME type of Photo.
	Document     []byte // Optional supporting document.
	DocumentType string // Detected MIME type of Document.
	CreatedAt    time.Time
}

// ValidCheckInMethod reports whether method is one of the supported
// check-in methods.
func ValidCheckInMethod(method string) bool {
	switch method {
	case CheckInMethodPhone, CheckInMethodOnline, CheckInMethodInPerson:
		return true
	}
	return false
}
