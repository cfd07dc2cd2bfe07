package domain

import (
	"time"

	"github.com/google/uuid"
)

// CourtDateRepository defines the interface for managing court appearances.
type CourtDateRepository interface {
	// CreateCourtDate saves a new court date.
	CreateCourtDate(courtDate *CourtDate) error
	// UpdateCourtDate updates an existing court date.
	UpdateCourtDate(courtDate *CourtDate) error
	// GetCourtDate retrieves a court date by ID, scoped to the tenant.
	GetCourtDate(tenantID, id uuid.UUID) (*CourtDate, error)
	// DeleteCourtDate removes a court date.
	DeleteCourtDate(tenantID, id uuid.UUID) error
	// GetCourtDates retrieves all court dates for a person ordered by
	// date then time of day.
	GetCourtDates(personID uuid.UUID) ([]*CourtDate, error)
	// UpcomingCourtDate returns the person's next court date on or after
	// the given day, or nil when there is none.
	UpcomingCourtDate(personID uuid.UUID, from time.Time) (*CourtDate, error)
	// LatestCourtDate returns the person's most recent court date, or nil
	// when the person has none.
	LatestCourtDate(personID uuid.UUID) (*CourtDate, error)
}

// CourtDate represents a scheduled court appearance for a defendant.
type CourtDate struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PersonID   uuid.UUID
	Date       time.Time // Day of the appearance. Zero when unknown.
	TimeOfDay  string    // Clock time in "15:04" form, empty when unknown.
	Court      string
	County     string
	Location   string
	CaseNumber string
	Notes      string
}

// When combines the date and the time-of-day into a single timestamp.
// A missing or malformed TimeOfDay resolves to midnight.
func (cd *CourtDate) When() time.Time {
	if cd.Date.IsZero() {
		return time.Time{}
	}
	clock, err := time.Parse("15:04", cd.TimeOfDay)
	if err != nil {
		return cd.Date
	}
	return time.Date(cd.Date.Year(), cd.Date.Month(), cd.Date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, cd.Date.Location())
}
