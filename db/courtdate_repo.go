package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.CourtDateRepository = (*Repository)(nil)

var (
	// ErrCourtDateNotFound is returned when a court date does not exist for the tenant.
	ErrCourtDateNotFound = errors.New("court date not found")
)

// dbCourtDate represents a court date as stored in the database.
type dbCourtDate struct {
	ID         uuid.UUID    `db:"id"`
	TenantID   uuid.UUID    `db:"tenant_id"`
	PersonID   uuid.UUID    `db:"person_id"`
	Date       sql.NullTime `db:"date"`
	TimeOfDay  string       `db:"time_of_day"`
	Court      string       `db:"court"`
	County     string       `db:"county"`
	Location   string       `db:"location"`
	CaseNumber string       `db:"case_number"`
	Notes      string       `db:"notes"`
}

// toDomainCourtDate converts a dbCourtDate to a domain.CourtDate.
func toDomainCourtDate(dbCourtDate *dbCourtDate) *domain.CourtDate {
	return &domain.CourtDate{
		ID:         dbCourtDate.ID,
		TenantID:   dbCourtDate.TenantID,
		PersonID:   dbCourtDate.PersonID,
		Date:       timeValue(dbCourtDate.Date),
		TimeOfDay:  dbCourtDate.TimeOfDay,
		Court:      dbCourtDate.Court,
		County:     dbCourtDate.County,
		Location:   dbCourtDate.Location,
		CaseNumber: dbCourtDate.CaseNumber,
		Notes:      dbCourtDate.Notes,
	}
}

// fromDomainCourtDate converts a domain.CourtDate to a dbCourtDate.
func fromDomainCourtDate(courtDate *domain.CourtDate) *dbCourtDate {
	return &dbCourtDate{
		ID:         courtDate.ID,
		TenantID:   courtDate.TenantID,
		PersonID:   courtDate.PersonID,
		Date:       nullTime(courtDate.Date),
		TimeOfDay:  courtDate.TimeOfDay,
		Court:      courtDate.Court,
		County:     courtDate.County,
		Location:   courtDate.Location,
		CaseNumber: courtDate.CaseNumber,
		Notes:      courtDate.Notes,
	}
}

// CreateCourtDate saves a new court date to the database.
func (repo *Repository) CreateCourtDate(courtDate *domain.CourtDate) error {
	query := `INSERT INTO court_date (id, tenant_id, person_id, date, time_of_day, court, county, location, case_number, notes)
	          VALUES (:id, :tenant_id, :person_id, :date, :time_of_day, :court, :county, :location, :case_number, :notes)`

	_, err := repo.dbConn.NamedExec(query, fromDomainCourtDate(courtDate))
	if err != nil {
		return fmt.Errorf("creating court date %s: %w", courtDate.ID, err)
	}

	return nil
}

// UpdateCourtDate updates an existing court date.
func (repo *Repository) UpdateCourtDate(courtDate *domain.CourtDate) error {
	query := `UPDATE court_date
	          SET date = :date, time_of_day = :time_of_day, court = :court, county = :county,
	              location = :location, case_number = :case_number, notes = :notes
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainCourtDate(courtDate))
	if err != nil {
		return fmt.Errorf("updating court date %s: %w", courtDate.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", courtDate.ID, err)
	}
	if rowsAffected == 0 {
		return ErrCourtDateNotFound
	}

	return nil
}

// GetCourtDate retrieves a court date by ID, scoped to the tenant.
func (repo *Repository) GetCourtDate(tenantID, id uuid.UUID) (*domain.CourtDate, error) {
	var dbCourtDate dbCourtDate
	query := `SELECT * FROM court_date WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbCourtDate, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourtDateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting court date %s: %w", id, err)
	}

	return toDomainCourtDate(&dbCourtDate), nil
}

// DeleteCourtDate removes a court date.
func (repo *Repository) DeleteCourtDate(tenantID, id uuid.UUID) error {
	query := `DELETE FROM court_date WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting court date %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrCourtDateNotFound
	}

	return nil
}

// GetCourtDates retrieves all court dates for a person ordered by date then
// time of day.
func (repo *Repository) GetCourtDates(personID uuid.UUID) ([]*domain.CourtDate, error) {
	var dbCourtDates []*dbCourtDate
	query := `SELECT * FROM court_date WHERE person_id = ? ORDER BY date, time_of_day, id`

	err := repo.dbConn.Select(&dbCourtDates, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving court dates for %s: %w", personID, err)
	}

	courtDates := make([]*domain.CourtDate, len(dbCourtDates))
	for i, dbCourtDate := range dbCourtDates {
		courtDates[i] = toDomainCourtDate(dbCourtDate)
	}

	return courtDates, nil
}

// UpcomingCourtDate returns the person's next court date on or after the
// given day, or nil when there is none.
func (repo *Repository) UpcomingCourtDate(personID uuid.UUID, from time.Time) (*domain.CourtDate, error) {
	var dbCourtDate dbCourtDate
	query := `SELECT * FROM court_date
	          WHERE person_id = ? AND date IS NOT NULL AND date(date) >= date(?)
	          ORDER BY date, time_of_day, id
	          LIMIT 1`

	err := repo.dbConn.Get(&dbCourtDate, query, personID, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting upcoming court date for %s: %w", personID, err)
	}

	return toDomainCourtDate(&dbCourtDate), nil
}

// LatestCourtDate returns the person's most recent court date, or nil when
// the person has none.
func (repo *Repository) LatestCourtDate(personID uuid.UUID) (*domain.CourtDate, error) {
	var dbCourtDate dbCourtDate
	query := `SELECT * FROM court_date
	          WHERE person_id = ?
	          ORDER BY date DESC, time_of_day DESC, id DESC
	          LIMIT 1`

	err := repo.dbConn.Get(&dbCourtDate, query, personID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest court date for %s: %w", personID, err)
	}

	return toDomainCourtDate(&dbCourtDate), nil
}
