package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.CheckInRepository = (*Repository)(nil)

var (
	// ErrCheckInNotFound is returned when a check-in does not exist for the tenant.
	ErrCheckInNotFound = errors.New("check-in not found")
)

// dbCheckIn represents a check-in as stored in the database.
type dbCheckIn struct {
	ID           uuid.UUID `db:"id"`
	TenantID     uuid.UUID `db:"tenant_id"`
	PersonID     uuid.UUID `db:"person_id"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	Method       string    `db:"method"`
	Photo        []byte    `db:"photo"`
	PhotoType    string    `db:"photo_type"`
	Document     []byte    `db:"document"`
	DocumentType string    `db:"document_type"`
	CreatedAt    time.Time `db:"created_at"`
}

// toDomainCheckIn converts a dbCheckIn to a domain.CheckIn.
func toDomainCheckIn(dbCheckIn *dbCheckIn) *domain.CheckIn {
	return &domain.CheckIn{
		ID:           dbCheckIn.ID,
		TenantID:     dbCheckIn.TenantID,
		PersonID:     dbCheckIn.PersonID,
		Phone:        dbCheckIn.Phone,
		Address:      dbCheckIn.Address,
		Method:       dbCheckIn.Method,
		Photo:        dbCheckIn.Photo,
		PhotoType:    dbCheckIn.PhotoType,
		Document:     dbCheckIn.Document,
		DocumentType: dbCheckIn.DocumentType,
		CreatedAt:    dbCheckIn.CreatedAt,
	}
}

// fromDomainCheckIn converts a domain.CheckIn to a dbCheckIn.
func fromDomainCheckIn(checkIn *domain.CheckIn) *dbCheckIn {
	return &dbCheckIn{
		ID:           checkIn.ID,
		TenantID:     checkIn.TenantID,
		PersonID:     checkIn.PersonID,
		Phone:        checkIn.Phone,
		Address:      checkIn.Address,
		Method:       checkIn.Method,
		Photo:        checkIn.Photo,
		PhotoType:    checkIn.PhotoType,
		Document:     checkIn.Document,
		DocumentType: checkIn.DocumentType,
		CreatedAt:    checkIn.CreatedAt,
	}
}

// CreateCheckIn saves a new check-in to the database.
func (repo *Repository) CreateCheckIn(checkIn *domain.CheckIn) error {
	query := `INSERT INTO checkin (id, tenant_id, person_id, phone, address, method, photo, photo_type, document, document_type, created_at)
	          VALUES (:id, :tenant_id, :person_id, :phone, :address, :method, :photo, :photo_type, :document, :document_type, :created_at)`

	_, err := repo.dbConn.NamedExec(query, fromDomainCheckIn(checkIn))
	if err != nil {
		return fmt.Errorf("creating check-in %s: %w", checkIn.ID, err)
	}

	return nil
}

// UpdateCheckIn updates an existing check-in's contact fields and method.
func (repo *Repository) UpdateCheckIn(checkIn *domain.CheckIn) error {
	query := `UPDATE checkin
	          SET phone = :phone, address = :address, method = :method
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainCheckIn(checkIn))
	if err != nil {
		return fmt.Errorf("updating check-in %s: %w", checkIn.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", checkIn.ID, err)
	}
	if rowsAffected == 0 {
		return ErrCheckInNotFound
	}

	return nil
}

// DeleteCheckIn removes a check-in.
func (repo *Repository) DeleteCheckIn(tenantID, id uuid.UUID) error {
	query := `DELETE FROM checkin WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting check-in %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrCheckInNotFound
	}

	return nil
}

// GetCheckIns retrieves all check-ins for a person, newest first.
func (repo *Repository) GetCheckIns(personID uuid.UUID) ([]*domain.CheckIn, error) {
	var dbCheckIns []*dbCheckIn
	query := `SELECT * FROM checkin WHERE person_id = ? ORDER BY created_at DESC, id DESC`

	err := repo.dbConn.Select(&dbCheckIns, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving check-ins for %s: %w", personID, err)
	}

	checkIns := make([]*domain.CheckIn, len(dbCheckIns))
	for i, dbCheckIn := range dbCheckIns {
		checkIns[i] = toDomainCheckIn(dbCheckIn)
	}

	return checkIns, nil
}

// LastCheckIn returns the person's most recent check-in, or nil when the
// person has never checked in.
func (repo *Repository) LastCheckIn(personID uuid.UUID) (*domain.CheckIn, error) {
	var dbCheckIn dbCheckIn
	query := `SELECT * FROM checkin WHERE person_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`

	err := repo.dbConn.Get(&dbCheckIn, query, personID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last check-in for %s: %w", personID, err)
	}

	return toDomainCheckIn(&dbCheckIn), nil
}
