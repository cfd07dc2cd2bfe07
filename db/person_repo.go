package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.PersonRepository = (*Repository)(nil)

var (
	// ErrPersonNotFound is returned when a person does not exist for the tenant.
	ErrPersonNotFound = errors.New("person not found")
	// ErrPersonProtected is returned when a person cannot be deleted because
	// bonds or invoices still reference them.
	ErrPersonProtected = errors.New("person has related case records")
	// ErrIndemnitorNotFound is returned when an indemnitor does not exist.
	ErrIndemnitorNotFound = errors.New("indemnitor not found")
	// ErrReferenceNotFound is returned when a reference does not exist.
	ErrReferenceNotFound = errors.New("reference not found")
)

// dbPerson represents a person as stored in the database.
type dbPerson struct {
	ID        uuid.UUID    `db:"id"`
	TenantID  uuid.UUID    `db:"tenant_id"`
	FirstName string       `db:"first_name"`
	LastName  string       `db:"last_name"`
	Phone     string       `db:"phone"`
	Email     string       `db:"email"`
	Address   string       `db:"address"`
	City      string       `db:"city"`
	State     string       `db:"state"`
	Zip       string       `db:"zip"`
	DOB       sql.NullTime `db:"dob"`
	Alias     string       `db:"alias"`
	Notes     string       `db:"notes"`
}

// toDomainPerson converts a dbPerson to a domain.Person.
func toDomainPerson(dbPerson *dbPerson) *domain.Person {
	return &domain.Person{
		ID:        dbPerson.ID,
		TenantID:  dbPerson.TenantID,
		FirstName: dbPerson.FirstName,
		LastName:  dbPerson.LastName,
		Phone:     dbPerson.Phone,
		Email:     dbPerson.Email,
		Address:   dbPerson.Address,
		City:      dbPerson.City,
		State:     dbPerson.State,
		Zip:       dbPerson.Zip,
		DOB:       timeValue(dbPerson.DOB),
		Alias:     dbPerson.Alias,
		Notes:     dbPerson.Notes,
	}
}

// fromDomainPerson converts a domain.Person to a dbPerson.
func fromDomainPerson(person *domain.Person) *dbPerson {
	return &dbPerson{
		ID:        person.ID,
		TenantID:  person.TenantID,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Phone:     person.Phone,
		Email:     person.Email,
		Address:   person.Address,
		City:      person.City,
		State:     person.State,
		Zip:       person.Zip,
		DOB:       nullTime(person.DOB),
		Alias:     person.Alias,
		Notes:     person.Notes,
	}
}

// CreatePerson saves a new person to the database.
func (repo *Repository) CreatePerson(person *domain.Person) error {
	query := `INSERT INTO person (id, tenant_id, first_name, last_name, phone, email, address, city, state, zip, dob, alias, notes)
	          VALUES (:id, :tenant_id, :first_name, :last_name, :phone, :email, :address, :city, :state, :zip, :dob, :alias, :notes)`

	_, err := repo.dbConn.NamedExec(query, fromDomainPerson(person))
	if err != nil {
		return fmt.Errorf("creating person %s: %w", person.ID, err)
	}

	return nil
}

// UpdatePerson updates an existing person.
func (repo *Repository) UpdatePerson(person *domain.Person) error {
	query := `UPDATE person
	          SET first_name = :first_name, last_name = :last_name, phone = :phone,
	              email = :email, address = :address, city = :city, state = :state,
	              zip = :zip, dob = :dob, alias = :alias, notes = :notes
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainPerson(person))
	if err != nil {
		return fmt.Errorf("updating person %s: %w", person.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", person.ID, err)
	}
	if rowsAffected == 0 {
		return ErrPersonNotFound
	}

	return nil
}

// GetPerson retrieves a person by ID, scoped to the tenant.
func (repo *Repository) GetPerson(tenantID, id uuid.UUID) (*domain.Person, error) {
	var dbPerson dbPerson
	query := `SELECT * FROM person WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbPerson, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting person %s: %w", id, err)
	}

	return toDomainPerson(&dbPerson), nil
}

// DeletePerson removes a person. Bonds and invoices restrict deletion, so a
// foreign key violation is mapped to ErrPersonProtected.
func (repo *Repository) DeletePerson(tenantID, id uuid.UUID) error {
	query := `DELETE FROM person WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrPersonProtected
		}
		return fmt.Errorf("deleting person %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrPersonNotFound
	}

	return nil
}

// SearchPeople returns up to limit people matching the query against name,
// phone or email, ordered by last then first name.
func (repo *Repository) SearchPeople(tenantID uuid.UUID, query string, limit int) ([]*domain.Person, error) {
	var dbPeople []*dbPerson

	sqlQuery := `SELECT * FROM person
	             WHERE tenant_id = ?
	               AND (first_name LIKE ? OR last_name LIKE ? OR phone LIKE ? OR email LIKE ?)
	             ORDER BY last_name, first_name
	             LIMIT ?`

	pattern := "%" + strings.TrimSpace(query) + "%"
	err := repo.dbConn.Select(&dbPeople, sqlQuery, tenantID, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching people for %q: %w", query, err)
	}

	people := make([]*domain.Person, len(dbPeople))
	for i, dbPerson := range dbPeople {
		people[i] = toDomainPerson(dbPerson)
	}

	return people, nil
}

// FindPersonByPhone returns the first person with the given phone number,
// matched case-insensitively, or nil when there is none.
func (repo *Repository) FindPersonByPhone(tenantID uuid.UUID, phone string) (*domain.Person, error) {
	var dbPerson dbPerson
	query := `SELECT * FROM person
	          WHERE tenant_id = ? AND phone = ? COLLATE NOCASE
	          ORDER BY id LIMIT 1`

	err := repo.dbConn.Get(&dbPerson, query, tenantID, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding person by phone %q: %w", phone, err)
	}

	return toDomainPerson(&dbPerson), nil
}

// dbContact represents an indemnitor or reference row; the two tables share
// a shape.
type dbContact struct {
	ID           uuid.UUID `db:"id"`
	TenantID     uuid.UUID `db:"tenant_id"`
	PersonID     uuid.UUID `db:"person_id"`
	Name         string    `db:"name"`
	Relationship string    `db:"relationship"`
	Phone        string    `db:"phone"`
	Email        string    `db:"email"`
}

// CreateIndemnitor saves a new indemnitor for a person.
func (repo *Repository) CreateIndemnitor(indemnitor *domain.Indemnitor) error {
	query := `INSERT INTO indemnitor (id, tenant_id, person_id, name, relationship, phone, email)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query, indemnitor.ID, indemnitor.TenantID, indemnitor.PersonID,
		indemnitor.Name, indemnitor.Relationship, indemnitor.Phone, indemnitor.Email)
	if err != nil {
		return fmt.Errorf("creating indemnitor %s: %w", indemnitor.ID, err)
	}

	return nil
}

// UpdateIndemnitor updates an existing indemnitor.
func (repo *Repository) UpdateIndemnitor(indemnitor *domain.Indemnitor) error {
	query := `UPDATE indemnitor
	          SET name = ?, relationship = ?, phone = ?, email = ?
	          WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, indemnitor.Name, indemnitor.Relationship,
		indemnitor.Phone, indemnitor.Email, indemnitor.ID, indemnitor.TenantID)
	if err != nil {
		return fmt.Errorf("updating indemnitor %s: %w", indemnitor.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", indemnitor.ID, err)
	}
	if rowsAffected == 0 {
		return ErrIndemnitorNotFound
	}

	return nil
}

// DeleteIndemnitor removes an indemnitor.
func (repo *Repository) DeleteIndemnitor(tenantID, id uuid.UUID) error {
	query := `DELETE FROM indemnitor WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting indemnitor %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrIndemnitorNotFound
	}

	return nil
}

// GetIndemnitors retrieves all indemnitors for a person.
func (repo *Repository) GetIndemnitors(personID uuid.UUID) ([]*domain.Indemnitor, error) {
	var dbContacts []*dbContact
	query := `SELECT * FROM indemnitor WHERE person_id = ? ORDER BY name`

	err := repo.dbConn.Select(&dbContacts, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving indemnitors for %s: %w", personID, err)
	}

	indemnitors := make([]*domain.Indemnitor, len(dbContacts))
	for i, c := range dbContacts {
		indemnitors[i] = &domain.Indemnitor{
			ID:           c.ID,
			TenantID:     c.TenantID,
			PersonID:     c.PersonID,
			Name:         c.Name,
			Relationship: c.Relationship,
			Phone:        c.Phone,
			Email:        c.Email,
		}
	}

	return indemnitors, nil
}

// CreateReference saves a new reference for a person.
func (repo *Repository) CreateReference(reference *domain.Reference) error {
	query := `INSERT INTO reference (id, tenant_id, person_id, name, relationship, phone, email)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query, reference.ID, reference.TenantID, reference.PersonID,
		reference.Name, reference.Relationship, reference.Phone, reference.Email)
	if err != nil {
		return fmt.Errorf("creating reference %s: %w", reference.ID, err)
	}

	return nil
}

// UpdateReference updates an existing reference.
func (repo *Repository) UpdateReference(reference *domain.Reference) error {
	query := `UPDATE reference
	          SET name = ?, relationship = ?, phone = ?, email = ?
	          WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, reference.Name, reference.Relationship,
		reference.Phone, reference.Email, reference.ID, reference.TenantID)
	if err != nil {
		return fmt.Errorf("updating reference %s: %w", reference.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", reference.ID, err)
	}
	if rowsAffected == 0 {
		return ErrReferenceNotFound
	}

	return nil
}

// DeleteReference removes a reference.
func (repo *Repository) DeleteReference(tenantID, id uuid.UUID) error {
	query := `DELETE FROM reference WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting reference %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrReferenceNotFound
	}

	return nil
}

// GetReferences retrieves all references for a person.
func (repo *Repository) GetReferences(personID uuid.UUID) ([]*domain.Reference, error) {
	var dbContacts []*dbContact
	query := `SELECT * FROM reference WHERE person_id = ? ORDER BY name`

	err := repo.dbConn.Select(&dbContacts, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving references for %s: %w", personID, err)
	}

	references := make([]*domain.Reference, len(dbContacts))
	for i, c := range dbContacts {
		references[i] = &domain.Reference{
			ID:           c.ID,
			TenantID:     c.TenantID,
			PersonID:     c.PersonID,
			Name:         c.Name,
			Relationship: c.Relationship,
			Phone:        c.Phone,
			Email:        c.Email,
		}
	}

	return references, nil
}
