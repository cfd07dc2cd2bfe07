package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PersonRepository defines the interface for managing defendants and the
// people attached to their file (indemnitors and references).
type PersonRepository interface {
	// CreatePerson saves a new person.
	CreatePerson(person *Person) error
	// UpdatePerson updates an existing person.
	UpdatePerson(person *Person) error
	// GetPerson retrieves a person by ID, scoped to the tenant.
	GetPerson(tenantID, id uuid.UUID) (*Person, error)
	// DeletePerson removes a person. It fails with ErrPersonProtected when
	// related case records (bonds, invoices, ...) still reference the person.
	DeletePerson(tenantID, id uuid.UUID) error
	// SearchPeople returns up to limit people matching the query against
	// name, phone or email, ordered by last then first name. An empty query
	// returns all people up to the limit.
	SearchPeople(tenantID uuid.UUID, query string, limit int) ([]*Person, error)
	// FindPersonByPhone returns the first person with the given phone number,
	// matched case-insensitively, or nil when there is none.
	FindPersonByPhone(tenantID uuid.UUID, phone string) (*Person, error)

	// CreateIndemnitor saves a new indemnitor for a person.
	CreateIndemnitor(indemnitor *Indemnitor) error
	// UpdateIndemnitor updates an existing indemnitor.
	UpdateIndemnitor(indemnitor *Indemnitor) error
	// DeleteIndemnitor removes an indemnitor.
	DeleteIndemnitor(tenantID, id uuid.UUID) error
	// GetIndemnitors retrieves all indemnitors for a person.
	GetIndemnitors(personID uuid.UUID) ([]*Indemnitor, error)

	// CreateReference saves a new reference for a person.
	CreateReference(reference *Reference) error
	// UpdateReference updates an existing reference.
	UpdateReference(reference *Reference) error
	// DeleteReference removes a reference.
	DeleteReference(tenantID, id uuid.UUID) error
	// GetReferences retrieves all references for a person.
	GetReferences(personID uuid.UUID) ([]*Reference, error)
}

// Person represents a defendant tracked by the agency.
type Person struct {
	ID        uuid.UUID // Unique identifier for the person.
	TenantID  uuid.UUID // Owning tenant.
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	City      string
	State     string
	Zip       string
	DOB       time.Time // Date of birth. Zero when unknown.
	Alias     string
	Notes     string
}

// FullName returns the person's first and last name joined with a space,
// with surrounding whitespace trimmed.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Indemnitor represents a co-signer who guarantees a defendant's bond.
type Indemnitor struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PersonID     uuid.UUID // The defendant this indemnitor vouches for.
	Name         string
	Relationship string
	Phone        string
	Email        string
}

// Reference represents a personal reference on a defendant's file.
type Reference struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	PersonID     uuid.UUID
	Name         string
	Relationship string
	Phone        string
	Email        string
}
