package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.TenantRepository = (*Repository)(nil)

var (
	// ErrNoTenant is returned when no tenant has been configured yet.
	ErrNoTenant = errors.New("no tenant configured")
)

// dbTenant represents a tenant as stored in the database.
type dbTenant struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

// CreateTenant saves a new tenant to the database.
func (repo *Repository) CreateTenant(tenant *domain.Tenant) error {
	query := `INSERT INTO tenant (id, name) VALUES (?, ?)`

	_, err := repo.dbConn.Exec(query, tenant.ID, tenant.Name)
	if err != nil {
		return fmt.Errorf("creating tenant %s: %w", tenant.Name, err)
	}

	return nil
}

// GetTenant retrieves a tenant by its ID.
func (repo *Repository) GetTenant(id uuid.UUID) (*domain.Tenant, error) {
	var dbTenant dbTenant
	query := `SELECT id, name FROM tenant WHERE id = ?`

	err := repo.dbConn.Get(&dbTenant, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTenant
	}
	if err != nil {
		return nil, fmt.Errorf("getting tenant %s: %w", id, err)
	}

	return &domain.Tenant{ID: dbTenant.ID, Name: dbTenant.Name}, nil
}

// GetAnyTenant retrieves the first configured tenant. It returns ErrNoTenant
// when the tenant table is empty.
func (repo *Repository) GetAnyTenant() (*domain.Tenant, error) {
	var dbTenant dbTenant
	query := `SELECT id, name FROM tenant ORDER BY id LIMIT 1`

	err := repo.dbConn.Get(&dbTenant, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTenant
	}
	if err != nil {
		return nil, fmt.Errorf("getting first tenant: %w", err)
	}

	return &domain.Tenant{ID: dbTenant.ID, Name: dbTenant.Name}, nil
}
