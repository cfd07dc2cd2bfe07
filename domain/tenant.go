package domain

import "github.com/google/uuid"

// TenantRepository defines the interface for managing tenants (bail-bond agencies).
type TenantRepository interface {
	// CreateTenant saves a new tenant.
	CreateTenant(tenant *Tenant) error
	// GetTenant retrieves a tenant by its ID.
	GetTenant(id uuid.UUID) (*Tenant, error)
	// GetAnyTenant retrieves the first configured tenant.
	// It is the fallback for single-agency deployments where no tenant is
	// selected explicitly.
	GetAnyTenant() (*Tenant, error)
}

// Tenant represents a single bail-bond agency. Every case record belongs to
// exactly one tenant and all queries are scoped by it.
type Tenant struct {
	ID   uuid.UUID // Unique identifier for the tenant.
	Name string    // Display name of the agency.
}
