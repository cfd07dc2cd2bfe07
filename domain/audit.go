package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRepository defines the interface for the case activity log.
type AuditRepository interface {
	// InsertAudit saves a new audit entry.
	InsertAudit(entry *AuditEntry) error
	// GetAuditEntries retrieves all audit entries for a tenant, newest first.
	GetAuditEntries(tenantID uuid.UUID) ([]*AuditEntry, error)
}

// AuditEntry records an event on a tenant's book: a check-in received, an
// invoice raised, a plan cancelled. Entries are append-only.
type AuditEntry struct {
	ID        uuid.UUID      // Unique identifier for the entry.
	TenantID  uuid.UUID      // Tenant the event belongs to.
	Timestamp time.Time      // The time at which the entry was created.
	Level     string         // Severity (e.g. INFO, WARN, ERROR).
	Message   string         // The main content of the entry.
	Context   map[string]any // Additional key-value data.
	PersonID  *uuid.UUID     // Optional person the event concerns.
}
