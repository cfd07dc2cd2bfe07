package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.AuditRepository = (*Repository)(nil)

// dbAuditEntry represents an audit entry as stored in the database.
type dbAuditEntry struct {
	ID        uuid.UUID      `db:"id"`
	TenantID  uuid.UUID      `db:"tenant_id"`
	Timestamp time.Time      `db:"timestamp"`
	Level     string         `db:"level"`
	Message   string         `db:"message"`
	Context   Metadata       `db:"context"`
	PersonID  sql.NullString `db:"person_id"`
}

// toDomainAudit converts a dbAuditEntry to a domain.AuditEntry.
func toDomainAudit(dbEntry *dbAuditEntry) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:        dbEntry.ID,
		TenantID:  dbEntry.TenantID,
		Timestamp: dbEntry.Timestamp,
		Level:     dbEntry.Level,
		Message:   dbEntry.Message,
		Context:   map[string]any(dbEntry.Context),
		PersonID:  uuidValue(dbEntry.PersonID),
	}
}

// fromDomainAudit converts a domain.AuditEntry to a dbAuditEntry.
func fromDomainAudit(entry *domain.AuditEntry) *dbAuditEntry {
	return &dbAuditEntry{
		ID:        entry.ID,
		TenantID:  entry.TenantID,
		Timestamp: entry.Timestamp,
		Level:     entry.Level,
		Message:   entry.Message,
		Context:   Metadata(entry.Context),
		PersonID:  nullUUID(entry.PersonID),
	}
}

// InsertAudit saves a new audit entry to the database.
func (repo *Repository) InsertAudit(entry *domain.AuditEntry) error {
	query := `INSERT INTO audit (id, tenant_id, timestamp, level, message, context, person_id)
	          VALUES (:id, :tenant_id, :timestamp, :level, :message, :context, :person_id)`

	_, err := repo.dbConn.NamedExec(query, fromDomainAudit(entry))
	if err != nil {
		return fmt.Errorf("inserting audit entry %s: %w", entry.ID, err)
	}

	return nil
}

// GetAuditEntries retrieves all audit entries for a tenant, newest first.
func (repo *Repository) GetAuditEntries(tenantID uuid.UUID) ([]*domain.AuditEntry, error) {
	var dbEntries []*dbAuditEntry
	query := `SELECT * FROM audit WHERE tenant_id = ? ORDER BY timestamp DESC, id DESC`

	err := repo.dbConn.Select(&dbEntries, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetching audit entries for %s: %w", tenantID, err)
	}

	entries := make([]*domain.AuditEntry, len(dbEntries))
	for i, dbEntry := range dbEntries {
		entries[i] = toDomainAudit(dbEntry)
	}

	return entries, nil
}
