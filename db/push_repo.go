package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

var _ domain.PushRepository = (*Repository)(nil)

// dbPushSubscription represents a push subscription as stored in the database.
type dbPushSubscription struct {
	ID        uuid.UUID      `db:"id"`
	TenantID  uuid.UUID      `db:"tenant_id"`
	PersonID  sql.NullString `db:"person_id"`
	Endpoint  string         `db:"endpoint"`
	P256DH    string         `db:"p256dh"`
	Auth      string         `db:"auth"`
	CreatedAt time.Time      `db:"created_at"`
}

// toDomainSubscription converts a dbPushSubscription to a domain.PushSubscription.
func toDomainSubscription(dbSub *dbPushSubscription) *domain.PushSubscription {
	return &domain.PushSubscription{
		ID:        dbSub.ID,
		TenantID:  dbSub.TenantID,
		PersonID:  uuidValue(dbSub.PersonID),
		Endpoint:  dbSub.Endpoint,
		P256DH:    dbSub.P256DH,
		Auth:      dbSub.Auth,
		CreatedAt: dbSub.CreatedAt,
	}
}

// UpsertSubscription creates a subscription or, when the endpoint is already
// registered, re-points it at the given owner and keys.
func (repo *Repository) UpsertSubscription(sub *domain.PushSubscription) error {
	query := `INSERT INTO push_subscription (id, tenant_id, person_id, endpoint, p256dh, auth, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(endpoint) DO UPDATE SET
	              tenant_id = excluded.tenant_id,
	              person_id = excluded.person_id,
	              p256dh = excluded.p256dh,
	              auth = excluded.auth`

	_, err := repo.dbConn.Exec(query, sub.ID, sub.TenantID, nullUUID(sub.PersonID),
		sub.Endpoint, sub.P256DH, sub.Auth, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting subscription for %s: %w", sub.Endpoint, err)
	}

	return nil
}

// DeleteSubscriptionByEndpoint removes the subscription registered for an
// endpoint. Removing an unknown endpoint is not an error.
func (repo *Repository) DeleteSubscriptionByEndpoint(endpoint string) error {
	query := `DELETE FROM push_subscription WHERE endpoint = ?`

	_, err := repo.dbConn.Exec(query, endpoint)
	if err != nil {
		return fmt.Errorf("deleting subscription for %s: %w", endpoint, err)
	}

	return nil
}

// GetTenantSubscriptions retrieves the subscriptions belonging to a tenant's
// staff devices (those without a person).
func (repo *Repository) GetTenantSubscriptions(tenantID uuid.UUID) ([]*domain.PushSubscription, error) {
	var dbSubs []*dbPushSubscription
	query := `SELECT * FROM push_subscription WHERE tenant_id = ? AND person_id IS NULL ORDER BY created_at`

	err := repo.dbConn.Select(&dbSubs, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("retrieving subscriptions for tenant %s: %w", tenantID, err)
	}

	subs := make([]*domain.PushSubscription, len(dbSubs))
	for i, dbSub := range dbSubs {
		subs[i] = toDomainSubscription(dbSub)
	}

	return subs, nil
}

// GetPersonSubscriptions retrieves the subscriptions registered by a
// defendant's own devices.
func (repo *Repository) GetPersonSubscriptions(personID uuid.UUID) ([]*domain.PushSubscription, error) {
	var dbSubs []*dbPushSubscription
	query := `SELECT * FROM push_subscription WHERE person_id = ? ORDER BY created_at`

	err := repo.dbConn.Select(&dbSubs, query, personID.String())
	if err != nil {
		return nil, fmt.Errorf("retrieving subscriptions for person %s: %w", personID, err)
	}

	subs := make([]*domain.PushSubscription, len(dbSubs))
	for i, dbSub := range dbSubs {
		subs[i] = toDomainSubscription(dbSub)
	}

	return subs, nil
}
