package domain

import (
	"time"

	"github.com/google/uuid"
)

// PushRepository defines the interface for managing web-push subscriptions.
type PushRepository interface {
	// UpsertSubscription creates a subscription or, when the endpoint is
	// already registered, re-points it at the given owner and keys.
	UpsertSubscription(sub *PushSubscription) error
	// DeleteSubscriptionByEndpoint removes the subscription registered for
	// an endpoint. Removing an unknown endpoint is not an error.
	DeleteSubscriptionByEndpoint(endpoint string) error
	// GetTenantSubscriptions retrieves the subscriptions belonging to a
	// tenant's staff devices (those without a person).
	GetTenantSubscriptions(tenantID uuid.UUID) ([]*PushSubscription, error)
	// GetPersonSubscriptions retrieves the subscriptions registered by a
	// defendant's own devices.
	GetPersonSubscriptions(personID uuid.UUID) ([]*PushSubscription, error)
}

// PushSubscription stores the endpoint and keys a browser handed out when it
// subscribed for push notifications. Delivery is performed by the embedding
// application; this module only keeps the book.
type PushSubscription struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	PersonID  *uuid.UUID // Set when a defendant's device subscribed via a self link.
	Endpoint  string     // Unique push endpoint URL.
	P256DH    string     // Client public key.
	Auth      string     // Client auth secret.
	CreatedAt time.Time
}
