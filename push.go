package bondkeeper

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

// ErrEndpointGone is the error a Notifier returns (or wraps) when a push
// endpoint no longer exists. Subscriptions failing with it are pruned.
var ErrEndpointGone = errors.New("push endpoint is gone")

// Notifier delivers a push payload to a single subscription. Delivery itself
// lives in the embedding application; this module only keeps the book of
// subscriptions and fans payloads out.
type Notifier interface {
	Send(sub *domain.PushSubscription, payload []byte) error
}

// Notification is the payload handed to the Notifier for each subscription.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// SubscribePush registers a browser's push subscription for the active
// tenant. A nil personID registers a staff device; re-registering a known
// endpoint re-points it.
func (app *App) SubscribePush(personID *uuid.UUID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, errors.New("subscription has no endpoint")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	sub := &domain.PushSubscription{
		ID:        id,
		TenantID:  tenantID,
		PersonID:  personID,
		Endpoint:  endpoint,
		P256DH:    p256dh,
		Auth:      auth,
		CreatedAt: time.Now(),
	}
	if err := app.Repo.UpsertSubscription(sub); err != nil {
		return nil, fmt.Errorf("registering subscription : %w", err)
	}
	return sub, nil
}

// UnsubscribePush removes the subscription registered for an endpoint.
func (app *App) UnsubscribePush(endpoint string) error {
	if err := app.Repo.DeleteSubscriptionByEndpoint(endpoint); err != nil {
		return fmt.Errorf("removing subscription : %w", err)
	}
	return nil
}

// NotifyTenant fans a notification out to the active tenant's staff devices.
// Dead endpoints are pruned; other delivery failures only warn.
func (app *App) NotifyTenant(notification Notification) error {
	tenantID, err := app.tenantID()
	if err != nil {
		return err
	}
	subs, err := app.Repo.GetTenantSubscriptions(tenantID)
	if err != nil {
		return fmt.Errorf("retrieving tenant subscriptions : %w", err)
	}
	return app.deliver(subs, notification)
}

// NotifyPerson fans a notification out to a defendant's own devices.
func (app *App) NotifyPerson(personID uuid.UUID, notification Notification) error {
	subs, err := app.Repo.GetPersonSubscriptions(personID)
	if err != nil {
		return fmt.Errorf("retrieving person subscriptions : %w", err)
	}
	return app.deliver(subs, notification)
}

// deliver sends the payload to each subscription through the Notifier. A
// missing Notifier makes delivery a no-op so the module works without push
// wired up.
func (app *App) deliver(subs []*domain.PushSubscription, notification Notification) error {
	if app.Notifier == nil || len(subs) == 0 {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshalling notification : %w", err)
	}
	for _, sub := range subs {
		err := app.Notifier.Send(sub, payload)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrEndpointGone) {
			app.Logger.Info("pruning dead push endpoint", "endpoint", sub.Endpoint)
			if err := app.Repo.DeleteSubscriptionByEndpoint(sub.Endpoint); err != nil {
				app.Logger.Warn("pruning subscription", "endpoint", sub.Endpoint, "error", err)
			}
			continue
		}
		app.Logger.Warn("delivering push notification", "endpoint", sub.Endpoint, "error", err)
	}
	return nil
}
