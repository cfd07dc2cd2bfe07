// Package bondkeeper provides the case-management core for a bail-bond
// agency: defendants and the people on their file, bonds with automatic
// invoicing, court dates, supervision check-ins, billing with receipts and
// payment plans, and self-service check-in links. It is designed to be
// decoupled from GUI implementations; the embedding application wires in a
// repository and handlers and drives everything through the App type.
//
// The core functionality includes:
//   - Defendant files with indemnitors, references and free-text search
//   - Bonds with automatic premium invoicing and remembered lookup values
//   - Court date tracking with calendar grouping
//   - Check-ins recorded by staff or submitted through signed self links
//   - Invoices, receipts and installment payment plans
//   - Reporting over bonds, balances and supervision activity
//   - SQLite database storage behind a repository interface
package bondkeeper

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

// ErrNoActiveTenant is returned by operations that need a tenant before one
// has been activated.
var ErrNoActiveTenant = errors.New("no active tenant")

// Repository defines the methods consumed by the app to interact with the
// SQLite backend. It composes the per-entity repositories from domain and
// adds lifecycle management.
type Repository interface {
	domain.TenantRepository
	domain.PersonRepository
	domain.BondRepository
	domain.CourtDateRepository
	domain.CheckInRepository
	domain.InvoiceRepository
	domain.ReceiptRepository
	domain.PlanRepository
	domain.LookupRepository
	domain.PushRepository
	domain.AuditRepository
	domain.ReportRepository
	Close() error
}

// App is the main struct that orchestrates all case-management functionality
// including bond and billing workflows, self check-in links, push
// subscription bookkeeping, and audit logging. It serves as the central
// coordinator consumed by the embedding application.
type App struct {
	ConfigDir  string         // The configuration directory
	Config     *Config        // The agency configuration
	Repo       Repository     // DB Repository Interface
	Logger     *slog.Logger   // Structured logger, never nil after New
	Tenant     *domain.Tenant // The active tenant; all operations are scoped to it
	Notifier   Notifier       // Push delivery hook supplied by the embedding application
	OnCheckIn  func(checkIn *domain.CheckIn) error // Ran on each self check-in - used by the GUI to refresh views
	linkSecret []byte         // HMAC key for self check-in links
}

// New creates a new App instance with default configuration and applies any
// provided options.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Logger: slog.Default(),
	}
	err := app.WithOptions(options...)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ActivateTenant makes the given tenant the active one. A zero id activates
// the first configured tenant, the fallback for single-agency deployments.
func (app *App) ActivateTenant(id uuid.UUID) error {
	if app.Repo == nil {
		return errors.New("app has no repository")
	}
	var tenant *domain.Tenant
	var err error
	if id == uuid.Nil {
		tenant, err = app.Repo.GetAnyTenant()
	} else {
		tenant, err = app.Repo.GetTenant(id)
	}
	if err != nil {
		return fmt.Errorf("activating tenant : %w", err)
	}
	app.Tenant = tenant
	return nil
}

// EnsureTenant activates the first configured tenant, creating one with the
// given name when the database holds none yet.
func (app *App) EnsureTenant(name string) error {
	err := app.ActivateTenant(uuid.Nil)
	if err == nil {
		return nil
	}
	id, idErr := uuid.NewV7()
	if idErr != nil {
		return fmt.Errorf("generating new uuid : %w", idErr)
	}
	tenant := &domain.Tenant{ID: id, Name: name}
	if err := app.Repo.CreateTenant(tenant); err != nil {
		return fmt.Errorf("creating tenant %s : %w", name, err)
	}
	app.Tenant = tenant
	return nil
}

// tenantID returns the active tenant's id, or ErrNoActiveTenant.
func (app *App) tenantID() (uuid.UUID, error) {
	if app.Tenant == nil {
		return uuid.Nil, ErrNoActiveTenant
	}
	return app.Tenant.ID, nil
}

// WriteAudit records an event on the active tenant's activity log and mirrors
// it to the structured logger.
func (app *App) WriteAudit(level string, message string, options ...func(entry *domain.AuditEntry) error) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: DEBUG, INFO, WARN, ERROR, FATAL")
	}
	tenantID, err := app.tenantID()
	if err != nil {
		return err
	}
	uuid, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	entry := domain.AuditEntry{
		ID:        uuid,
		TenantID:  tenantID,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, option := range options {
		err := option(&entry)
		if err != nil {
			return fmt.Errorf("applying audit option : %w", err)
		}
	}
	if app.Repo != nil {
		if err := app.Repo.InsertAudit(&entry); err != nil {
			return fmt.Errorf("inserting audit entry : %w", err)
		}
	}
	app.Logger.Info(message, "level", level, "tenant", tenantID)
	return nil
}

// Close releases the repository.
func (app *App) Close() error {
	if app.Repo == nil {
		return nil
	}
	return app.Repo.Close()
}
