package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

var _ domain.InvoiceRepository = (*Repository)(nil)

var (
	// ErrInvoiceNotFound is returned when an invoice does not exist for the tenant.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// dbInvoice represents an invoice as stored in the database.
type dbInvoice struct {
	ID          uuid.UUID           `db:"id"`
	TenantID    uuid.UUID           `db:"tenant_id"`
	PersonID    uuid.UUID           `db:"person_id"`
	Date        sql.NullTime        `db:"invoice_date"`
	Number      string              `db:"number"`
	Description string              `db:"description"`
	Amount      decimal.NullDecimal `db:"amount"`
	DueDate     sql.NullTime        `db:"due_date"`
	Status      string              `db:"status"`
}

// toDomainInvoice converts a dbInvoice to a domain.Invoice.
func toDomainInvoice(dbInvoice *dbInvoice) *domain.Invoice {
	return &domain.Invoice{
		ID:          dbInvoice.ID,
		TenantID:    dbInvoice.TenantID,
		PersonID:    dbInvoice.PersonID,
		Date:        timeValue(dbInvoice.Date),
		Number:      dbInvoice.Number,
		Description: dbInvoice.Description,
		Amount:      decimalValue(dbInvoice.Amount),
		DueDate:     timeValue(dbInvoice.DueDate),
		Status:      dbInvoice.Status,
	}
}

// fromDomainInvoice converts a domain.Invoice to a dbInvoice.
func fromDomainInvoice(invoice *domain.Invoice) *dbInvoice {
	return &dbInvoice{
		ID:          invoice.ID,
		TenantID:    invoice.TenantID,
		PersonID:    invoice.PersonID,
		Date:        nullTime(invoice.Date),
		Number:      invoice.Number,
		Description: invoice.Description,
		Amount:      nullDecimal(invoice.Amount),
		DueDate:     nullTime(invoice.DueDate),
		Status:      invoice.Status,
	}
}

// CreateInvoice saves a new invoice to the database.
func (repo *Repository) CreateInvoice(invoice *domain.Invoice) error {
	query := `INSERT INTO invoice (id, tenant_id, person_id, invoice_date, number, description, amount, due_date, status)
	          VALUES (:id, :tenant_id, :person_id, :invoice_date, :number, :description, :amount, :due_date, :status)`

	_, err := repo.dbConn.NamedExec(query, fromDomainInvoice(invoice))
	if err != nil {
		return fmt.Errorf("creating invoice %s: %w", invoice.ID, err)
	}

	return nil
}

// UpdateInvoice updates an existing invoice.
func (repo *Repository) UpdateInvoice(invoice *domain.Invoice) error {
	query := `UPDATE invoice
	          SET invoice_date = :invoice_date, number = :number, description = :description,
	              amount = :amount, due_date = :due_date, status = :status
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainInvoice(invoice))
	if err != nil {
		return fmt.Errorf("updating invoice %s: %w", invoice.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", invoice.ID, err)
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// GetInvoice retrieves an invoice by ID, scoped to the tenant.
func (repo *Repository) GetInvoice(tenantID, id uuid.UUID) (*domain.Invoice, error) {
	var dbInvoice dbInvoice
	query := `SELECT * FROM invoice WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbInvoice, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice %s: %w", id, err)
	}

	return toDomainInvoice(&dbInvoice), nil
}

// GetInvoiceByNumber retrieves a person's invoice by its number, or nil when
// no invoice carries that number.
func (repo *Repository) GetInvoiceByNumber(tenantID, personID uuid.UUID, number string) (*domain.Invoice, error) {
	var dbInvoice dbInvoice
	query := `SELECT * FROM invoice WHERE tenant_id = ? AND person_id = ? AND number = ? LIMIT 1`

	err := repo.dbConn.Get(&dbInvoice, query, tenantID, personID, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice by number %q: %w", number, err)
	}

	return toDomainInvoice(&dbInvoice), nil
}

// DeleteInvoice removes an invoice; its receipts cascade.
func (repo *Repository) DeleteInvoice(tenantID, id uuid.UUID) error {
	query := `DELETE FROM invoice WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting invoice %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// GetInvoices retrieves all invoices for a person, newest first.
func (repo *Repository) GetInvoices(personID uuid.UUID) ([]*domain.Invoice, error) {
	var dbInvoices []*dbInvoice
	query := `SELECT * FROM invoice WHERE person_id = ? ORDER BY invoice_date DESC, id DESC`

	err := repo.dbConn.Select(&dbInvoices, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving invoices for %s: %w", personID, err)
	}

	invoices := make([]*domain.Invoice, len(dbInvoices))
	for i, dbInvoice := range dbInvoices {
		invoices[i] = toDomainInvoice(dbInvoice)
	}

	return invoices, nil
}

// SetInvoiceStatus updates only the status column of an invoice.
func (repo *Repository) SetInvoiceStatus(id uuid.UUID, status string) error {
	query := `UPDATE invoice SET status = ? WHERE id = ?`

	result, err := repo.dbConn.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("setting status %q on invoice %s: %w", status, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}
