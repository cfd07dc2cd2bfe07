package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

var _ domain.ReceiptRepository = (*Repository)(nil)

var (
	// ErrReceiptNotFound is returned when a receipt does not exist for the tenant.
	ErrReceiptNotFound = errors.New("receipt not found")
)

// dbReceipt represents a receipt as stored in the database.
type dbReceipt struct {
	ID        uuid.UUID           `db:"id"`
	TenantID  uuid.UUID           `db:"tenant_id"`
	InvoiceID uuid.UUID           `db:"invoice_id"`
	Date      sql.NullTime        `db:"receipt_date"`
	Amount    decimal.NullDecimal `db:"amount"`
	Method    string              `db:"method"`
	Reference string              `db:"reference"`
}

// toDomainReceipt converts a dbReceipt to a domain.Receipt.
func toDomainReceipt(dbReceipt *dbReceipt) *domain.Receipt {
	return &domain.Receipt{
		ID:        dbReceipt.ID,
		TenantID:  dbReceipt.TenantID,
		InvoiceID: dbReceipt.InvoiceID,
		Date:      timeValue(dbReceipt.Date),
		Amount:    decimalValue(dbReceipt.Amount),
		Method:    dbReceipt.Method,
		Reference: dbReceipt.Reference,
	}
}

// fromDomainReceipt converts a domain.Receipt to a dbReceipt.
func fromDomainReceipt(receipt *domain.Receipt) *dbReceipt {
	return &dbReceipt{
		ID:        receipt.ID,
		TenantID:  receipt.TenantID,
		InvoiceID: receipt.InvoiceID,
		Date:      nullTime(receipt.Date),
		Amount:    nullDecimal(receipt.Amount),
		Method:    receipt.Method,
		Reference: receipt.Reference,
	}
}

// CreateReceipt saves a new receipt to the database.
func (repo *Repository) CreateReceipt(receipt *domain.Receipt) error {
	query := `INSERT INTO receipt (id, tenant_id, invoice_id, receipt_date, amount, method, reference)
	          VALUES (:id, :tenant_id, :invoice_id, :receipt_date, :amount, :method, :reference)`

	_, err := repo.dbConn.NamedExec(query, fromDomainReceipt(receipt))
	if err != nil {
		return fmt.Errorf("creating receipt %s: %w", receipt.ID, err)
	}

	return nil
}

// UpdateReceipt updates an existing receipt.
func (repo *Repository) UpdateReceipt(receipt *domain.Receipt) error {
	query := `UPDATE receipt
	          SET receipt_date = :receipt_date, amount = :amount, method = :method, reference = :reference
	          WHERE id = :id AND tenant_id = :tenant_id`

	result, err := repo.dbConn.NamedExec(query, fromDomainReceipt(receipt))
	if err != nil {
		return fmt.Errorf("updating receipt %s: %w", receipt.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", receipt.ID, err)
	}
	if rowsAffected == 0 {
		return ErrReceiptNotFound
	}

	return nil
}

// GetReceipt retrieves a receipt by ID, scoped to the tenant.
func (repo *Repository) GetReceipt(tenantID, id uuid.UUID) (*domain.Receipt, error) {
	var dbReceipt dbReceipt
	query := `SELECT * FROM receipt WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbReceipt, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting receipt %s: %w", id, err)
	}

	return toDomainReceipt(&dbReceipt), nil
}

// DeleteReceipt removes a receipt.
func (repo *Repository) DeleteReceipt(tenantID, id uuid.UUID) error {
	query := `DELETE FROM receipt WHERE id = ? AND tenant_id = ?`

	result, err := repo.dbConn.Exec(query, id, tenantID)
	if err != nil {
		return fmt.Errorf("deleting receipt %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrReceiptNotFound
	}

	return nil
}

// GetReceiptsForInvoice retrieves all receipts against an invoice, newest first.
func (repo *Repository) GetReceiptsForInvoice(invoiceID uuid.UUID) ([]*domain.Receipt, error) {
	var dbReceipts []*dbReceipt
	query := `SELECT * FROM receipt WHERE invoice_id = ? ORDER BY receipt_date DESC, id DESC`

	err := repo.dbConn.Select(&dbReceipts, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("retrieving receipts for invoice %s: %w", invoiceID, err)
	}

	receipts := make([]*domain.Receipt, len(dbReceipts))
	for i, dbReceipt := range dbReceipts {
		receipts[i] = toDomainReceipt(dbReceipt)
	}

	return receipts, nil
}

// GetReceiptsForPerson retrieves all receipts against any of the person's
// invoices, newest first.
func (repo *Repository) GetReceiptsForPerson(personID uuid.UUID) ([]*domain.Receipt, error) {
	var dbReceipts []*dbReceipt
	query := `SELECT receipt.* FROM receipt
	          JOIN invoice ON invoice.id = receipt.invoice_id
	          WHERE invoice.person_id = ?
	          ORDER BY receipt.receipt_date DESC, receipt.id DESC`

	err := repo.dbConn.Select(&dbReceipts, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving receipts for person %s: %w", personID, err)
	}

	receipts := make([]*domain.Receipt, len(dbReceipts))
	for i, dbReceipt := range dbReceipts {
		receipts[i] = toDomainReceipt(dbReceipt)
	}

	return receipts, nil
}

// SumReceipts returns the total amount received against an invoice.
func (repo *Repository) SumReceipts(invoiceID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM receipt WHERE invoice_id = ?`

	err := repo.dbConn.Get(&total, query, invoiceID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("summing receipts for invoice %s: %w", invoiceID, err)
	}

	return total, nil
}
