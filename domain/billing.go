package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPartial = "partial"
	InvoiceStatusPaid    = "paid"
)

// Payment methods accepted on receipts.
const (
	ReceiptMethodCash   = "cash"
	ReceiptMethodCard   = "card"
	ReceiptMethodOnline = "online"
	ReceiptMethodOther  = "other"
)

// InvoiceRepository defines the interface for managing invoices.
type InvoiceRepository interface {
	// CreateInvoice saves a new invoice.
	CreateInvoice(invoice *Invoice) error
	// UpdateInvoice updates an existing invoice.
	UpdateInvoice(invoice *Invoice) error
	// GetInvoice retrieves an invoice by ID, scoped to the tenant.
	GetInvoice(tenantID, id uuid.UUID) (*Invoice, error)
	// GetInvoiceByNumber retrieves a person's invoice by its number, or nil
	// when no invoice carries that number.
	GetInvoiceByNumber(tenantID, personID uuid.UUID, number string) (*Invoice, error)
	// DeleteInvoice removes an invoice together with its receipts.
	DeleteInvoice(tenantID, id uuid.UUID) error
	// GetInvoices retrieves all invoices for a person, newest first.
	GetInvoices(personID uuid.UUID) ([]*Invoice, error)
	// SetInvoiceStatus updates only the status column of an invoice.
	SetInvoiceStatus(id uuid.UUID, status string) error
}

// ReceiptRepository defines the interface for managing payment receipts.
type ReceiptRepository interface {
	// CreateReceipt saves a new receipt.
	CreateReceipt(receipt *Receipt) error
	// UpdateReceipt updates an existing receipt.
	UpdateReceipt(receipt *Receipt) error
	// GetReceipt retrieves a receipt by ID, scoped to the tenant.
	GetReceipt(tenantID, id uuid.UUID) (*Receipt, error)
	// DeleteReceipt removes a receipt.
	DeleteReceipt(tenantID, id uuid.UUID) error
	// GetReceiptsForInvoice retrieves all receipts against an invoice,
	// newest first.
	GetReceiptsForInvoice(invoiceID uuid.UUID) ([]*Receipt, error)
	// GetReceiptsForPerson retrieves all receipts against any of the
	// person's invoices, newest first.
	GetReceiptsForPerson(personID uuid.UUID) ([]*Receipt, error)
	// SumReceipts returns the total amount received against an invoice.
	SumReceipts(invoiceID uuid.UUID) (decimal.Decimal, error)
}

// Invoice represents a charge against a defendant.
type Invoice struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PersonID    uuid.UUID
	Date        time.Time // Issue date. Zero when unknown.
	Number      string    // Invoice number, e.g. "BOND-3". Not enforced unique.
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time // Zero when the invoice has no due date.
	Status      string    // One of the InvoiceStatus constants.
}

// Receipt represents a single payment applied to an invoice.
type Receipt struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Method    string // One of the ReceiptMethod constants.
	Reference string // Free-form reference, e.g. a card authorization code.
}

// InvoiceStatusFor derives the invoice status from its amount and the total
// received against it: paid when fully covered, partial when anything has
// been received, unpaid otherwise.
func InvoiceStatusFor(amount, paid decimal.Decimal) string {
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(amount):
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartial
	default:
		return InvoiceStatusUnpaid
	}
}

// InvoiceRow pairs an invoice with its received and outstanding amounts.
type InvoiceRow struct {
	Invoice *Invoice
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

// BillingTotals aggregates a person's invoiced, received and outstanding
// amounts across all invoices.
type BillingTotals struct {
	Amount  decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
}
