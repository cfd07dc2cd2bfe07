package bondkeeper

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/db"
	"bondkeeper/domain"
)

// ErrInactivePlan is returned when recording a payment against a cancelled
// plan.
var ErrInactivePlan = errors.New("payment plan is not active")

// CreateBond saves a new bond, remembers its free-text values for later
// autocomplete and raises the premium invoice for it. The invoice is
// numbered after the bond so writing the same bond twice never bills twice.
func (app *App) CreateBond(bond *domain.Bond) (*domain.Invoice, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if bond.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generating new uuid : %w", err)
		}
		bond.ID = id
	}
	bond.TenantID = tenantID

	// Writing the same bond twice is a no-op, so retried submissions never
	// bill twice.
	existing, err := app.Repo.GetBond(tenantID, bond.ID)
	if err != nil && !errors.Is(err, db.ErrBondNotFound) {
		return nil, fmt.Errorf("checking for existing bond : %w", err)
	}
	if existing == nil {
		if err := app.Repo.CreateBond(bond); err != nil {
			return nil, fmt.Errorf("creating bond : %w", err)
		}
	}
	app.rememberBondLookups(bond)

	invoice, err := app.ensureBondInvoice(bond)
	if err != nil {
		return nil, err
	}

	err = app.WriteAudit("INFO", fmt.Sprintf("Bond written for %s", bond.County),
		AuditWithPerson(bond.PersonID),
		AuditWithContext(map[string]any{"bond": bond.ID.String(), "amount": bond.EffectiveAmount().String()}),
	)
	if err != nil {
		app.Logger.Warn("writing bond audit entry", "error", err)
	}
	return invoice, nil
}

// UpdateBond updates an existing bond and remembers any new free-text
// values. The premium invoice is not touched; billing corrections go through
// the invoice directly.
func (app *App) UpdateBond(bond *domain.Bond) error {
	if err := app.Repo.UpdateBond(bond); err != nil {
		return fmt.Errorf("updating bond : %w", err)
	}
	app.rememberBondLookups(bond)
	return nil
}

// rememberBondLookups feeds the bond's free-text fields into the
// autocomplete vocabulary. Failures only warn; losing a suggestion must not
// fail the bond.
func (app *App) rememberBondLookups(bond *domain.Bond) {
	lookups := map[string]string{
		domain.LookupCategoryCharge:       bond.Charge,
		domain.LookupCategoryCounty:       bond.County,
		domain.LookupCategoryOffenseType:  bond.OffenseType,
		domain.LookupCategoryJurisdiction: bond.Jurisdiction,
	}
	for category, value := range lookups {
		if err := app.Repo.RememberLookup(category, value); err != nil {
			app.Logger.Warn("remembering lookup value", "category", category, "error", err)
		}
	}
}

// ensureBondInvoice raises the premium invoice for a bond, or returns the
// existing one when the bond was already billed. Bonds without an amount
// raise nothing.
func (app *App) ensureBondInvoice(bond *domain.Bond) (*domain.Invoice, error) {
	if !bond.EffectiveAmount().IsPositive() {
		return nil, nil
	}
	number := fmt.Sprintf("BOND-%s", bond.ID)
	existing, err := app.Repo.GetInvoiceByNumber(bond.TenantID, bond.PersonID, number)
	if err != nil {
		return nil, fmt.Errorf("checking for existing bond invoice : %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	offense := bond.OffenseType
	if offense == "" {
		offense = "Offense"
	}
	issueDate := bond.Date
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	invoice := &domain.Invoice{
		ID:          id,
		TenantID:    bond.TenantID,
		PersonID:    bond.PersonID,
		Date:        issueDate,
		Number:      number,
		Description: fmt.Sprintf("Bond for %s", offense),
		Amount:      bond.EffectiveAmount(),
		DueDate:     issueDate,
		Status:      domain.InvoiceStatusUnpaid,
	}
	if err := app.Repo.CreateInvoice(invoice); err != nil {
		return nil, fmt.Errorf("creating bond invoice %s : %w", number, err)
	}
	return invoice, nil
}

// AddReceipt records a payment against an invoice and rolls the invoice
// status forward from the new received total.
func (app *App) AddReceipt(invoiceID uuid.UUID, amount decimal.Decimal, method, reference string, date time.Time) (*domain.Receipt, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("receipt amount must be positive, got %s", amount)
	}
	invoice, err := app.Repo.GetInvoice(tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("loading invoice %s : %w", invoiceID, err)
	}
	if date.IsZero() {
		date = time.Now()
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	receipt := &domain.Receipt{
		ID:        id,
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Date:      date,
		Amount:    amount,
		Method:    method,
		Reference: reference,
	}
	if err := app.Repo.CreateReceipt(receipt); err != nil {
		return nil, fmt.Errorf("creating receipt : %w", err)
	}
	if err := app.refreshInvoiceStatus(invoice); err != nil {
		return nil, err
	}

	err = app.WriteAudit("INFO", fmt.Sprintf("Payment of %s received on %s", amount, invoice.Number),
		AuditWithPerson(invoice.PersonID),
		AuditWithContext(map[string]any{"invoice": invoice.ID.String(), "method": method}),
	)
	if err != nil {
		app.Logger.Warn("writing receipt audit entry", "error", err)
	}
	return receipt, nil
}

// RemoveReceipt deletes a payment and rolls the invoice status back from the
// remaining receipts.
func (app *App) RemoveReceipt(receiptID uuid.UUID) error {
	tenantID, err := app.tenantID()
	if err != nil {
		return err
	}
	receipt, err := app.Repo.GetReceipt(tenantID, receiptID)
	if err != nil {
		return fmt.Errorf("loading receipt %s : %w", receiptID, err)
	}
	invoice, err := app.Repo.GetInvoice(tenantID, receipt.InvoiceID)
	if err != nil {
		return fmt.Errorf("loading invoice %s : %w", receipt.InvoiceID, err)
	}
	if err := app.Repo.DeleteReceipt(tenantID, receiptID); err != nil {
		return fmt.Errorf("deleting receipt %s : %w", receiptID, err)
	}
	return app.refreshInvoiceStatus(invoice)
}

// refreshInvoiceStatus recomputes an invoice's status from the receipts
// currently applied to it.
func (app *App) refreshInvoiceStatus(invoice *domain.Invoice) error {
	paid, err := app.Repo.SumReceipts(invoice.ID)
	if err != nil {
		return fmt.Errorf("summing receipts for %s : %w", invoice.ID, err)
	}
	status := domain.InvoiceStatusFor(invoice.Amount, paid)
	if status == invoice.Status {
		return nil
	}
	if err := app.Repo.SetInvoiceStatus(invoice.ID, status); err != nil {
		return fmt.Errorf("setting status %s on invoice %s : %w", status, invoice.ID, err)
	}
	invoice.Status = status
	return nil
}

// InvoiceContext assembles a person's billing view: every invoice with its
// received and outstanding amounts, plus the totals across all of them.
func (app *App) InvoiceContext(personID uuid.UUID) ([]*domain.InvoiceRow, *domain.BillingTotals, error) {
	invoices, err := app.Repo.GetInvoices(personID)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving invoices for %s : %w", personID, err)
	}
	rows := make([]*domain.InvoiceRow, len(invoices))
	totals := &domain.BillingTotals{}
	for i, invoice := range invoices {
		paid, err := app.Repo.SumReceipts(invoice.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("summing receipts for %s : %w", invoice.ID, err)
		}
		rows[i] = &domain.InvoiceRow{
			Invoice: invoice,
			Paid:    paid,
			Balance: invoice.Amount.Sub(paid),
		}
		totals.Amount = totals.Amount.Add(invoice.Amount)
		totals.Paid = totals.Paid.Add(paid)
	}
	totals.Balance = totals.Amount.Sub(totals.Paid)
	return rows, totals, nil
}

// CreatePaymentPlan sets up an installment schedule for a person, optionally
// tied to a specific invoice. Installments are generated up front from the
// start date and cadence.
func (app *App) CreatePaymentPlan(personID uuid.UUID, invoiceID *uuid.UUID, start time.Time, frequency string, numPayments int, installmentAmount decimal.Decimal) (*domain.PaymentPlan, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if !domain.ValidPlanFrequency(frequency) {
		return nil, fmt.Errorf("frequency should be either: weekly, biweekly, monthly")
	}
	if numPayments < 1 {
		return nil, fmt.Errorf("plan needs at least one payment, got %d", numPayments)
	}
	if !installmentAmount.IsPositive() {
		return nil, fmt.Errorf("installment amount must be positive, got %s", installmentAmount)
	}
	if invoiceID != nil {
		if _, err := app.Repo.GetInvoice(tenantID, *invoiceID); err != nil {
			return nil, fmt.Errorf("loading invoice %s : %w", *invoiceID, err)
		}
	}

	planID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating new uuid : %w", err)
	}
	plan := &domain.PaymentPlan{
		ID:                planID,
		TenantID:          tenantID,
		PersonID:          personID,
		InvoiceID:         invoiceID,
		StartDate:         start,
		Frequency:         frequency,
		NumPayments:       numPayments,
		InstallmentAmount: installmentAmount,
		Active:            true,
		CreatedAt:         time.Now(),
	}
	installments := make([]*domain.PlanInstallment, numPayments)
	for seq := 1; seq <= numPayments; seq++ {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generating new uuid : %w", err)
		}
		installments[seq-1] = &domain.PlanInstallment{
			ID:       id,
			PlanID:   planID,
			Sequence: seq,
			DueDate:  domain.InstallmentDueDate(start, frequency, seq),
			Amount:   installmentAmount,
			Status:   domain.InstallmentStatusDue,
		}
	}
	if err := app.Repo.CreatePlan(plan, installments); err != nil {
		return nil, fmt.Errorf("creating payment plan : %w", err)
	}

	err = app.WriteAudit("INFO", fmt.Sprintf("Payment plan of %d x %s started", numPayments, installmentAmount),
		AuditWithPerson(personID),
		AuditWithContext(map[string]any{"plan": planID.String(), "frequency": frequency}),
	)
	if err != nil {
		app.Logger.Warn("writing plan audit entry", "error", err)
	}
	return plan, nil
}

// PayInstallment marks an installment paid, records the payment as a receipt
// when the plan is tied to an invoice, and retires the plan once nothing is
// left to pay.
func (app *App) PayInstallment(planID, installmentID uuid.UUID, method, reference string) error {
	tenantID, err := app.tenantID()
	if err != nil {
		return err
	}
	plan, err := app.Repo.GetPlan(tenantID, planID)
	if err != nil {
		return fmt.Errorf("loading plan %s : %w", planID, err)
	}
	if !plan.Active {
		return ErrInactivePlan
	}
	installment, err := app.Repo.GetInstallment(installmentID)
	if err != nil {
		return fmt.Errorf("loading installment %s : %w", installmentID, err)
	}
	if installment.PlanID != plan.ID {
		return fmt.Errorf("installment %s does not belong to plan %s", installmentID, planID)
	}
	if installment.Status == domain.InstallmentStatusPaid {
		return nil
	}

	paidAt := time.Now()
	if err := app.Repo.MarkInstallmentPaid(installment.ID, paidAt); err != nil {
		return fmt.Errorf("marking installment paid : %w", err)
	}
	if plan.InvoiceID != nil {
		if _, err := app.AddReceipt(*plan.InvoiceID, installment.Amount, method, reference, paidAt); err != nil {
			return fmt.Errorf("recording installment receipt : %w", err)
		}
	}

	remaining, err := app.Repo.CountUnpaidInstallments(plan.ID)
	if err != nil {
		return fmt.Errorf("counting unpaid installments : %w", err)
	}
	if remaining == 0 {
		if err := app.Repo.SetPlanActive(plan.ID, false); err != nil {
			return fmt.Errorf("retiring completed plan %s : %w", plan.ID, err)
		}
		err = app.WriteAudit("INFO", "Payment plan completed", AuditWithPerson(plan.PersonID),
			AuditWithContext(map[string]any{"plan": plan.ID.String()}))
		if err != nil {
			app.Logger.Warn("writing plan audit entry", "error", err)
		}
	}
	return nil
}

// CancelPlan deactivates a plan, leaving its unpaid installments in place
// for the record.
func (app *App) CancelPlan(planID uuid.UUID) error {
	tenantID, err := app.tenantID()
	if err != nil {
		return err
	}
	plan, err := app.Repo.GetPlan(tenantID, planID)
	if err != nil {
		return fmt.Errorf("loading plan %s : %w", planID, err)
	}
	if !plan.Active {
		return nil
	}
	if err := app.Repo.SetPlanActive(plan.ID, false); err != nil {
		return fmt.Errorf("cancelling plan %s : %w", plan.ID, err)
	}
	err = app.WriteAudit("WARN", "Payment plan cancelled", AuditWithPerson(plan.PersonID),
		AuditWithContext(map[string]any{"plan": plan.ID.String()}))
	if err != nil {
		app.Logger.Warn("writing plan audit entry", "error", err)
	}
	return nil
}
