package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

var _ domain.PlanRepository = (*Repository)(nil)

var (
	// ErrPlanNotFound is returned when a payment plan does not exist for the tenant.
	ErrPlanNotFound = errors.New("payment plan not found")
	// ErrInstallmentNotFound is returned when an installment does not exist.
	ErrInstallmentNotFound = errors.New("installment not found")
)

// dbPaymentPlan represents a payment plan as stored in the database.
type dbPaymentPlan struct {
	ID                uuid.UUID       `db:"id"`
	TenantID          uuid.UUID       `db:"tenant_id"`
	PersonID          uuid.UUID       `db:"person_id"`
	InvoiceID         sql.NullString  `db:"invoice_id"`
	StartDate         time.Time       `db:"start_date"`
	Frequency         string          `db:"frequency"`
	NumPayments       int             `db:"n_payments"`
	InstallmentAmount decimal.Decimal `db:"installment_amount"`
	Active            bool            `db:"active"`
	CreatedAt         time.Time       `db:"created_at"`
}

// dbPlanInstallment represents an installment as stored in the database.
type dbPlanInstallment struct {
	ID       uuid.UUID       `db:"id"`
	PlanID   uuid.UUID       `db:"plan_id"`
	Sequence int             `db:"sequence"`
	DueDate  time.Time       `db:"due_date"`
	Amount   decimal.Decimal `db:"amount"`
	Status   string          `db:"status"`
	PaidAt   sql.NullTime    `db:"paid_at"`
}

// toDomainPlan converts a dbPaymentPlan to a domain.PaymentPlan.
func toDomainPlan(dbPlan *dbPaymentPlan) *domain.PaymentPlan {
	return &domain.PaymentPlan{
		ID:                dbPlan.ID,
		TenantID:          dbPlan.TenantID,
		PersonID:          dbPlan.PersonID,
		InvoiceID:         uuidValue(dbPlan.InvoiceID),
		StartDate:         dbPlan.StartDate,
		Frequency:         dbPlan.Frequency,
		NumPayments:       dbPlan.NumPayments,
		InstallmentAmount: dbPlan.InstallmentAmount,
		Active:            dbPlan.Active,
		CreatedAt:         dbPlan.CreatedAt,
	}
}

// fromDomainPlan converts a domain.PaymentPlan to a dbPaymentPlan.
func fromDomainPlan(plan *domain.PaymentPlan) *dbPaymentPlan {
	return &dbPaymentPlan{
		ID:                plan.ID,
		TenantID:          plan.TenantID,
		PersonID:          plan.PersonID,
		InvoiceID:         nullUUID(plan.InvoiceID),
		StartDate:         plan.StartDate,
		Frequency:         plan.Frequency,
		NumPayments:       plan.NumPayments,
		InstallmentAmount: plan.InstallmentAmount,
		Active:            plan.Active,
		CreatedAt:         plan.CreatedAt,
	}
}

// toDomainInstallment converts a dbPlanInstallment to a domain.PlanInstallment.
func toDomainInstallment(dbInstallment *dbPlanInstallment) *domain.PlanInstallment {
	return &domain.PlanInstallment{
		ID:       dbInstallment.ID,
		PlanID:   dbInstallment.PlanID,
		Sequence: dbInstallment.Sequence,
		DueDate:  dbInstallment.DueDate,
		Amount:   dbInstallment.Amount,
		Status:   dbInstallment.Status,
		PaidAt:   timeValue(dbInstallment.PaidAt),
	}
}

// CreatePlan saves a plan together with its generated installments in a
// single transaction, so a half-written schedule never becomes visible.
func (repo *Repository) CreatePlan(plan *domain.PaymentPlan, installments []*domain.PlanInstallment) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting plan transaction: %w", err)
	}
	defer tx.Rollback()

	planQuery := `INSERT INTO payment_plan (id, tenant_id, person_id, invoice_id, start_date, frequency, n_payments, installment_amount, active, created_at)
	              VALUES (:id, :tenant_id, :person_id, :invoice_id, :start_date, :frequency, :n_payments, :installment_amount, :active, :created_at)`

	_, err = tx.NamedExec(planQuery, fromDomainPlan(plan))
	if err != nil {
		return fmt.Errorf("creating plan %s: %w", plan.ID, err)
	}

	installmentQuery := `INSERT INTO plan_installment (id, plan_id, sequence, due_date, amount, status, paid_at)
	                     VALUES (?, ?, ?, ?, ?, ?, NULL)`

	for _, installment := range installments {
		_, err = tx.Exec(installmentQuery, installment.ID, installment.PlanID,
			installment.Sequence, installment.DueDate, installment.Amount, installment.Status)
		if err != nil {
			return fmt.Errorf("creating installment %d of plan %s: %w", installment.Sequence, plan.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing plan %s: %w", plan.ID, err)
	}

	return nil
}

// GetPlan retrieves a plan by ID, scoped to the tenant.
func (repo *Repository) GetPlan(tenantID, id uuid.UUID) (*domain.PaymentPlan, error) {
	var dbPlan dbPaymentPlan
	query := `SELECT * FROM payment_plan WHERE id = ? AND tenant_id = ?`

	err := repo.dbConn.Get(&dbPlan, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting plan %s: %w", id, err)
	}

	return toDomainPlan(&dbPlan), nil
}

// GetPlans retrieves all plans for a person, newest first.
func (repo *Repository) GetPlans(personID uuid.UUID) ([]*domain.PaymentPlan, error) {
	var dbPlans []*dbPaymentPlan
	query := `SELECT * FROM payment_plan WHERE person_id = ? ORDER BY created_at DESC, id DESC`

	err := repo.dbConn.Select(&dbPlans, query, personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving plans for %s: %w", personID, err)
	}

	plans := make([]*domain.PaymentPlan, len(dbPlans))
	for i, dbPlan := range dbPlans {
		plans[i] = toDomainPlan(dbPlan)
	}

	return plans, nil
}

// SetPlanActive flips the active flag on a plan.
func (repo *Repository) SetPlanActive(id uuid.UUID, active bool) error {
	query := `UPDATE payment_plan SET active = ? WHERE id = ?`

	result, err := repo.dbConn.Exec(query, active, id)
	if err != nil {
		return fmt.Errorf("setting active=%t on plan %s: %w", active, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrPlanNotFound
	}

	return nil
}

// GetInstallments retrieves a plan's installments ordered by due date.
func (repo *Repository) GetInstallments(planID uuid.UUID) ([]*domain.PlanInstallment, error) {
	var dbInstallments []*dbPlanInstallment
	query := `SELECT * FROM plan_installment WHERE plan_id = ? ORDER BY due_date, sequence`

	err := repo.dbConn.Select(&dbInstallments, query, planID)
	if err != nil {
		return nil, fmt.Errorf("retrieving installments for plan %s: %w", planID, err)
	}

	installments := make([]*domain.PlanInstallment, len(dbInstallments))
	for i, dbInstallment := range dbInstallments {
		installments[i] = toDomainInstallment(dbInstallment)
	}

	return installments, nil
}

// GetInstallment retrieves a single installment by ID.
func (repo *Repository) GetInstallment(id uuid.UUID) (*domain.PlanInstallment, error) {
	var dbInstallment dbPlanInstallment
	query := `SELECT * FROM plan_installment WHERE id = ?`

	err := repo.dbConn.Get(&dbInstallment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstallmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting installment %s: %w", id, err)
	}

	return toDomainInstallment(&dbInstallment), nil
}

// MarkInstallmentPaid sets an installment's status to paid and records the
// payment time.
func (repo *Repository) MarkInstallmentPaid(id uuid.UUID, paidAt time.Time) error {
	query := `UPDATE plan_installment SET status = ?, paid_at = ? WHERE id = ?`

	result, err := repo.dbConn.Exec(query, domain.InstallmentStatusPaid, paidAt, id)
	if err != nil {
		return fmt.Errorf("marking installment %s paid: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrInstallmentNotFound
	}

	return nil
}

// CountUnpaidInstallments returns the number of installments on the plan
// that are not yet paid.
func (repo *Repository) CountUnpaidInstallments(planID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM plan_installment WHERE plan_id = ? AND status != ?`

	err := repo.dbConn.Get(&count, query, planID, domain.InstallmentStatusPaid)
	if err != nil {
		return 0, fmt.Errorf("counting unpaid installments for plan %s: %w", planID, err)
	}

	return count, nil
}

// NextDueInstallment returns the earliest installment still due on the plan,
// or nil when none are due.
func (repo *Repository) NextDueInstallment(planID uuid.UUID) (*domain.PlanInstallment, error) {
	var dbInstallment dbPlanInstallment
	query := `SELECT * FROM plan_installment
	          WHERE plan_id = ? AND status = ?
	          ORDER BY due_date, sequence
	          LIMIT 1`

	err := repo.dbConn.Get(&dbInstallment, query, planID, domain.InstallmentStatusDue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting next due installment for plan %s: %w", planID, err)
	}

	return toDomainInstallment(&dbInstallment), nil
}
