package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment plan cadences.
const (
	PlanFrequencyWeekly   = "weekly"
	PlanFrequencyBiweekly = "biweekly"
	PlanFrequencyMonthly  = "monthly"
)

// Installment statuses.
const (
	InstallmentStatusDue  = "due"
	InstallmentStatusPaid = "paid"
	InstallmentStatusLate = "late"
)

// PlanRepository defines the interface for managing payment plans and their
// installments.
type PlanRepository interface {
	// CreatePlan saves a plan together with its generated installments in a
	// single transaction.
	CreatePlan(plan *PaymentPlan, installments []*PlanInstallment) error
	// GetPlan retrieves a plan by ID, scoped to the tenant.
	GetPlan(tenantID, id uuid.UUID) (*PaymentPlan, error)
	// GetPlans retrieves all plans for a person, newest first.
	GetPlans(personID uuid.UUID) ([]*PaymentPlan, error)
	// SetPlanActive flips the active flag on a plan.
	SetPlanActive(id uuid.UUID, active bool) error
	// GetInstallments retrieves a plan's installments ordered by due date.
	GetInstallments(planID uuid.UUID) ([]*PlanInstallment, error)
	// GetInstallment retrieves a single installment by ID.
	GetInstallment(id uuid.UUID) (*PlanInstallment, error)
	// MarkInstallmentPaid sets an installment's status to paid and records
	// the payment time.
	MarkInstallmentPaid(id uuid.UUID, paidAt time.Time) error
	// CountUnpaidInstallments returns the number of installments on the
	// plan that are not yet paid.
	CountUnpaidInstallments(planID uuid.UUID) (int, error)
	// NextDueInstallment returns the earliest installment still due on the
	// plan, or nil when none are due.
	NextDueInstallment(planID uuid.UUID) (*PlanInstallment, error)
}

// PaymentPlan represents an agreement to pay a balance off in fixed
// installments on a regular cadence.
type PaymentPlan struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	PersonID          uuid.UUID
	InvoiceID         *uuid.UUID // Optional invoice the plan pays down.
	StartDate         time.Time  // Due date of the first installment.
	Frequency         string     // One of the PlanFrequency constants.
	NumPayments       int
	InstallmentAmount decimal.Decimal
	Active            bool
	CreatedAt         time.Time
}

// TotalAmount returns the full value of the plan: installment amount times
// the number of payments.
func (p *PaymentPlan) TotalAmount() decimal.Decimal {
	return p.InstallmentAmount.Mul(decimal.NewFromInt(int64(p.NumPayments)))
}

// PlanInstallment represents one scheduled payment on a plan.
type PlanInstallment struct {
	ID       uuid.UUID
	PlanID   uuid.UUID
	Sequence int // 1-based position in the schedule, unique per plan.
	DueDate  time.Time
	Amount   decimal.Decimal
	Status   string    // One of the InstallmentStatus constants.
	PaidAt   time.Time // Zero until the installment is paid.
}

// ValidPlanFrequency reports whether frequency is a supported cadence.
func ValidPlanFrequency(frequency string) bool {
	switch frequency {
	case PlanFrequencyWeekly, PlanFrequencyBiweekly, PlanFrequencyMonthly:
		return true
	}
	return false
}

// InstallmentDueDate computes the due date of the seq-th installment
// (1-based) for a plan starting on start. Weekly steps 7 days, biweekly 14.
// Monthly uses a flat 30-day month so schedules stay aligned regardless of
// calendar month length.
func InstallmentDueDate(start time.Time, frequency string, seq int) time.Time {
	switch frequency {
	case PlanFrequencyWeekly:
		return start.AddDate(0, 0, 7*(seq-1))
	case PlanFrequencyBiweekly:
		return start.AddDate(0, 0, 14*(seq-1))
	default:
		return start.AddDate(0, 0, 30*(seq-1))
	}
}
