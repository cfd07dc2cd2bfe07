package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportRepository defines the aggregate queries behind the reporting tab.
// All amounts attribute COALESCE(bond_amount, amount) to a bond, matching
// EffectiveAmount.
type ReportRepository interface {
	// BondsByDateDetailed lists bonds written between start and end
	// (inclusive), newest first.
	BondsByDateDetailed(tenantID uuid.UUID, start, end time.Time) ([]*BondReportRow, error)
	// BondsByDateGrouped groups bonds written between start and end by day
	// with per-day counts and totals, oldest first.
	BondsByDateGrouped(tenantID uuid.UUID, start, end time.Time) ([]*DailyBondTotal, error)
	// BondsByCounty groups bonds by county with counts and totals, most
	// active county first. Zero start/end leave the range unbounded.
	BondsByCounty(tenantID uuid.UUID, start, end time.Time) ([]*CountyBondTotal, error)
	// PeopleWithBalance lists people whose invoiced total exceeds their
	// receipts, highest balance first. With onlyOverdue set, only people
	// holding an invoice due on or before asOf are included.
	PeopleWithBalance(tenantID uuid.UUID, onlyOverdue bool, asOf time.Time) ([]*PersonBalance, error)
	// OverdueInvoices lists invoices due on or before cutoff that still
	// carry a balance, highest balance first.
	OverdueInvoices(tenantID uuid.UUID, cutoff time.Time) ([]*OverdueInvoice, error)
	// PeopleWithoutRecentCheckIn lists people whose latest check-in is
	// before cutoff, or who have never checked in, ordered by name.
	PeopleWithoutRecentCheckIn(tenantID uuid.UUID, cutoff time.Time) ([]*StaleCheckIn, error)
	// UpcomingCourtDates lists court dates between start and end
	// (inclusive) with the defendant's name, soonest first.
	UpcomingCourtDates(tenantID uuid.UUID, start, end time.Time) ([]*CourtDateRow, error)
	// BillingSummary aggregates a person's balance and the date of their
	// last payment.
	BillingSummary(tenantID, personID uuid.UUID) (*BillingSummary, error)
}

// BondReportRow is one bond in the detailed bonds-by-date report.
type BondReportRow struct {
	Date       time.Time
	PersonID   uuid.UUID
	PersonName string
	County     string
	Amount     decimal.Decimal
}

// DailyBondTotal is one day in the grouped bonds-by-date report.
type DailyBondTotal struct {
	Date  time.Time
	Count int
	Total decimal.Decimal
}

// CountyBondTotal is one county in the bonds-by-county report.
type CountyBondTotal struct {
	County string
	Count  int
	Total  decimal.Decimal
}

// PersonBalance is one person in the outstanding-balance report.
type PersonBalance struct {
	PersonID   uuid.UUID
	PersonName string
	Phone      string
	Invoiced   decimal.Decimal
	Paid       decimal.Decimal
	Balance    decimal.Decimal
}

// OverdueInvoice is one invoice in the overdue-invoices report.
type OverdueInvoice struct {
	InvoiceID  uuid.UUID
	Number     string
	PersonID   uuid.UUID
	PersonName string
	DueDate    time.Time
	Amount     decimal.Decimal
	Paid       decimal.Decimal
	Balance    decimal.Decimal
}

// StaleCheckIn is one person in the missed-check-in report. LastCheckIn is
// zero when the person has never checked in.
type StaleCheckIn struct {
	PersonID    uuid.UUID
	PersonName  string
	Phone       string
	LastCheckIn time.Time
}

// CourtDateRow is one appearance in the upcoming-court-dates report.
type CourtDateRow struct {
	CourtDateID uuid.UUID
	Date        time.Time
	TimeOfDay   string
	PersonID    uuid.UUID
	PersonName  string
	County      string
	Court       string
	CaseNumber  string
	Notes       string
}

// BillingSummary is the at-a-glance billing position for one person.
// LastPayment is zero when no receipt has ever been recorded.
type BillingSummary struct {
	Balance     decimal.Decimal
	LastPayment time.Time
}
