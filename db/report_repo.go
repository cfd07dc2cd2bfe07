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

var _ domain.ReportRepository = (*Repository)(nil)

// reportDate parses the 'YYYY-MM-DD' strings produced by SQLite's date()
// function back into a time.Time.
func reportDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sqliteTimeLayouts are the formats a stored timestamp can come back in
// when it passes through an expression such as MAX(). Expression columns
// lose their declared type, so the driver hands them over as plain strings.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// reportTime parses a timestamp scanned from an expression column. Zero
// when the column was NULL or unparseable.
func reportTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

// BondsByDateDetailed lists bonds written between start and end (inclusive),
// newest first.
func (repo *Repository) BondsByDateDetailed(tenantID uuid.UUID, start, end time.Time) ([]*domain.BondReportRow, error) {
	var rows []*struct {
		Date       sql.NullTime        `db:"bond_date"`
		PersonID   uuid.UUID           `db:"person_id"`
		FirstName  string              `db:"first_name"`
		LastName   string              `db:"last_name"`
		County     string              `db:"county"`
		BondAmount decimal.NullDecimal `db:"bond_amount"`
		Amount     decimal.NullDecimal `db:"amount"`
	}

	query := `SELECT bond.bond_date, bond.person_id, person.first_name, person.last_name, bond.county, bond.bond_amount, bond.amount
	          FROM bond
	          JOIN person ON person.id = bond.person_id
	          WHERE bond.tenant_id = ?
	            AND bond.bond_date IS NOT NULL
	            AND date(bond.bond_date) >= date(?) AND date(bond.bond_date) <= date(?)
	          ORDER BY bond.bond_date DESC, bond.id DESC`

	err := repo.dbConn.Select(&rows, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("retrieving detailed bond report: %w", err)
	}

	report := make([]*domain.BondReportRow, len(rows))
	for i, row := range rows {
		amount := decimalValue(row.BondAmount)
		if !amount.IsPositive() {
			amount = decimalValue(row.Amount)
		}
		person := domain.Person{FirstName: row.FirstName, LastName: row.LastName}
		report[i] = &domain.BondReportRow{
			Date:       timeValue(row.Date),
			PersonID:   row.PersonID,
			PersonName: person.FullName(),
			County:     row.County,
			Amount:     amount,
		}
	}

	return report, nil
}

// BondsByDateGrouped groups bonds written between start and end by day with
// per-day counts and totals, oldest first.
func (repo *Repository) BondsByDateGrouped(tenantID uuid.UUID, start, end time.Time) ([]*domain.DailyBondTotal, error) {
	var rows []*struct {
		Day   string          `db:"day"`
		Count int             `db:"count"`
		Total decimal.Decimal `db:"total"`
	}

	query := `SELECT date(bond_date) AS day, COUNT(*) AS count,
	                 COALESCE(SUM(COALESCE(bond_amount, amount, 0)), 0) AS total
	          FROM bond
	          WHERE tenant_id = ?
	            AND bond_date IS NOT NULL
	            AND date(bond_date) >= date(?) AND date(bond_date) <= date(?)
	          GROUP BY date(bond_date)
	          ORDER BY day`

	err := repo.dbConn.Select(&rows, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("retrieving grouped bond report: %w", err)
	}

	report := make([]*domain.DailyBondTotal, len(rows))
	for i, row := range rows {
		report[i] = &domain.DailyBondTotal{
			Date:  reportDate(row.Day),
			Count: row.Count,
			Total: row.Total,
		}
	}

	return report, nil
}

// BondsByCounty groups bonds by county with counts and totals, most active
// county first. Zero start/end leave the range unbounded.
func (repo *Repository) BondsByCounty(tenantID uuid.UUID, start, end time.Time) ([]*domain.CountyBondTotal, error) {
	var rows []*struct {
		County string          `db:"county"`
		Count  int             `db:"count"`
		Total  decimal.Decimal `db:"total"`
	}

	query := `SELECT county, COUNT(*) AS count,
	                 COALESCE(SUM(COALESCE(bond_amount, amount, 0)), 0) AS total
	          FROM bond
	          WHERE tenant_id = ?
	            AND (? = 0 OR (bond_date IS NOT NULL AND date(bond_date) >= date(?)))
	            AND (? = 0 OR (bond_date IS NOT NULL AND date(bond_date) <= date(?)))
	          GROUP BY county
	          ORDER BY count DESC, county`

	startFlag, endFlag := boolFlag(!start.IsZero()), boolFlag(!end.IsZero())
	err := repo.dbConn.Select(&rows, query, tenantID, startFlag, start, endFlag, end)
	if err != nil {
		return nil, fmt.Errorf("retrieving county bond report: %w", err)
	}

	report := make([]*domain.CountyBondTotal, len(rows))
	for i, row := range rows {
		report[i] = &domain.CountyBondTotal{
			County: row.County,
			Count:  row.Count,
			Total:  row.Total,
		}
	}

	return report, nil
}

// boolFlag converts a bool to the 0/1 int SQLite expects in flag parameters.
func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PeopleWithBalance lists people whose invoiced total exceeds their receipts,
// highest balance first. With onlyOverdue set, only people holding an invoice
// due on or before asOf are included.
func (repo *Repository) PeopleWithBalance(tenantID uuid.UUID, onlyOverdue bool, asOf time.Time) ([]*domain.PersonBalance, error) {
	var rows []*struct {
		PersonID  uuid.UUID       `db:"person_id"`
		FirstName string          `db:"first_name"`
		LastName  string          `db:"last_name"`
		Phone     string          `db:"phone"`
		Invoiced  decimal.Decimal `db:"invoiced"`
		Paid      decimal.Decimal `db:"paid"`
	}

	query := `SELECT person.id AS person_id, person.first_name, person.last_name, person.phone,
	                 COALESCE((SELECT SUM(COALESCE(invoice.amount, 0)) FROM invoice WHERE invoice.person_id = person.id), 0) AS invoiced,
	                 COALESCE((SELECT SUM(COALESCE(receipt.amount, 0)) FROM receipt
	                           JOIN invoice ON invoice.id = receipt.invoice_id
	                           WHERE invoice.person_id = person.id), 0) AS paid
	          FROM person
	          WHERE person.tenant_id = ?
	            AND invoiced - paid > 0
	            AND (? = 0 OR EXISTS (SELECT 1 FROM invoice
	                                  WHERE invoice.person_id = person.id
	                                    AND invoice.due_date IS NOT NULL
	                                    AND date(invoice.due_date) <= date(?)))
	          ORDER BY invoiced - paid DESC`

	err := repo.dbConn.Select(&rows, query, tenantID, boolFlag(onlyOverdue), asOf)
	if err != nil {
		return nil, fmt.Errorf("retrieving balance report: %w", err)
	}

	report := make([]*domain.PersonBalance, len(rows))
	for i, row := range rows {
		person := domain.Person{FirstName: row.FirstName, LastName: row.LastName}
		report[i] = &domain.PersonBalance{
			PersonID:   row.PersonID,
			PersonName: person.FullName(),
			Phone:      row.Phone,
			Invoiced:   row.Invoiced,
			Paid:       row.Paid,
			Balance:    row.Invoiced.Sub(row.Paid),
		}
	}

	return report, nil
}

// OverdueInvoices lists invoices due on or before cutoff that still carry a
// balance, highest balance first.
func (repo *Repository) OverdueInvoices(tenantID uuid.UUID, cutoff time.Time) ([]*domain.OverdueInvoice, error) {
	var rows []*struct {
		InvoiceID uuid.UUID           `db:"invoice_id"`
		Number    string              `db:"number"`
		PersonID  uuid.UUID           `db:"person_id"`
		FirstName string              `db:"first_name"`
		LastName  string              `db:"last_name"`
		DueDate   sql.NullTime        `db:"due_date"`
		Amount    decimal.NullDecimal `db:"amount"`
		Paid      decimal.Decimal     `db:"paid"`
	}

	query := `SELECT invoice.id AS invoice_id, invoice.number, invoice.person_id,
	                 person.first_name, person.last_name, invoice.due_date, invoice.amount,
	                 COALESCE((SELECT SUM(COALESCE(receipt.amount, 0)) FROM receipt WHERE receipt.invoice_id = invoice.id), 0) AS paid
	          FROM invoice
	          JOIN person ON person.id = invoice.person_id
	          WHERE invoice.tenant_id = ?
	            AND invoice.due_date IS NOT NULL
	            AND date(invoice.due_date) <= date(?)
	            AND COALESCE(invoice.amount, 0) - paid > 0
	          ORDER BY COALESCE(invoice.amount, 0) - paid DESC, invoice.due_date DESC, invoice.id DESC`

	err := repo.dbConn.Select(&rows, query, tenantID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("retrieving overdue invoice report: %w", err)
	}

	report := make([]*domain.OverdueInvoice, len(rows))
	for i, row := range rows {
		amount := decimalValue(row.Amount)
		person := domain.Person{FirstName: row.FirstName, LastName: row.LastName}
		report[i] = &domain.OverdueInvoice{
			InvoiceID:  row.InvoiceID,
			Number:     row.Number,
			PersonID:   row.PersonID,
			PersonName: person.FullName(),
			DueDate:    timeValue(row.DueDate),
			Amount:     amount,
			Paid:       row.Paid,
			Balance:    amount.Sub(row.Paid),
		}
	}

	return report, nil
}

// PeopleWithoutRecentCheckIn lists people whose latest check-in is before
// cutoff, or who have never checked in, ordered by name.
func (repo *Repository) PeopleWithoutRecentCheckIn(tenantID uuid.UUID, cutoff time.Time) ([]*domain.StaleCheckIn, error) {
	var rows []*struct {
		PersonID  uuid.UUID      `db:"person_id"`
		FirstName string         `db:"first_name"`
		LastName  string         `db:"last_name"`
		Phone     string         `db:"phone"`
		LastSeen  sql.NullString `db:"last_seen"`
	}

	query := `SELECT person.id AS person_id, person.first_name, person.last_name, person.phone,
	                 (SELECT MAX(checkin.created_at) FROM checkin WHERE checkin.person_id = person.id) AS last_seen
	          FROM person
	          WHERE person.tenant_id = ?
	            AND (last_seen IS NULL OR last_seen < ?)
	          ORDER BY person.last_name, person.first_name`

	err := repo.dbConn.Select(&rows, query, tenantID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("retrieving stale check-in report: %w", err)
	}

	report := make([]*domain.StaleCheckIn, len(rows))
	for i, row := range rows {
		person := domain.Person{FirstName: row.FirstName, LastName: row.LastName}
		report[i] = &domain.StaleCheckIn{
			PersonID:    row.PersonID,
			PersonName:  person.FullName(),
			Phone:       row.Phone,
			LastCheckIn: reportTime(row.LastSeen),
		}
	}

	return report, nil
}

// UpcomingCourtDates lists court dates between start and end (inclusive)
// with the defendant's name, soonest first.
func (repo *Repository) UpcomingCourtDates(tenantID uuid.UUID, start, end time.Time) ([]*domain.CourtDateRow, error) {
	var rows []*struct {
		CourtDateID uuid.UUID    `db:"court_date_id"`
		Date        sql.NullTime `db:"date"`
		TimeOfDay   string       `db:"time_of_day"`
		PersonID    uuid.UUID    `db:"person_id"`
		FirstName   string       `db:"first_name"`
		LastName    string       `db:"last_name"`
		County      string       `db:"county"`
		Court       string       `db:"court"`
		CaseNumber  string       `db:"case_number"`
		Notes       string       `db:"notes"`
	}

	query := `SELECT court_date.id AS court_date_id, court_date.date, court_date.time_of_day,
	                 court_date.person_id, person.first_name, person.last_name,
	                 court_date.county, court_date.court, court_date.case_number, court_date.notes
	          FROM court_date
	          JOIN person ON person.id = court_date.person_id
	          WHERE court_date.tenant_id = ?
	            AND court_date.date IS NOT NULL
	            AND date(court_date.date) >= date(?) AND date(court_date.date) <= date(?)
	          ORDER BY court_date.date, court_date.time_of_day, court_date.id`

	err := repo.dbConn.Select(&rows, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("retrieving upcoming court date report: %w", err)
	}

	report := make([]*domain.CourtDateRow, len(rows))
	for i, row := range rows {
		person := domain.Person{FirstName: row.FirstName, LastName: row.LastName}
		report[i] = &domain.CourtDateRow{
			CourtDateID: row.CourtDateID,
			Date:        timeValue(row.Date),
			TimeOfDay:   row.TimeOfDay,
			PersonID:    row.PersonID,
			PersonName:  person.FullName(),
			County:      row.County,
			Court:       row.Court,
			CaseNumber:  row.CaseNumber,
			Notes:       row.Notes,
		}
	}

	return report, nil
}

// BillingSummary aggregates a person's balance and the date of their last
// payment.
func (repo *Repository) BillingSummary(tenantID, personID uuid.UUID) (*domain.BillingSummary, error) {
	var row struct {
		Invoiced    decimal.Decimal `db:"invoiced"`
		Paid        decimal.Decimal `db:"paid"`
		LastPayment sql.NullString  `db:"last_payment"`
	}

	query := `SELECT COALESCE((SELECT SUM(COALESCE(amount, 0)) FROM invoice
	                           WHERE person_id = ? AND tenant_id = ?), 0) AS invoiced,
	                 COALESCE((SELECT SUM(COALESCE(receipt.amount, 0)) FROM receipt
	                           JOIN invoice ON invoice.id = receipt.invoice_id
	                           WHERE invoice.person_id = ? AND invoice.tenant_id = ?), 0) AS paid,
	                 (SELECT MAX(receipt.receipt_date) FROM receipt
	                  JOIN invoice ON invoice.id = receipt.invoice_id
	                  WHERE invoice.person_id = ? AND invoice.tenant_id = ?) AS last_payment`

	err := repo.dbConn.Get(&row, query, personID, tenantID, personID, tenantID, personID, tenantID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("retrieving billing summary for %s: %w", personID, err)
	}

	return &domain.BillingSummary{
		Balance:     row.Invoiced.Sub(row.Paid),
		LastPayment: reportTime(row.LastPayment),
	}, nil
}
