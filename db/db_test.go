package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewCaseRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func newID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}
	return id
}

func testTenant(t *testing.T, repo *Repository) *domain.Tenant {
	t.Helper()

	tenant := &domain.Tenant{
		ID:   newID(t),
		Name: "Testing Bail Bonds",
	}
	if err := repo.CreateTenant(tenant); err != nil {
		t.Fatalf("creating tenant: %v", err)
	}
	return tenant
}

func testPerson(t *testing.T, repo *Repository, tenantID uuid.UUID, firstName, lastName string) *domain.Person {
	t.Helper()

	person := &domain.Person{
		ID:        newID(t),
		TenantID:  tenantID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     "555-0100",
		Email:     "defendant@example.com",
		City:      "Austin",
		State:     "TX",
		DOB:       time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreatePerson(person); err != nil {
		t.Fatalf("creating person: %v", err)
	}
	return person
}

func testBond(t *testing.T, repo *Repository, tenantID, personID uuid.UUID, amount string, date time.Time) *domain.Bond {
	t.Helper()

	bond := &domain.Bond{
		ID:          newID(t),
		TenantID:    tenantID,
		PersonID:    personID,
		Date:        date,
		OffenseType: "Misdemeanor",
		BondAmount:  decimal.RequireFromString(amount),
		County:      "Travis",
		Charge:      "Theft",
	}
	if err := repo.CreateBond(bond); err != nil {
		t.Fatalf("creating bond: %v", err)
	}
	return bond
}

func testInvoice(t *testing.T, repo *Repository, tenantID, personID uuid.UUID, number, amount string, dueDate time.Time) *domain.Invoice {
	t.Helper()

	invoice := &domain.Invoice{
		ID:          newID(t),
		TenantID:    tenantID,
		PersonID:    personID,
		Date:        time.Now(),
		Number:      number,
		Description: "Bond for Misdemeanor",
		Amount:      decimal.RequireFromString(amount),
		DueDate:     dueDate,
		Status:      domain.InvoiceStatusUnpaid,
	}
	if err := repo.CreateInvoice(invoice); err != nil {
		t.Fatalf("creating invoice: %v", err)
	}
	return invoice
}

func testReceipt(t *testing.T, repo *Repository, tenantID, invoiceID uuid.UUID, amount string, date time.Time) *domain.Receipt {
	t.Helper()

	receipt := &domain.Receipt{
		ID:        newID(t),
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Date:      date,
		Amount:    decimal.RequireFromString(amount),
		Method:    domain.ReceiptMethodCash,
	}
	if err := repo.CreateReceipt(receipt); err != nil {
		t.Fatalf("creating receipt: %v", err)
	}
	return receipt
}
