package db

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bondkeeper/domain"
)

func TestInvoiceRepo_GetInvoiceByNumber(t *testing.T) {
	t.Run("should return nil when no invoice carries the number", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		got, err := repo.GetInvoiceByNumber(tenant.ID, person.ID, "BOND-missing")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})

	t.Run("should return the person's invoice with the number", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		want := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())

		got, err := repo.GetInvoiceByNumber(tenant.ID, person.ID, "BOND-1")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil || got.ID != want.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", want.ID, got)
		}
		if !got.Amount.Equal(decimal.RequireFromString("750")) {
			t.Fatalf("\nwanted:\n750\ngot:\n%v", got.Amount)
		}
	})
}

func TestInvoiceRepo_SetInvoiceStatus(t *testing.T) {
	t.Run("should update only the status column", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		invoice := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())

		if err := repo.SetInvoiceStatus(invoice.ID, domain.InvoiceStatusPartial); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.GetInvoice(tenant.ID, invoice.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Status != domain.InvoiceStatusPartial {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", domain.InvoiceStatusPartial, got.Status)
		}
		if !got.Amount.Equal(invoice.Amount) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", invoice.Amount, got.Amount)
		}
	})
}

func TestInvoiceRepo_DeleteInvoice(t *testing.T) {
	t.Run("should remove the invoice together with its receipts", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		invoice := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())
		testReceipt(t, repo, tenant.ID, invoice.ID, "250", time.Now())

		if err := repo.DeleteInvoice(tenant.ID, invoice.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		_, err := repo.GetInvoice(tenant.ID, invoice.ID)
		if !errors.Is(err, ErrInvoiceNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrInvoiceNotFound, err)
		}

		receipts, err := repo.GetReceiptsForPerson(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(receipts) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(receipts))
		}
	})
}

func TestReceiptRepo_SumReceipts(t *testing.T) {
	t.Run("should return zero for an invoice without receipts", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		invoice := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())

		got, err := repo.SumReceipts(invoice.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !got.IsZero() {
			t.Fatalf("\nwanted:\n0\ngot:\n%v", got)
		}
	})

	t.Run("should total all receipts against the invoice", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		invoice := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())
		testReceipt(t, repo, tenant.ID, invoice.ID, "250.25", time.Now().AddDate(0, 0, -1))
		testReceipt(t, repo, tenant.ID, invoice.ID, "100", time.Now())

		got, err := repo.SumReceipts(invoice.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !got.Equal(decimal.RequireFromString("350.25")) {
			t.Fatalf("\nwanted:\n350.25\ngot:\n%v", got)
		}
	})
}

func TestReceiptRepo_GetReceiptsForPerson(t *testing.T) {
	t.Run("should gather receipts across all of the person's invoices", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		first := testInvoice(t, repo, tenant.ID, person.ID, "BOND-1", "750", time.Now())
		second := testInvoice(t, repo, tenant.ID, person.ID, "INV-2", "200", time.Now())
		testReceipt(t, repo, tenant.ID, first.ID, "100", time.Now())
		testReceipt(t, repo, tenant.ID, second.ID, "50", time.Now())

		got, err := repo.GetReceiptsForPerson(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(got))
		}
	})
}
