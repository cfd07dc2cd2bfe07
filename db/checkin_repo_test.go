package db

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

func testCheckIn(t *testing.T, repo *Repository, tenantID, personID uuid.UUID, createdAt time.Time) *domain.CheckIn {
	t.Helper()

	checkIn := &domain.CheckIn{
		ID:        newID(t),
		TenantID:  tenantID,
		PersonID:  personID,
		Phone:     "555-0100",
		Address:   "100 Main St",
		Method:    domain.CheckInMethodPhone,
		CreatedAt: createdAt,
	}
	if err := repo.CreateCheckIn(checkIn); err != nil {
		t.Fatalf("creating check-in: %v", err)
	}
	return checkIn
}

func TestCheckInRepo_GetCheckIns(t *testing.T) {
	t.Run("should list check-ins newest first", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testCheckIn(t, repo, tenant.ID, person.ID, time.Now().AddDate(0, 0, -14))
		newest := testCheckIn(t, repo, tenant.ID, person.ID, time.Now())

		got, err := repo.GetCheckIns(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(got))
		}
		if got[0].ID != newest.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", newest.ID, got[0].ID)
		}
	})
}

func TestCheckInRepo_LastCheckIn(t *testing.T) {
	t.Run("should return nil when the person has never checked in", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		got, err := repo.LastCheckIn(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})

	t.Run("should return the most recent check-in", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testCheckIn(t, repo, tenant.ID, person.ID, time.Now().AddDate(0, 0, -7))
		latest := testCheckIn(t, repo, tenant.ID, person.ID, time.Now())

		got, err := repo.LastCheckIn(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil || got.ID != latest.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", latest.ID, got)
		}
	})
}

func TestCheckInRepo_Attachments(t *testing.T) {
	t.Run("should round-trip photo and document blobs with their types", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		checkIn := &domain.CheckIn{
			ID:           newID(t),
			TenantID:     tenant.ID,
			PersonID:     person.ID,
			Method:       domain.CheckInMethodOnline,
			Photo:        []byte{0xFF, 0xD8, 0xFF, 0xE0},
			PhotoType:    "image/jpeg",
			Document:     []byte("%PDF-1.4"),
			DocumentType: "application/pdf",
			CreatedAt:    time.Now(),
		}
		if err := repo.CreateCheckIn(checkIn); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.LastCheckIn(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil {
			t.Fatalf("\nwanted:\ncheck-in\ngot:\nnil")
		}
		if got.PhotoType != "image/jpeg" || len(got.Photo) != 4 {
			t.Fatalf("\nwanted:\nimage/jpeg blob\ngot:\n%s %d bytes", got.PhotoType, len(got.Photo))
		}
		if got.DocumentType != "application/pdf" || string(got.Document) != "%PDF-1.4" {
			t.Fatalf("\nwanted:\napplication/pdf blob\ngot:\n%s %q", got.DocumentType, got.Document)
		}
	})
}
