package db

import (
	"errors"
	"testing"
	"time"

	"bondkeeper/domain"
)

func TestPersonRepo_GetPerson(t *testing.T) {
	t.Run("should return a created person with all fields", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		want := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		got, err := repo.GetPerson(tenant.ID, want.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if got.FirstName != want.FirstName || got.LastName != want.LastName {
			t.Fatalf("\nwanted:\n%s %s\ngot:\n%s %s", want.FirstName, want.LastName, got.FirstName, got.LastName)
		}
		if got.Phone != want.Phone {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", want.Phone, got.Phone)
		}
		if !got.DOB.Equal(want.DOB) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want.DOB, got.DOB)
		}
	})

	t.Run("should return ErrPersonNotFound for another tenant's person", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		other := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		_, err := repo.GetPerson(other.ID, person.ID)
		if !errors.Is(err, ErrPersonNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrPersonNotFound, err)
		}
	})
}

func TestPersonRepo_SearchPeople(t *testing.T) {
	t.Run("should match against name, phone and email", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		meyer := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testPerson(t, repo, tenant.ID, "Alexis", "Ward")

		got, err := repo.SearchPeople(tenant.ID, "meyer", 200)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(got))
		}
		if got[0].ID != meyer.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", meyer.ID, got[0].ID)
		}
	})

	t.Run("should return everyone ordered by last then first name on an empty query", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testPerson(t, repo, tenant.ID, "Alexis", "Ward")
		testPerson(t, repo, tenant.ID, "Casey", "Brooks")

		got, err := repo.SearchPeople(tenant.ID, "", 200)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", len(got))
		}
		if got[0].LastName != "Brooks" || got[2].LastName != "Ward" {
			t.Fatalf("\nwanted:\nBrooks..Ward\ngot:\n%s..%s", got[0].LastName, got[2].LastName)
		}
	})

	t.Run("should cap results at the limit", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testPerson(t, repo, tenant.ID, "Alexis", "Ward")

		got, err := repo.SearchPeople(tenant.ID, "", 1)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(got))
		}
	})
}

func TestPersonRepo_FindPersonByPhone(t *testing.T) {
	t.Run("should return nil when no person carries the phone number", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)

		got, err := repo.FindPersonByPhone(tenant.ID, "555-9999")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})

	t.Run("should match the phone number case-insensitively", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		got, err := repo.FindPersonByPhone(tenant.ID, person.Phone)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil || got.ID != person.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", person.ID, got)
		}
	})
}

func TestPersonRepo_DeletePerson(t *testing.T) {
	t.Run("should delete a person without case records", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		if err := repo.DeletePerson(tenant.ID, person.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		_, err := repo.GetPerson(tenant.ID, person.ID)
		if !errors.Is(err, ErrPersonNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrPersonNotFound, err)
		}
	})

	t.Run("should return ErrPersonProtected while a bond references the person", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")
		testBond(t, repo, tenant.ID, person.ID, "5000", time.Now())

		err := repo.DeletePerson(tenant.ID, person.ID)
		if !errors.Is(err, ErrPersonProtected) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrPersonProtected, err)
		}
	})
}

func TestPersonRepo_Indemnitors(t *testing.T) {
	t.Run("should create and list indemnitors for a person", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		indemnitor := &domain.Indemnitor{
			ID:           newID(t),
			TenantID:     tenant.ID,
			PersonID:     person.ID,
			Name:         "Pat Meyer",
			Relationship: "Parent",
			Phone:        "555-0101",
		}
		if err := repo.CreateIndemnitor(indemnitor); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.GetIndemnitors(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(got))
		}
		if got[0].Name != indemnitor.Name || got[0].Relationship != indemnitor.Relationship {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", indemnitor, got[0])
		}
	})

	t.Run("should delete an indemnitor without touching the person", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		tenant := testTenant(t, repo)
		person := testPerson(t, repo, tenant.ID, "Jordan", "Meyer")

		indemnitor := &domain.Indemnitor{
			ID:       newID(t),
			TenantID: tenant.ID,
			PersonID: person.ID,
			Name:     "Pat Meyer",
		}
		if err := repo.CreateIndemnitor(indemnitor); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if err := repo.DeleteIndemnitor(tenant.ID, indemnitor.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.GetIndemnitors(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(got))
		}

		if _, err := repo.GetPerson(tenant.ID, person.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
	})
}
