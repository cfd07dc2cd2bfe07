package bondkeeper

import (
	"strings"
	"testing"
	"time"
)

func TestImportPeople(t *testing.T) {
	t.Run("should map header synonyms onto person fields", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		csv := strings.Join([]string{
			"First Name,Last Name,Cell,E-Mail,Date of Birth",
			"Jordan,Meyer,555-0100,jordan@example.com,03/14/1990",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), false, false)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 1 || result.Errors != 0 {
			t.Fatalf("\nwanted:\n1 created\ngot:\n%+v", result)
		}

		people, err := app.Repo.SearchPeople(app.Tenant.ID, "Meyer", 10)
		if err != nil {
			t.Fatalf("searching people: %v", err)
		}
		if len(people) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(people))
		}
		if people[0].Phone != "555-0100" || people[0].Email != "jordan@example.com" {
			t.Fatalf("\nwanted:\nphone and email mapped\ngot:\n%+v", people[0])
		}
		if people[0].DOB.IsZero() {
			t.Fatalf("\nwanted:\nparsed date of birth\ngot:\nzero")
		}
	})

	t.Run("should fail rows missing a first or last name", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		csv := strings.Join([]string{
			"first,last,phone",
			"Jordan,,555-0100",
			",Ward,555-0101",
			"Casey,Brooks,555-0102",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), false, false)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 1 || result.Errors != 2 {
			t.Fatalf("\nwanted:\n1 created 2 errors\ngot:\n%+v", result)
		}
	})

	t.Run("should fail rows whose date of birth does not parse", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		csv := strings.Join([]string{
			"first,last,dob",
			"Jordan,Meyer,not-a-date",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), false, false)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 0 || result.Errors != 1 {
			t.Fatalf("\nwanted:\n0 created 1 error\ngot:\n%+v", result)
		}
		if result.Rows[0].Status != "error" {
			t.Fatalf("\nwanted:\nerror\ngot:\n%s", result.Rows[0].Status)
		}

		people, err := app.Repo.SearchPeople(app.Tenant.ID, "Meyer", 10)
		if err != nil {
			t.Fatalf("searching people: %v", err)
		}
		if len(people) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(people))
		}
	})

	t.Run("should update the existing person when deduping by phone", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		existing := testAppPerson(t, app, "Jordan", "Meyer")

		csv := strings.Join([]string{
			"first,last,phone,city",
			"Jordan,Meyer,555-0100,Dallas",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), false, true)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 0 || result.Updated != 1 {
			t.Fatalf("\nwanted:\n0 created 1 updated\ngot:\n%+v", result)
		}

		got, err := app.Repo.GetPerson(app.Tenant.ID, existing.ID)
		if err != nil {
			t.Fatalf("retrieving person: %v", err)
		}
		if got.City != "Dallas" {
			t.Fatalf("\nwanted:\nDallas\ngot:\n%s", got.City)
		}
	})

	t.Run("should create duplicates when deduping is off", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		testAppPerson(t, app, "Jordan", "Meyer")

		csv := strings.Join([]string{
			"first,last,phone",
			"Jordan,Meyer,555-0100",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), false, false)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 1 {
			t.Fatalf("\nwanted:\n1 created\ngot:\n%+v", result)
		}

		people, err := app.Repo.SearchPeople(app.Tenant.ID, "Meyer", 10)
		if err != nil {
			t.Fatalf("searching people: %v", err)
		}
		if len(people) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(people))
		}
	})

	t.Run("should write nothing on a dry run", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		csv := strings.Join([]string{
			"first,last",
			"Jordan,Meyer",
			"Alexis,Ward",
		}, "\n")

		result, err := app.ImportPeople(strings.NewReader(csv), true, false)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.Created != 2 || !result.DryRun {
			t.Fatalf("\nwanted:\n2 created dry-run\ngot:\n%+v", result)
		}

		people, err := app.Repo.SearchPeople(app.Tenant.ID, "", 10)
		if err != nil {
			t.Fatalf("searching people: %v", err)
		}
		if len(people) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(people))
		}
	})

	t.Run("should error without name columns", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		csv := "phone,email\n555-0100,j@example.com\n"

		if _, err := app.ImportPeople(strings.NewReader(csv), false, false); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestParseImportDate(t *testing.T) {
	t.Run("should accept the common spreadsheet formats", func(t *testing.T) {
		want := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
		for _, value := range []string{
			"1990-03-14",
			"03/14/1990",
			"3/14/1990",
			"03-14-1990",
			"March 14, 1990",
			`"1990-03-14"`,
			"“03/14/1990”",
			"03—14—1990",
			"3/14/90",
		} {
			got, err := ParseImportDate(value)
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v (for %q)", err, value)
			}
			if !got.Equal(want) {
				t.Fatalf("\nwanted:\n%v\ngot:\n%v (for %q)", want, got, value)
			}
		}
	})

	t.Run("should reject placeholder dashes", func(t *testing.T) {
		for _, value := range []string{"-", "--", "n/a", ""} {
			if _, err := ParseImportDate(value); err == nil {
				t.Fatalf("\nwanted:\nerror\ngot:\nnil (for %q)", value)
			}
		}
	})
}
