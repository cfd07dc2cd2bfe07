package bondkeeper

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

func testAppCourtDate(t *testing.T, app *App, personID uuid.UUID, date time.Time, timeOfDay string) *domain.CourtDate {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}
	courtDate := &domain.CourtDate{
		ID:        id,
		TenantID:  app.Tenant.ID,
		PersonID:  personID,
		Date:      date,
		TimeOfDay: timeOfDay,
		Court:     "County Court 3",
		County:    "Travis",
	}
	if err := app.Repo.CreateCourtDate(courtDate); err != nil {
		t.Fatalf("creating court date: %v", err)
	}
	return courtDate
}

func TestMonthCalendar(t *testing.T) {
	t.Run("should start every week on Monday and cover the whole month", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		// September 2026 starts on a Tuesday.
		grid, err := app.MonthCalendar(2026, time.September)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if len(grid) == 0 {
			t.Fatalf("\nwanted:\nweeks\ngot:\nnone")
		}
		for _, week := range grid {
			if len(week) != 7 {
				t.Fatalf("\nwanted:\n7 days\ngot:\n%d", len(week))
			}
			if week[0].Date.Weekday() != time.Monday {
				t.Fatalf("\nwanted:\nMonday\ngot:\n%v", week[0].Date.Weekday())
			}
		}

		first := grid[0][0]
		if first.Date.Month() != time.August || first.InMonth {
			t.Fatalf("\nwanted:\nleading August day outside the month\ngot:\n%v in-month=%t", first.Date, first.InMonth)
		}

		lastWeek := grid[len(grid)-1]
		covered := false
		for _, day := range lastWeek {
			if day.InMonth && day.Date.Day() == 30 {
				covered = true
			}
		}
		if !covered {
			t.Fatalf("\nwanted:\nSeptember 30 in the final week\ngot:\n%v", lastWeek)
		}
	})

	t.Run("should group appearances onto their day", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		person := testAppPerson(t, app, "Jordan", "Meyer")
		hearing := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
		testAppCourtDate(t, app, person.ID, hearing, "09:00")
		testAppCourtDate(t, app, person.ID, hearing, "14:30")

		grid, err := app.MonthCalendar(2026, time.September)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		var found *CalendarDay
		for _, week := range grid {
			for i := range week {
				if week[i].InMonth && week[i].Date.Day() == 10 {
					found = &week[i]
				}
			}
		}
		if found == nil {
			t.Fatalf("\nwanted:\nSeptember 10 cell\ngot:\nnone")
		}
		if len(found.CourtDays) != 2 {
			t.Fatalf("\nwanted:\n2 appearances\ngot:\n%d", len(found.CourtDays))
		}
		if found.CourtDays[0].TimeOfDay != "09:00" {
			t.Fatalf("\nwanted:\n09:00 first\ngot:\n%s", found.CourtDays[0].TimeOfDay)
		}
	})
}

func TestRecentCourtDate(t *testing.T) {
	t.Run("should prefer the next upcoming appearance", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		person := testAppPerson(t, app, "Jordan", "Meyer")
		testAppCourtDate(t, app, person.ID, time.Now().AddDate(0, 0, -7), "09:00")
		upcoming := testAppCourtDate(t, app, person.ID, time.Now().AddDate(0, 0, 7), "09:00")

		got, err := app.RecentCourtDate(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil || got.ID != upcoming.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", upcoming.ID, got)
		}
	})

	t.Run("should fall back to the most recent past appearance", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		person := testAppPerson(t, app, "Jordan", "Meyer")
		past := testAppCourtDate(t, app, person.ID, time.Now().AddDate(0, 0, -7), "09:00")

		got, err := app.RecentCourtDate(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got == nil || got.ID != past.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", past.ID, got)
		}
	})

	t.Run("should return nil for a person without appearances", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		person := testAppPerson(t, app, "Jordan", "Meyer")

		got, err := app.RecentCourtDate(person.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", got)
		}
	})
}

func TestMissedCheckIns(t *testing.T) {
	t.Run("should list people past the threshold", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		never := testAppPerson(t, app, "Jordan", "Meyer")
		fresh := testAppPerson(t, app, "Alexis", "Ward")
		if _, err := app.RecordCheckIn(fresh.ID, "", "", domain.CheckInMethodPhone); err != nil {
			t.Fatalf("recording check-in: %v", err)
		}

		got, err := app.MissedCheckIns(30)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(got))
		}
		if got[0].PersonID != never.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", never.ID, got[0].PersonID)
		}
	})
}
