package bondkeeper

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"bondkeeper/domain"
)

// CalendarDay is one cell of the month view: the day itself, whether it
// belongs to the displayed month, and the court appearances on it.
type CalendarDay struct {
	Date      time.Time
	InMonth   bool
	CourtDays []*domain.CourtDateRow
}

// MonthCalendar assembles the court-date calendar for a month: full weeks
// starting on Monday, with leading and trailing days pulled from the
// neighbouring months so every row has seven cells.
func (app *App) MonthCalendar(year int, month time.Month) ([][]CalendarDay, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	rows, err := app.Repo.UpcomingCourtDates(tenantID, first, last)
	if err != nil {
		return nil, fmt.Errorf("retrieving court dates for %s %d : %w", month, year, err)
	}
	byDay := make(map[string][]*domain.CourtDateRow)
	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], row)
	}

	grid := make([][]CalendarDay, 0, 6)
	day := startOfCalendar(first)
	for {
		week := make([]CalendarDay, 7)
		for i := range week {
			week[i] = CalendarDay{
				Date:      day,
				InMonth:   day.Month() == month,
				CourtDays: byDay[day.Format("2006-01-02")],
			}
			day = day.AddDate(0, 0, 1)
		}
		grid = append(grid, week)
		if day.After(last) && day.Weekday() == time.Monday {
			break
		}
	}
	return grid, nil
}

// startOfCalendar returns the Monday on or before the first of the month.
func startOfCalendar(first time.Time) time.Time {
	offset := (int(first.Weekday()) + 6) % 7
	return first.AddDate(0, 0, -offset)
}

// UpcomingAppearances lists the active tenant's court dates over the next
// given number of days, starting today.
func (app *App) UpcomingAppearances(days int) ([]*domain.CourtDateRow, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rows, err := app.Repo.UpcomingCourtDates(tenantID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("retrieving upcoming court dates : %w", err)
	}
	return rows, nil
}

// RecentCourtDate returns the court date to surface on a person's file: the
// next upcoming one, falling back to the most recent past appearance, or nil
// when the person has none at all.
func (app *App) RecentCourtDate(personID uuid.UUID) (*domain.CourtDate, error) {
	upcoming, err := app.Repo.UpcomingCourtDate(personID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("retrieving upcoming court date : %w", err)
	}
	if upcoming != nil {
		return upcoming, nil
	}
	latest, err := app.Repo.LatestCourtDate(personID)
	if err != nil {
		return nil, fmt.Errorf("retrieving latest court date : %w", err)
	}
	return latest, nil
}

// MissedCheckIns lists people who have not checked in within the given
// number of days. A non-positive days falls back to the configured
// threshold.
func (app *App) MissedCheckIns(days int) ([]*domain.StaleCheckIn, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
		if app.Config != nil && app.Config.StaleCheckInDays > 0 {
			days = app.Config.StaleCheckInDays
		}
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	rows, err := app.Repo.PeopleWithoutRecentCheckIn(tenantID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("retrieving missed check-ins : %w", err)
	}
	return rows, nil
}
