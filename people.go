package bondkeeper

import (
	"fmt"

	"bondkeeper/domain"
)

// searchLimit caps search results so a broad substring cannot pull the whole
// book of business into memory.
const searchLimit = 200

// SearchPeople finds the active tenant's people whose name, phone or email
// contains the query, ordered by last then first name. An empty query lists
// everyone up to the cap.
func (app *App) SearchPeople(query string) ([]*domain.Person, error) {
	tenantID, err := app.tenantID()
	if err != nil {
		return nil, err
	}
	people, err := app.Repo.SearchPeople(tenantID, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching people : %w", err)
	}
	return people, nil
}
