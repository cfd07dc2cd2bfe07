package db

import (
	"fmt"
	"strings"
	"time"

	"bondkeeper/domain"
)

var _ domain.LookupRepository = (*Repository)(nil)

// RememberLookup records a value under a category, ignoring duplicates.
// Values are trimmed before storing; empty values are ignored.
func (repo *Repository) RememberLookup(category, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	query := `INSERT INTO lookup_value (category, value, created_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT(category, value) DO NOTHING`

	_, err := repo.dbConn.Exec(query, category, value, time.Now())
	if err != nil {
		return fmt.Errorf("remembering lookup %s=%q: %w", category, value, err)
	}

	return nil
}

// GetLookups retrieves all values for a category, sorted.
func (repo *Repository) GetLookups(category string) ([]string, error) {
	var values []string
	query := `SELECT value FROM lookup_value WHERE category = ? ORDER BY value`

	err := repo.dbConn.Select(&values, query, category)
	if err != nil {
		return nil, fmt.Errorf("retrieving lookups for %s: %w", category, err)
	}

	return values, nil
}
