package domain

import "time"

// Lookup categories remembered from bond entry.
const (
	LookupCategoryCharge       = "charge"
	LookupCategoryCounty       = "county"
	LookupCategoryOffenseType  = "offense_type"
	LookupCategoryJurisdiction = "jurisdiction"
)

// LookupRepository defines the interface for the shared autocomplete
// vocabulary built up from bond entry.
type LookupRepository interface {
	// RememberLookup records a value under a category, ignoring duplicates.
	RememberLookup(category, value string) error
	// GetLookups retrieves all values for a category, sorted.
	GetLookups(category string) ([]string, error)
}

// LookupValue is a remembered free-text value (a charge, county, offense
// type or jurisdiction) offered back as a suggestion on later bonds.
type LookupValue struct {
	Category  string
	Value     string
	CreatedAt time.Time
}
