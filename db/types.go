package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is the free-form context attached to an audit entry, persisted
// as a JSON object in a TEXT column.
type Metadata map[string]any

// Scan implements sql.Scanner. A NULL column becomes an empty map so
// callers never need a nil check.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		json.Unmarshal(v, &m)
		return nil
	case string:
		json.Unmarshal([]byte(v), &m)
		return nil
	default:
		return fmt.Errorf("unsupported type %T", v)
	}
}

// Value implements driver.Valuer. An empty map stores as "{}" rather than
// NULL, keeping the column NOT NULL friendly.
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}
