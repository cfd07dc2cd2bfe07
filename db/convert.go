package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nullTime converts a domain time to sql.NullTime, mapping the zero time to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// timeValue converts a sql.NullTime back to a domain time, mapping NULL to the zero time.
func timeValue(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

// nullDecimal converts a domain amount to decimal.NullDecimal, mapping zero to NULL.
func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: !d.IsZero()}
}

// decimalValue converts a decimal.NullDecimal back to a domain amount, mapping NULL to zero.
func decimalValue(nd decimal.NullDecimal) decimal.Decimal {
	if !nd.Valid {
		return decimal.Decimal{}
	}
	return nd.Decimal
}

// nullUUID converts an optional UUID to sql.NullString.
func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// uuidValue converts a sql.NullString back to an optional UUID. Malformed
// values are treated as absent.
func uuidValue(ns sql.NullString) *uuid.UUID {
	if !ns.Valid {
		return nil
	}
	if id, err := uuid.Parse(ns.String); err == nil {
		return &id
	}
	return nil
}
