// Package db provides the SQLite-backed implementation of the repository
// interfaces defined in the domain package. It uses sqlx for query
// execution, goose for embedded schema migrations, and converts between
// database rows (with sql.Null* fields) and domain types at the boundary.
package db
