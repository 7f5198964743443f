// Package postgres provides PostgreSQL implementations of the store
// interfaces using the pgx driver.
package postgres
