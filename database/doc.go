// Package database provides connection management for MySQL, PostgreSQL and
// SQLite through Bun, together with configuration types, health checks,
// query hooks, the entity model registry and versioned migrations.
package database
