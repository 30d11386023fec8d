// Package repository provides a generic repository built on Bun for CRUD
// operations, transactions, dialect aware upserts and filtered page search.
package repository
