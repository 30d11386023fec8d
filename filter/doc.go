// Package filter implements the generic filter-and-pagination engine: it
// validates a pagination window and a list of (column, operator, value)
// conditions against a per-entity column registry, compiles them into bun
// predicates and runs the resulting scoped, soft-delete aware page query.
package filter
