// Package models declares the bun models of the business entities together
// with their filterable column registries and response shapes.
package models
