// Package migrations holds the schema migrations. Each migration registers
// itself from init(); cmd/brewhouse imports the package for that side effect.
package migrations
