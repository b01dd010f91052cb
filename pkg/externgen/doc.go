// Package externgen holds the user-facing configuration of the extern
// declaration generator.
package externgen
