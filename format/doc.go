// Package format defines the closed enumerations shared across hashvec:
// namespace kinds, raw/hashed value shapes and vector blob compression types.
package format
