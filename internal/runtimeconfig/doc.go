// Package runtimeconfig holds the access policy that can change while the
// service runs.
//
// The baseline comes from environment variables (see config.AccessConfig).
// An optional YAML policy file overrides any field it sets, and a Reloader
// watches that file and swaps in a fresh access.Registry snapshot on change.
// Readers always see a complete snapshot; a file that fails to parse or
// validate leaves the previous snapshot in place.
package runtimeconfig
