// Package ports defines the interfaces hosts program against.
// Backends implement Library; infrastructure adapters implement
// ConfigParser.
package ports
