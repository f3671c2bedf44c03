// Package entities provides the core domain types shared by both sides of the
// IntArray boundary: the transfer struct layout, status codes, the ABI
// descriptor a library reports about itself, and host configuration.
// These types double as JSON wire format DTOs.
package entities
