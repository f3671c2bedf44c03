package ports

import "github.com/joecorcoran/talks/domain/entities"

// ConfigParser parses a host configuration file over defaults.
type ConfigParser interface {
	// Parse unmarshals data over base and returns the result.
	Parse(data []byte, base entities.HostConfig) (entities.HostConfig, error)
}
