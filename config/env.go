package config

import (
	"os"
	"strings"
)

// Environment is the runtime environment the gateway runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads CI, then APP_ENV, then ENV. Unknown values mean development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	switch Environment(strings.ToLower(strings.TrimSpace(env))) {
	case Production:
		return Production
	case Test:
		return Test
	default:
		return Development
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// DefaultLogFormat is json in production and text elsewhere
func (e Environment) DefaultLogFormat() string {
	if e == Production {
		return "json"
	}
	return "text"
}
