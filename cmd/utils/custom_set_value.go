package utils

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ParseLogLevel parses a logrus level out of its string representation.
func ParseLogLevel(logLevelStr string) (log.Level, error) {
	logLevel, err := log.ParseLevel(logLevelStr)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse log level: %w", err)
	}
	return logLevel, nil
}

// ParseCorsAllowedOrigins splits a comma-separated list of origins. A single
// "*" is accepted but logged as unsafe outside development.
func ParseCorsAllowedOrigins(corsAllowedOriginsOptions string) ([]string, error) {
	if corsAllowedOriginsOptions == "" {
		return nil, fmt.Errorf("cors allowed addresses cannot be empty")
	}

	corsAllowedOrigins := strings.Split(corsAllowedOriginsOptions, ",")
	for i, address := range corsAllowedOrigins {
		corsAllowedOrigins[i] = strings.TrimSpace(address)
		if corsAllowedOrigins[i] == "" {
			return nil, fmt.Errorf("cors allowed addresses cannot contain empty values")
		}
	}

	if len(corsAllowedOrigins) == 1 && corsAllowedOrigins[0] == "*" {
		log.Warn(`The value "*" for the CORS Allowed Origins is too permissive and not recommended.`)
	}

	return corsAllowedOrigins, nil
}
