package config

import (
	"fmt"
	"strconv"
)

// ValidateConfig checks that every setting the server cannot run without is
// present and well-formed. It fails fast at startup instead of letting a
// half-configured process accept traffic.
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if cfg.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if cfg.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric, got %q", cfg.ServerPort)
	}
	if _, err := strconv.Atoi(cfg.DBPort); err != nil {
		return fmt.Errorf("DB_PORT must be numeric, got %q", cfg.DBPort)
	}
	switch cfg.DBSSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("DB_SSL_MODE %q is not a valid postgres sslmode", cfg.DBSSLMode)
	}
	return nil
}
