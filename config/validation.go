package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks the configuration for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	for field, raw := range map[string]string{
		"EXTERNAL_API_URL": cfg.ExternalAPIURL,
		"BACKEND_URL":      cfg.BackendURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: field, Message: "must be an absolute URL"})
		}
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "REQUEST_TIMEOUT", Message: "must be positive"})
	}
	if cfg.ExternalRateLimit <= 0 || cfg.ExternalBurst <= 0 {
		errs = append(errs, ValidationError{Field: "EXTERNAL_RATE_LIMIT", Message: "rate and burst must be positive"})
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "is required for sqlite"})
		}
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{Field: "DB_HOST", Message: "host and name are required for postgres"})
		}
		if env == Production && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "db_password", Message: "secret is required"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be sqlite or postgres"})
	}

	switch cfg.ImageStore {
	case "backend":
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "is required for the s3 image store"})
		}
	default:
		errs = append(errs, ValidationError{Field: "IMAGE_STORE", Message: "must be backend or s3"})
	}

	if cfg.JWTSecret == "" {
		if env == Production {
			errs = append(errs, ValidationError{Field: "jwt_secret", Message: "secret is required"})
		} else {
			errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
