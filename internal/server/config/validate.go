package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded configuration and reports the first violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("config %s: validation failed on '%s' tag (value: %v)",
			e.Field(), e.Tag(), e.Value())
	}
	return err
}

// ValidateWorker is Validate plus the backends a standalone worker can reach:
// in-memory stores and queues are private to the API process.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	backends := []struct{ name, value string }{
		{"MetadataBackend", c.MetadataBackend},
		{"ContentBackend", c.ContentBackend},
		{"QueueBackend", c.QueueBackend},
	}
	for _, b := range backends {
		if b.value == "memory" {
			return fmt.Errorf("config %s: the memory backend is only reachable from the API process", b.name)
		}
	}
	return nil
}
