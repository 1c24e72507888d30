package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags and hand-written
// cross-field rules that tags can't express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateAdminToken(); err != nil {
		return err
	}
	if err := c.validateDistinctPorts(); err != nil {
		return err
	}

	return nil
}

// validateAdminToken ensures the admin plane has at least one way to
// authenticate its bearer token. Both may be set; token_hash then wins.
func (c *Config) validateAdminToken() error {
	if c.Admin.Token == "" && c.Admin.TokenHash == "" {
		return errors.New("admin: one of token or token_hash is required")
	}
	return nil
}

// validateDistinctPorts ensures the data plane and control plane don't
// collide on the same listener.
func (c *Config) validateDistinctPorts() error {
	if c.Server.GatewayPort == c.Server.AdminPort {
		return errors.New("server: gateway_port and admin_port must differ")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors into a
// single actionable message.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, e.Param())
	case "hexadecimal":
		return fmt.Sprintf("%s must be a hex-encoded string", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
