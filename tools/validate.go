package tools

import (
	"fmt"
	"regexp"

	"github.com/synto-ai/synto/schema"
)

// base58Address matches a Solana wallet address.
var base58Address = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsWalletAddress reports whether s looks like a base58 wallet address.
func IsWalletAddress(s string) bool {
	return base58Address.MatchString(s)
}

// Validate checks decoded arguments against the declared schema. It is
// the authoritative gate before dispatch: required fields must be
// present and every present field must satisfy its property constraints.
func (s *Schema) Validate(args map[string]interface{}) error {
	if s == nil {
		return nil
	}

	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return schema.NewValidationError(name, nil, "required parameter is missing")
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			// Unknown extra arguments are tolerated; the handler
			// decides whether to use them.
			continue
		}
		if err := prop.validate(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (p *Property) validate(name string, value interface{}) error {
	switch p.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return schema.NewValidationError(name, value, "expected a string")
		}
		if p.MinLength > 0 && len(str) < p.MinLength {
			return schema.NewValidationError(name, value, fmt.Sprintf("must be at least %d characters", p.MinLength))
		}
		if p.MaxLength > 0 && len(str) > p.MaxLength {
			return schema.NewValidationError(name, value, fmt.Sprintf("must be at most %d characters", p.MaxLength))
		}
		if p.Pattern != "" {
			matched, err := regexp.MatchString(p.Pattern, str)
			if err != nil || !matched {
				return schema.NewValidationError(name, value, "does not match the expected format")
			}
		}
		if len(p.Enum) > 0 {
			found := false
			for _, allowed := range p.Enum {
				if str == allowed {
					found = true
					break
				}
			}
			if !found {
				return schema.NewValidationError(name, value, fmt.Sprintf("must be one of %v", p.Enum))
			}
		}

	case "number":
		num, ok := toFloat(value)
		if !ok {
			return schema.NewValidationError(name, value, "expected a number")
		}
		if p.ExclusiveMinimum != nil && num <= *p.ExclusiveMinimum {
			return schema.NewValidationError(name, value, fmt.Sprintf("must be greater than %v", *p.ExclusiveMinimum))
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			return schema.NewValidationError(name, value, "expected a boolean")
		}

	case "array":
		items, ok := value.([]interface{})
		if !ok {
			return schema.NewValidationError(name, value, "expected an array")
		}
		if p.Items != nil {
			for i, item := range items {
				if err := p.Items.validate(fmt.Sprintf("%s[%d]", name, i), item); err != nil {
					return err
				}
			}
		}

	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return schema.NewValidationError(name, value, "expected an object")
		}
		for key, sub := range p.Properties {
			if inner, present := obj[key]; present {
				if err := sub.validate(fmt.Sprintf("%s.%s", name, key), inner); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// toFloat normalizes JSON-decoded numeric values.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
