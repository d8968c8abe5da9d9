package tools

import "encoding/json"

// Schema defines the parameter schema for a tool.
type Schema struct {
	Type        string               `json:"type"`
	Properties  map[string]*Property `json:"properties"`
	Required    []string             `json:"required"`
	Description string               `json:"description,omitempty"`
}

// Property defines a property in a tool schema.
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []string             `json:"enum,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	MinLength   int                  `json:"minLength,omitempty"`
	MaxLength   int                  `json:"maxLength,omitempty"`
	Pattern     string               `json:"pattern,omitempty"`
	// ExclusiveMinimum constrains numbers to be strictly greater than
	// the given value when non-nil.
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
}

// NewSchema creates an object schema with the given properties.
func NewSchema(properties map[string]*Property, required ...string) *Schema {
	if properties == nil {
		properties = make(map[string]*Property)
	}
	if required == nil {
		required = []string{}
	}
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// AsMap renders the schema as a generic JSON-schema map for provider
// payloads.
func (s *Schema) AsMap() map[string]interface{} {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]interface{}{"type": "object"}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{"type": "object"}
	}
	return out
}

// Helper functions for creating common property schemas

// StringProperty creates a string property schema.
func StringProperty(description string) *Property {
	return &Property{
		Type:        "string",
		Description: description,
	}
}

// BoundedStringProperty creates a string property with length bounds.
func BoundedStringProperty(description string, minLen, maxLen int) *Property {
	return &Property{
		Type:        "string",
		Description: description,
		MinLength:   minLen,
		MaxLength:   maxLen,
	}
}

// NumberProperty creates a number property schema.
func NumberProperty(description string) *Property {
	return &Property{
		Type:        "number",
		Description: description,
	}
}

// PositiveNumberProperty creates a number property that must be > 0.
func PositiveNumberProperty(description string) *Property {
	zero := 0.0
	return &Property{
		Type:             "number",
		Description:      description,
		ExclusiveMinimum: &zero,
	}
}

// EnumProperty creates an enum property schema.
func EnumProperty(description string, values []string) *Property {
	return &Property{
		Type:        "string",
		Description: description,
		Enum:        values,
	}
}

// ArrayProperty creates an array property schema.
func ArrayProperty(description string, items *Property) *Property {
	return &Property{
		Type:        "array",
		Description: description,
		Items:       items,
	}
}

// ObjectProperty creates a nested object property schema.
func ObjectProperty(description string, properties map[string]*Property) *Property {
	return &Property{
		Type:        "object",
		Description: description,
		Properties:  properties,
	}
}
