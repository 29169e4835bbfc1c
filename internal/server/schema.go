package server

import (
	"encoding/json"
	"strings"

	"github.com/zoobzio/sentinel"

	"github.com/njchilds90/integral"
)

// objectSchema builds a JSON Schema object for T from its struct metadata.
func objectSchema[T any]() map[string]any {
	metadata := sentinel.Inspect[T]()
	properties := map[string]any{}
	required := []string{}
	for _, field := range metadata.Fields {
		name, omitempty := jsonName(field)
		if name == "-" {
			continue
		}
		prop := map[string]any{"type": jsonType(field.Type)}
		if strings.HasPrefix(field.Type, "[]") {
			prop["items"] = map[string]any{"type": jsonType(strings.TrimPrefix(field.Type, "[]"))}
		}
		if desc, ok := field.Tags["desc"]; ok {
			prop["description"] = desc
		}
		properties[name] = prop
		if !omitempty {
			required = append(required, name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func jsonName(field sentinel.FieldMetadata) (name string, omitempty bool) {
	if tag, ok := field.Tags["json"]; ok {
		parts := strings.Split(tag, ",")
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				omitempty = true
			}
		}
		if parts[0] != "" {
			return parts[0], omitempty
		}
	}
	return strings.ToLower(field.Name[:1]) + field.Name[1:], omitempty
}

func jsonType(goType string) string {
	switch {
	case strings.HasPrefix(goType, "string"):
		return "string"
	case strings.HasPrefix(goType, "int"), strings.HasPrefix(goType, "uint"):
		return "integer"
	case strings.HasPrefix(goType, "float"):
		return "number"
	case strings.HasPrefix(goType, "bool"):
		return "boolean"
	case strings.HasPrefix(goType, "[]"):
		return "array"
	}
	return "object"
}

// toolSchema describes the integrate endpoint for agent registration.
func toolSchema() []byte {
	schema := map[string]any{
		"name":        "integrate",
		"description": "Symbolic antiderivative or definite integral of a function of x, with derivation steps and suggested techniques.",
		"endpoint":    "POST /integrate",
		"input":       objectSchema[integral.Request](),
		"output":      objectSchema[integral.Result](),
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return []byte("{}")
	}
	return out
}
