// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"encoding/json"
	"reflect"

	"github.com/netdata/optprobe/pkg/confopt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the profile format, for editors and linters.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		FieldNameTag:               "yaml",
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Mapper:                     schemaMapper,
	}

	schema := reflector.Reflect(&Profile{})
	schema.Title = "optprobe tool profile"

	bs, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(bs, '\n'), nil
}

func schemaMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(confopt.Duration(0)):
		return &jsonschema.Schema{
			Description: "duration: '5s', '1m30s' or seconds",
			OneOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "number"},
			},
		}
	case reflect.TypeOf(confopt.FileMode(0)):
		return &jsonschema.Schema{
			Description: "octal permissions, e.g. '0755'",
			Type:        "string",
			Pattern:     "^0?[0-7]{3,4}$",
		}
	}
	return nil
}

// JSONSchema describes both YAML forms of a value: a literal scalar or a mapping.
func (ValueSpec) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("value", &jsonschema.Schema{Type: "string"})
	props.Set("generator", &jsonschema.Schema{
		Type: "string",
		Enum: []any{GeneratorPID, GeneratorTID, GeneratorMetricGroup},
	})
	props.Set("query", &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}})
	props.Set("match", &jsonschema.Schema{Type: "string", Format: "regex"})

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "null"},
			{
				Type:                 "object",
				Properties:           props,
				AdditionalProperties: jsonschema.FalseSchema,
			},
		},
	}
}
