package assess

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// predictionsSchema is shared by both prediction-bearing responses.
var predictionsSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"habilidad":    map[string]any{"type": "string", "minLength": 1},
			"prob_acierto": map[string]any{"type": "number"},
		},
		"required": []any{"habilidad", "prob_acierto"},
	},
}

// questionResponseSchema describes GET /api/pregunta. pregunta is required
// unless completado is true.
var questionResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"pregunta": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":        map[string]any{"type": []any{"integer", "string"}},
				"texto":     map[string]any{"type": "string"},
				"habilidad": map[string]any{"type": "string"},
				"opciones": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 1,
				},
			},
			"required": []any{"id", "texto", "habilidad", "opciones"},
		},
		"predicciones": predictionsSchema,
		"completado":   map[string]any{"type": "boolean"},
	},
	"required": []any{"predicciones"},
	"if": map[string]any{
		"properties": map[string]any{"completado": map[string]any{"const": true}},
		"required":   []any{"completado"},
	},
	"else": map[string]any{
		"required": []any{"pregunta"},
	},
}

// verifyResponseSchema describes POST /api/verificar.
var verifyResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"resultado":                 map[string]any{"type": "string"},
		"respuesta_correcta":        map[string]any{"type": "string"},
		"predicciones_actualizadas": predictionsSchema,
	},
	"required": []any{"resultado", "respuesta_correcta", "predicciones_actualizadas"},
}

var schemaDefs = map[Op]map[string]any{
	OpFetchQuestion: questionResponseSchema,
	OpVerifyAnswer:  verifyResponseSchema,
}

// compiled caches compiled schemas by operation.
var compiled sync.Map // map[Op]*jsonschema.Schema

// validateResponse checks raw against the schema registered for op.
// Operations without a schema always pass.
func validateResponse(op Op, raw json.RawMessage) error {
	def, ok := schemaDefs[op]
	if !ok {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrMalformedResponse{Op: op, Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := compiledSchema(op, def)
	if err != nil {
		return &ErrMalformedResponse{Op: op, Content: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := sch.Validate(parsed); err != nil {
		return &ErrMalformedResponse{Op: op, Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledSchema(op Op, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(op); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so numbers have the types the compiler expects.
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://assess/%s.json", op)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(op, sch)
	return sch, nil
}
