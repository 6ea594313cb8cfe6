// Package generator requests structured commentary from an LLM provider.
//
// A provider response either decodes into a complete StructuredResult, fails
// schema validation (*SchemaError, carrying the raw arguments payload), or
// fails for any other reason (transport, status, envelope decoding).
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valpere/arxenrich/internal"
	"github.com/valpere/arxenrich/internal/postprocess"
	"github.com/valpere/arxenrich/internal/prompt"
)

// ErrNoChoices is returned when the provider answers without any message.
var ErrNoChoices = errors.New("empty response from API")

// StructureName is the function/tool name the provider must call.
const StructureName = "Structure"

type Request struct {
	Prompt   *prompt.Config
	Content  string
	Language string
}

type Result struct {
	Structured       internal.StructuredResult
	Model            string
	Latency          time.Duration
	PromptTokens     int
	CompletionTokens int
}

type Generator interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// SchemaError reports provider output that does not satisfy the five-field
// schema. Its message embeds the raw arguments payload in the format the
// repair package parses.
type SchemaError struct {
	Arguments string
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Function %s arguments:\n\n%s\n\nare not valid JSON. Received %v", StructureName, e.Arguments, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

var fieldDescriptions = map[string]string{
	internal.FieldTLDR:       "generate a too long; didn't read summary",
	internal.FieldMotivation: "describe the motivation in this paper",
	internal.FieldMethod:     "method of this paper",
	internal.FieldResult:     "result of this paper",
	internal.FieldConclusion: "conclusion of this paper",
}

// structureSchema is the JSON schema of the five required string fields.
func structureSchema() map[string]any {
	props := make(map[string]any, len(internal.Fields))
	for _, f := range internal.Fields {
		props[f] = map[string]any{"type": "string", "description": fieldDescriptions[f]}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   internal.Fields,
	}
}

// decodeArguments validates a raw arguments payload against the schema and
// cleans every field.
func decodeArguments(raw string) (internal.StructuredResult, error) {
	var res internal.StructuredResult

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return res, &SchemaError{Arguments: raw, Err: err}
	}

	var missing []string
	for _, f := range internal.Fields {
		v, ok := fields[f].(string)
		if !ok {
			missing = append(missing, f)
			continue
		}
		res.Set(f, postprocess.Clean(v))
	}
	if len(missing) > 0 {
		return res, &SchemaError{
			Arguments: raw,
			Err:       fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}
	return res, nil
}
