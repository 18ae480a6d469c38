package tool

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
)

const locationSchema = `{
	"type": "object",
	"properties": {
		"store_location": {"type": "string"}
	},
	"required": ["store_location"]
}`

var argSchemas = map[string]*gojsonschema.Schema{
	contractx.ToolInventoryCheck: mustSchema(`{
		"type": "object",
		"properties": {
			"item_name": {"type": "string"},
			"store_location": {"type": "string"}
		},
		"required": ["item_name", "store_location"]
	}`),
	contractx.ToolGetStoreHours:       mustSchema(locationSchema),
	contractx.ToolGetStoreDepartments: mustSchema(locationSchema),
	contractx.ToolTransferToHuman: mustSchema(`{
		"type": "object",
		"properties": {
			"reason": {"type": "string"}
		}
	}`),
}

func mustSchema(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return s
}

// validateArgs checks model-produced arguments against the tool's schema.
// argSchemas also defines which tool names the executor accepts.
func validateArgs(tool string, args map[string]any) error {
	s, ok := argSchemas[tool]
	if !ok {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", contractx.ErrValidation, tool, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s: %s", contractx.ErrValidation, tool, strings.Join(problems, "; "))
}
