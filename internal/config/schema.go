package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource []byte

// validateSchema checks the raw settings map against the embedded schema
// before unmarshaling, so a typo like format: markdown fails at startup with
// the schema's message instead of surfacing later as odd behavior.
func validateSchema(settings map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("config schema has no #Config definition")
	}
	data := ctx.Encode(settings)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	unified := def.Unify(data)
	if err := unified.Err(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
