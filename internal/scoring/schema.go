package scoring

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed prompts/result.schema.json
var resultSchemaJSON []byte

var (
	resultSchemaOnce sync.Once
	resultSchema     *gojsonschema.Schema
	resultSchemaErr  error
)

// validateOutput checks raw model JSON against the result schema.
func validateOutput(doc []byte) error {
	resultSchemaOnce.Do(func() {
		resultSchema, resultSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resultSchemaJSON))
	})
	if resultSchemaErr != nil {
		return fmt.Errorf("load result schema: %w", resultSchemaErr)
	}
	res, err := resultSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("model output does not match schema: %s", strings.Join(msgs, "; "))
}
