package curveio

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Schema returns the JSON schema of a single Record, for editors and external tooling that
// produce series files.
func Schema() ([]byte, error) {
	data, err := json.MarshalIndent(jsonschema.Reflect(&Record{}), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode record schema")
	}
	return append(data, '\n'), nil
}
