package models

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// BlobKinds lists the persisted blob types that publish a JSON Schema.
var BlobKinds = []string{"summary", "profile"}

// BlobSchema returns the JSON Schema of a persisted blob kind.
func BlobSchema(kind string) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	var schema *jsonschema.Schema
	switch kind {
	case "summary":
		schema = reflector.Reflect(&ConversationSummary{})
		schema.Version = ""
		schema.Title = fmt.Sprintf("ConversationSummary v%d", SummarySchemaVersion)
	case "profile":
		schema = reflector.Reflect(&UserProfile{})
		schema.Version = ""
		schema.Title = fmt.Sprintf("UserProfile v%d", ProfileSchemaVersion)
	default:
		return nil, fmt.Errorf("unknown blob kind %q", kind)
	}

	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return out, nil
}
