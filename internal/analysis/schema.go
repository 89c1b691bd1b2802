package analysis

import "github.com/santhosh-tekuri/jsonschema/v5"

// replySchemaJSON is the strict response shape requested from the model.
// Replies that validate are taken at face value; replies that do not are
// routed through lenient coercion. Confidence 0 is deliberately excluded so
// a zero report falls back to the default instead of being trusted.
const replySchemaJSON = `{
	"type": "object",
	"properties": {
		"sentiment": {"type": "string"},
		"topics": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string", "minLength": 1},
		"entities": {"type": "array", "items": {"type": "string"}},
		"keyInsights": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
	},
	"required": ["sentiment", "summary"]
}`

var replySchema = jsonschema.MustCompileString("analysis-reply.json", replySchemaJSON)
