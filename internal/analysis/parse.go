package analysis

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// Defaults applied when the model reply parses but is missing fields, and the
// fixed fallback record used when it does not parse at all.
const (
	defaultConfidence = 0.7
	defaultSummary    = "No summary provided"
	defaultSentiment  = "Neutral"

	fallbackSentiment = "Analysis completed"
	fallbackTopic     = "Document Analysis"
	fallbackSummary   = "The document was analyzed but the response could not be fully structured."
	fallbackInsight   = "Document processed successfully"
)

// replyFields is the structured portion of a parsed model reply.
type replyFields struct {
	Sentiment   string
	Topics      []string
	Summary     string
	Entities    []string
	KeyInsights []string
	Confidence  float64
}

// parseReply parses the model's free-text reply into replyFields. Code fences
// are stripped, then the first balanced {...} substring is parsed; when that
// fails the whole cleaned string is parsed. A reply with no parseable JSON
// yields the fixed fallback record, never an error.
func parseReply(reply string, logger *slog.Logger) replyFields {
	cleaned := stripCodeFences(reply)

	raw, ok := decodeObject(balancedObject(cleaned))
	if !ok {
		raw, ok = decodeObject(cleaned)
	}
	if !ok {
		logger.Warn("analysis.parse.fallback", "reply_len", len(reply))
		return replyFields{
			Sentiment:   fallbackSentiment,
			Topics:      []string{fallbackTopic},
			Summary:     fallbackSummary,
			Entities:    []string{},
			KeyInsights: []string{fallbackInsight},
			Confidence:  defaultConfidence,
		}
	}

	if err := replySchema.Validate(raw); err != nil {
		logger.Warn("analysis.parse.schema_mismatch", "error", err)
		return coerceFields(raw)
	}

	return strictFields(raw)
}

// stripCodeFences removes markdown code fence markers around the reply.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
	} else {
		return trimmed
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// balancedObject returns the first balanced {...} substring, tracking string
// literals and escapes so braces inside values do not end the object early.
// Returns "" when no balanced object exists.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func decodeObject(s string) (map[string]any, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	return m, true
}

// strictFields maps a schema-valid reply onto replyFields. The schema already
// guarantees field types and a confidence in (0,1], so the reported confidence
// is trusted as-is and only defaulted when absent.
func strictFields(raw map[string]any) replyFields {
	f := replyFields{
		Sentiment:   stringField(raw, "sentiment", defaultSentiment),
		Topics:      stringListField(raw, "topics"),
		Summary:     stringField(raw, "summary", defaultSummary),
		Entities:    stringListField(raw, "entities"),
		KeyInsights: stringListField(raw, "keyInsights"),
		Confidence:  defaultConfidence,
	}
	if v, ok := raw["confidence"].(float64); ok {
		f.Confidence = v
	}
	return f
}

// coerceFields repairs a reply the schema rejected: list fields
// default to empty, summary to a placeholder, confidence to 0.7 when absent
// or falsy and clamped to 1 when inflated.
func coerceFields(raw map[string]any) replyFields {
	f := replyFields{
		Sentiment:   stringField(raw, "sentiment", defaultSentiment),
		Topics:      stringListField(raw, "topics"),
		Summary:     stringField(raw, "summary", defaultSummary),
		Entities:    stringListField(raw, "entities"),
		KeyInsights: stringListField(raw, "keyInsights"),
		Confidence:  defaultConfidence,
	}

	if v, ok := raw["confidence"].(float64); ok && v > 0 {
		if v > 1 {
			v = 1
		}
		f.Confidence = v
	}

	return f
}

func stringField(raw map[string]any, key, fallback string) string {
	if v, ok := raw[key].(string); ok {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return fallback
}

func stringListField(raw map[string]any, key string) []string {
	list, ok := raw[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
