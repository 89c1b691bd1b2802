package analysis

import "strings"

// systemPrompt instructs the model to return only JSON matching the reply schema.
const systemPrompt = `You are a document analyst. Analyze the provided document and return ONLY a JSON object with this exact structure:

{
  "sentiment": "Positive" | "Negative" | "Neutral" | "Mixed",
  "topics": ["topic1", "topic2", ...],
  "summary": "2-3 sentence summary of the document",
  "entities": ["entity1", "entity2", ...],
  "keyInsights": ["insight1", "insight2", ...],
  "confidence": 0.0-1.0
}

Rules:
- sentiment is the overall emotional tone of the document.
- topics are the 3-5 main subjects discussed.
- entities are named people, organizations, places, and products.
- keyInsights are the 2-4 most important takeaways.
- confidence is your certainty in this analysis, between 0 and 1.
- Respond with ONLY the JSON object, no extra text and no code fences.`

// buildUserPrompt embeds the document text in the instruction message.
func buildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze this document:\n\n")
	b.WriteString(text)
	return b.String()
}
