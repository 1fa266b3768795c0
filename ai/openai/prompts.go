package openai

import (
	"fmt"
	"strings"
)

const topicResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "topics": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[a-z]+( [a-z]+)*$"}
    }
  },
  "required": ["topics"],
  "additionalProperties": false
}`

const topicPromptTemplate = `You read the titles and abstracts of a researcher's most cited publications and name their research topics.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return at most %d topics, most central first.
- Topics are lowercase, 1-3 words, singular form, specific to the field (e.g. "protein folding", not "biology").
- Avoid generic words such as method, model, data, learning, network, paper.
- Use only what the publications support. Do not hallucinate.
- If nothing can be identified, return {"topics": []}.

Example:
Input:
AlphaFold: highly accurate protein structure prediction
Protein complex prediction with AlphaFold-Multimer
Output:
{"topics": ["protein structure prediction", "protein complex", "structural biology"]}`

// buildTopicPrompt creates the system prompt asking for at most k topics.
func buildTopicPrompt(k int) string {
	return fmt.Sprintf(topicPromptTemplate, topicResponseSchema, k)
}

// maxPromptChars bounds the publication text sent for topic extraction.
const maxPromptChars = 12000

// joinForPrompt joins texts one per line, truncated to maxPromptChars.
func joinForPrompt(texts []string) string {
	joined := strings.Join(texts, "\n")
	if len(joined) > maxPromptChars {
		joined = joined[:maxPromptChars]
	}
	return strings.ToValidUTF8(joined, "")
}

// cleanJSONResponse strips markdown code fences and repairs keys missing
// their opening quote, a common small-model defect: `{topics": []}`.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		b.WriteByte(ch)
		if ch != '{' && ch != ',' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t') {
			j++
		}
		k := j
		for k < len(s) && (isASCIILetter(s[k]) || s[k] == '_') {
			k++
		}
		if k > j && k+1 < len(s) && s[k] == '"' && s[k+1] == ':' {
			b.WriteString(s[i+1 : j])
			b.WriteByte('"')
			b.WriteString(s[j:k])
			i = k - 1
		}
	}
	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
