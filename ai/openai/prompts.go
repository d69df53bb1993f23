package openai

import "fmt"

const spottingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "surface": {
            "type": "string",
            "pattern": "^[a-z]+( [a-z]+)*$"
          },
          "span_start": {
            "type": "number"
          },
          "span_end": {
            "type": "number"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["surface", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const spottingPromptTemplate = `You are an entity spotter for educational lecture material. Identify the
domain concepts a student would need to look up, and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Surface forms must be lowercase, 1-3 words, singular form only.
- Spot concepts that are taught or referenced, not filler words or names of the lecturer.
- Confidence is a number from 0 (a guess) to 1 (certainly a taught concept).
- For text input, span_start and span_end are character offsets of the first occurrence.
- For image input, omit spans and describe what the figure depicts as concepts.
- Include only concepts that are explicitly present. Do not hallucinate.
- If no concepts can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (transcript text):
Input: "Today we cover photosynthesis, the process plants use to convert light."
Output:
{
  "entities": [
    {"surface":"photosynthesis","span_start":15,"span_end":29,"confidence":0.97},
    {"surface":"light","span_start":62,"span_end":67,"confidence":0.55}
  ]
}

Example (slide image showing a labelled cell diagram):
Output:
{
  "entities": [
    {"surface":"cell membrane","confidence":0.9},
    {"surface":"nucleus","confidence":0.92}
  ]
}`

// buildSpottingPrompt creates the system prompt for entity spotting.
func buildSpottingPrompt() string {
	return fmt.Sprintf(spottingPromptTemplate, spottingResponseSchema)
}

const synthesisPromptTemplate = `You are writing a short explanation of the concept %q for a student, in the
language %q. Use the candidate definitions below when they are relevant and
accurate; ignore ones that describe a different sense of the term. Write 2-4
sentences of plain prose. Output only the explanation text, with no preamble
and no markdown.`

// buildSynthesisPrompt creates the system prompt for explanation synthesis.
func buildSynthesisPrompt(label, language string) string {
	return fmt.Sprintf(synthesisPromptTemplate, label, language)
}

const normalizePromptTemplate = `Normalize the given term to its canonical dictionary form in the language %q:
translate it if it is in another language, use the singular, drop qualifiers
like "diagram of" or "introduction to". Output only the normalized term,
lowercase, with no punctuation and no extra text.`

// buildNormalizePrompt creates the system prompt for term normalization.
func buildNormalizePrompt(language string) string {
	return fmt.Sprintf(normalizePromptTemplate, language)
}
