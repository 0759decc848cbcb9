// Package prompts holds the prompt text and structured-output schemas for
// every generation call the engine makes. Builders are pure string assembly;
// nothing here talks to the network.
package prompts

import (
	"fmt"
	"strings"
)

// ---- Discovery extraction ----

const extractionSystem = "You are a litigation paralegal. You read the raw text of a served discovery document and extract its structured fields exactly as written. Never invent values; leave a field empty if the document does not state it. Dates are formatted YYYY-MM-DD."

// ExtractionPrompt builds the system/user pair for structured extraction of
// one uploaded discovery set. ocrText is the full text layer of the document.
func ExtractionPrompt(categoryLabel, ocrText string) (system string, user string) {
	user = fmt.Sprintf(
		"The following is the text of a discovery document declared as %q.\n\n%s\n\nExtract the document type, the propounding and responding party names, the court case number, the set number, the service date, the response deadline, and every numbered request or interrogatory in order. Keep each request's text verbatim.",
		categoryLabel, ocrText,
	)
	return extractionSystem, user
}

func ExtractionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_type":     map[string]any{"type": "string"},
			"propounding_party": map[string]any{"type": "string"},
			"responding_party":  map[string]any{"type": "string"},
			"case_number":       map[string]any{"type": "string"},
			"set_number":        map[string]any{"type": "string"},
			"service_date":      map[string]any{"type": "string"},
			"response_deadline": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"number": map[string]any{"type": "integer"},
						"text":   map[string]any{"type": "string"},
					},
					"required":             []string{"number", "text"},
					"additionalProperties": false,
				},
			},
		},
		"required": []string{
			"document_type", "propounding_party", "responding_party",
			"case_number", "set_number", "service_date", "response_deadline",
			"questions",
		},
		"additionalProperties": false,
	}
}

// ---- Question simplification ----

const simplifySystem = "You translate formal discovery interrogatories into plain questions a layperson client can answer. Address the client directly in the second person. Keep every factual element of the original question; drop only legal boilerplate. Output one question, no preamble."

func SimplifyPrompt(legalText string) (system string, user string) {
	user = fmt.Sprintf("Rewrite this discovery request as a plain-language question for the client:\n\n%s", legalText)
	return simplifySystem, user
}

// ---- AI-assisted question rewrite ----

const rewriteSystem = "You edit client questionnaire questions per an attorney's instruction. Return only the revised question text, second person, plain language."

func RewritePrompt(currentText, instruction string) (system string, user string) {
	user = fmt.Sprintf("Current question:\n%s\n\nAttorney instruction:\n%s", currentText, instruction)
	return rewriteSystem, user
}

// ---- Case narratives ----

const narrativesSystem = "You are a senior litigation strategist. From a client's discovery answers you propose three distinct overall theories of the case that a responding party could adopt. Rate each theory's strength honestly as strong, moderate, or weak based on how well the answers support it."

// NarrativesPrompt builds the batch narrative-generation prompt from the
// case type and the compiled question/answer transcript.
func NarrativesPrompt(caseType, transcript string) (system string, user string) {
	user = fmt.Sprintf(
		"Case type: %s\n\nClient questionnaire transcript:\n%s\n\nPropose exactly three candidate case narratives. For each give a short title, a one-paragraph description, a strength rating, 3-5 key points, and the objection grounds it best supports.",
		caseType, transcript,
	)
	return narrativesSystem, user
}

func NarrativesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"narratives": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"strength":    map[string]any{"type": "string", "enum": []string{"strong", "moderate", "weak"}},
						"key_points":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"suggested_objections": map[string]any{
							"type": "array", "items": map[string]any{"type": "string"},
						},
					},
					"required":             []string{"title", "description", "strength", "key_points", "suggested_objections"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"narratives"},
		"additionalProperties": false,
	}
}

// ---- Objections and direct answers ----

var objectionFocusInstructions = map[string]string{
	"vagueness":      "Object on the ground that the request is vague, ambiguous, or overbroad. Identify the specific terms or phrases that lack reasonable particularity.",
	"prematurity":    "Object on the ground that the request is premature because discovery and investigation are ongoing and the responding party has not yet obtained the information sought.",
	"expert_opinion": "Object on the ground that the request calls for expert opinion, legal conclusion, or improper characterization beyond the responding party's personal knowledge.",
}

// FocusInstruction returns the fixed rhetorical framing for one objection
// slot. Unknown focuses return an empty string.
func FocusInstruction(focus string) string {
	return objectionFocusInstructions[focus]
}

const objectionSystem = "You draft discovery objections for a responding party in civil litigation. Write in formal objection language, one paragraph, consistent with the selected case narrative. Output only the objection text."

// ObjectionPrompt builds one objection-option generation call. Identical
// inputs always produce an equivalent prompt, so a retry only overwrites the
// targeted slot.
func ObjectionPrompt(focus, requestText, clientAnswer, narrative string) (system string, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Discovery request:\n%s\n\n", requestText)
	if strings.TrimSpace(clientAnswer) != "" {
		fmt.Fprintf(&b, "Client's answer:\n%s\n\n", clientAnswer)
	}
	fmt.Fprintf(&b, "Selected case narrative:\n%s\n\n", narrative)
	fmt.Fprintf(&b, "Framing instruction:\n%s", FocusInstruction(focus))
	return objectionSystem, b.String()
}

const directAnswerSystem = "You draft substantive discovery responses for a responding party. Answer the request directly and truthfully based on the client's answer, framed consistently with the selected case narrative. Reserve rights to supplement. Output only the response text."

func DirectAnswerPrompt(requestText, clientAnswer, narrative string) (system string, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Discovery request:\n%s\n\n", requestText)
	fmt.Fprintf(&b, "Client's answer:\n%s\n\n", clientAnswer)
	fmt.Fprintf(&b, "Selected case narrative:\n%s", narrative)
	return directAnswerSystem, b.String()
}
