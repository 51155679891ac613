package triples

const corefPrompt = `
Resolve all coreferences in this paragraph.

Replace all pronouns (e.g., "he", "she", "it", "they", "his", "her", "their") and vague references (e.g., "this", "that", "these", "those", "this event") with the explicit full entity they refer to.

Be precise. Do not leave any reference unresolved. The result must be suitable for RDF triple extraction, so use unambiguous, full noun phrases for each reference.

Text:
%s
`

const simplifyPrompt = "Simplify this sentence into short, clear factual statements suitable for RDF triple extraction. Clarify any implied relationships (e.g. link requirements to infrastructure).\n\nText:\n%s"

const extractPrompt = "Extract RDF-style triples from this sentence. Output format: (subject, predicate, object). Ensure all key entities are connected and no orphaned terms remain.\n\nText:\n%s"
