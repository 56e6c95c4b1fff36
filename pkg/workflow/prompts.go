package workflow

// ClassifyPrompt instructs the model to label the user's latest message. The
// response is requested in structured JSON mode so parsing stays trivial.
const ClassifyPrompt = `You are an intent classifier for a document chat assistant.
Classify the user's latest message into exactly one of two classes:

- "document_question": the user is asking about the content of uploaded
  documents, or asking a factual question that the documents could answer.
- "general_chat": greetings, small talk, questions about the assistant
  itself, or anything clearly unrelated to the documents.

Respond with a JSON object of the form {"intent": "<class>"} and nothing else.`

// RewritePrompt instructs the model to produce a standalone retrieval query
// from the conversation so far.
const RewritePrompt = `Given the conversation history and the user's latest message, rewrite the
latest message as a single standalone search query. Resolve pronouns and
references using the history. Keep it short and specific. Respond with the
rewritten query only, no explanation and no quotation marks.`

// GroundedPrompt constrains the answer to the supplied reference passages.
const GroundedPrompt = `You are a helpful assistant that answers questions about uploaded documents.
Answer using ONLY the reference passages provided below. Cite facts from the
passages; do not use outside knowledge. If the passages do not contain the
information needed to answer, reply exactly:
"The uploaded reference documents do not contain information relevant to this question."`

// UngroundedPrompt handles turns answered without document grounding.
const UngroundedPrompt = `You are a helpful assistant for a document chat application. Answer the user
conversationally. If the user asks about document content that you were not
given, reply:
"I could not find that information in the uploaded reference documents. Is there anything else I can help with?"`
