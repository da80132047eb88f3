package models

const (
	// SummaryQuestion feeds the answer engine before any infographic run.
	SummaryQuestion = "Summarize this video in 2-3 sentences."

	// DetailsAnchorQuery anchors retrieval when no user question exists.
	DetailsAnchorQuery = "main topic, purpose and key themes of the video"
)

var (
	AnswerPromptTemplate = `You are a helpful assistant.
Answer ONLY from the provided transcript context.
If the context is insufficient, just say you don't know politely.

Context: %s
Question: %s

Answer:
`

	DetailsPromptTemplate = `Based on the following video transcript context, respond with a strict JSON object with exactly these keys:
"title": a short catchy title for the video (max 6 words)
"interface": a short description of an app or interface that fits the video topic
"themes": a comma-separated list of 3 themes

Respond with the JSON object only, no prose, no markdown.

Context:
%s
`

	MindmapPromptTemplate = `Analyze the following YouTube video transcript and create a comprehensive mind map in Mermaid.js syntax.

Guidelines:
1. Use 'mindmap' as the root keyword.
2. Create a logical hierarchy of concepts.
3. Keep nodes concise (max 5-6 words per node).
4. Focus on the main topic and key takeaways.
5. Return ONLY the Mermaid.js code block, starting with 'mindmap'.
6. Do not include markdown code fences.

Transcript:
%s
`
)
