package pipeline

// Long documents are cut to this many estimated tokens before generation.
const maxTextTokens = 200_000

// MediaPrompt asks for the three sections the parser looks for.
const MediaPrompt = `Analyze this media. Provide:
1. Full Transcript of everything spoken, without timestamps or frame labels.
2. Blog Post (about 500 words) based on the content.
3. Summary (about 150 words).
Format the answer with the headings "Transcript", "Blog Post", "Summary" in that order.`

func TextPrompt(text string) string {
	return `Based on the following text, provide:
1. Blog Post (about 500 words).
2. Summary (about 150 words).
Format the answer with the headings "Blog Post" and "Summary" in that order.

Text:
` + text
}
