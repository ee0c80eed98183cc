package llm

import "strings"

const contentsPlaceholder = "{{contents}}"

const defaultPrompt = `You are an experienced news editor. The articles below all report on the same story.
Read them together and produce:
- title: one concise headline that captures the shared story.
- sum_contents: a cohesive summary of 3 to 7 sentences covering the key facts, main events and implications, without repeating information.
- keyword: an array of 5 to 15 individual keyword strings drawn from the articles.

Write every field in the language the articles are written in.
Respond with a single JSON object with exactly the keys "title", "sum_contents" and "keyword".

Articles:
{{contents}}`

// BuildPrompt substitutes the composed cluster text into template.
// An empty template selects the built-in one; a template without the
// placeholder gets the text appended.
func BuildPrompt(template, contents string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		template = defaultPrompt
	}
	if !strings.Contains(template, contentsPlaceholder) {
		return template + "\n\n" + contents
	}
	return strings.Replace(template, contentsPlaceholder, contents, 1)
}
