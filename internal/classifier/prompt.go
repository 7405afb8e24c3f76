package classifier

import (
	"fmt"
	"strings"
)

// previewLimit is the hard cutoff for content previews embedded in the
// outbound prompt. The cut is a flat byte slice with no word-boundary
// awareness; splitting mid-word is acceptable.
const previewLimit = 1000

// systemPrompt establishes the assistant's role and output contract.
const systemPrompt = "You are a helpful productivity assistant. Always return valid JSON."

// buildUserPrompt embeds the project description and page metadata into
// the classification instruction, including the scoring guidance bands.
func buildUserPrompt(projectDescription, url, title, contentPreview string) string {
	var sb strings.Builder

	sb.WriteString("You are a productivity assistant helping a user stay focused.\n\n")
	sb.WriteString(fmt.Sprintf("User's Current Project: %q\n\n", projectDescription))
	sb.WriteString("Page They Are Visiting:\n")
	sb.WriteString(fmt.Sprintf("- URL: %s\n", url))
	sb.WriteString(fmt.Sprintf("- Title: %s\n", title))
	sb.WriteString(fmt.Sprintf("- Content Preview: %s...\n\n", truncatePreview(contentPreview)))
	sb.WriteString("Task: Determine if this page is relevant/productive for the stated project.\n\n")
	sb.WriteString("IMPORTANT GUIDELINES:\n")
	sb.WriteString("- Consider tools and resources that HELP with the project as RELEVANT (e.g., ChatGPT for coding help, Stack Overflow, documentation, tutorials)\n")
	sb.WriteString("- Learning resources, Q&A sites, AI assistants that directly support the work = HIGH relevance (0.7-1.0)\n")
	sb.WriteString("- Social media, entertainment, shopping = LOW relevance (0.0-0.3)\n")
	sb.WriteString("- News, tangentially related topics = MEDIUM relevance (0.3-0.6)\n\n")
	sb.WriteString("Output a valid JSON object with exactly these fields:\n")
	sb.WriteString("- \"relevance_score\": A number between 0.0 (completely distracting) and 1.0 (highly relevant)\n")
	sb.WriteString("- \"reasoning\": A short, one-sentence explanation of why.\n\n")
	sb.WriteString("Example JSON:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"relevance_score\": 0.8,\n")
	sb.WriteString("    \"reasoning\": \"ChatGPT can help answer coding questions related to the project.\"\n")
	sb.WriteString("}\n")

	return sb.String()
}

// truncatePreview cuts s to previewLimit bytes.
func truncatePreview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit]
}
