package genai

import (
	"fmt"
	"sort"
	"strings"
)

// PromptRequest carries the structured fields from which a generation prompt
// is composed for users who prefer a guided form over free text.
type PromptRequest struct {
	Occasion       string
	Title          string
	Theme          string
	Details        map[string]string
	SpecificFields map[string]string
}

// BuildPrompt assembles a generation prompt from structured page details.
// Detail keys are emitted in sorted order so the same request always produces
// the same prompt.
func BuildPrompt(req PromptRequest) string {
	occasion := humanize(req.Occasion)
	if occasion == "" {
		occasion = "Generic"
	}

	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = "modern"
	}

	parts := []string{
		"You are a professional web designer and frontend developer.",
		fmt.Sprintf("Create a visually attractive, single-page %s website.", occasion),
		"",
		fmt.Sprintf("Page Title: %s", strings.TrimSpace(req.Title)),
		fmt.Sprintf("Design Theme: %s", humanize(theme)),
		"",
		"### Content Details",
	}

	parts = append(parts, detailLines(req.Details)...)

	if len(req.SpecificFields) > 0 {
		parts = append(parts, "", "### Occasion-Specific Details")
		parts = append(parts, detailLines(req.SpecificFields)...)
	}

	parts = append(parts,
		"",
		"### Design & Layout Instructions",
		fmt.Sprintf("- Use a %s visual style suitable for a %s.", strings.ToLower(theme), occasion),
		"- Follow this section order:",
		"  1. Hero section (title, short message)",
		"  2. Event details (date, time, venue)",
		"  3. Additional information / special message",
		"  4. Contact or RSVP section",
		"- Use clean spacing, clear typography, and balanced layout.",
		"- Add subtle decorative elements relevant to the occasion.",
		"",
		"### Technical Requirements",
		"- Output ONLY valid HTML and CSS.",
		"- Use semantic HTML5.",
		"- Include CSS inside a <style> tag.",
		"- Do NOT include explanations, markdown, or comments.",
		"- The page must be fully responsive.",
	)

	return strings.Join(parts, "\n")
}

func detailLines(details map[string]string) []string {
	keys := make([]string, 0, len(details))
	for key, value := range details {
		if strings.TrimSpace(value) == "" || value == "undefined" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", humanize(key), details[key]))
	}
	return lines
}

// humanize turns a snake_case field name into a title-cased label.
func humanize(value string) string {
	words := strings.FieldsFunc(strings.TrimSpace(value), func(r rune) bool {
		return r == '_' || r == ' '
	})

	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
