package genai

import (
	"strings"
	"testing"

	"pagesmith/app/internal/sanitize"
)

func TestFallbackDocumentEscapesPrompt(t *testing.T) {
	t.Parallel()

	doc := FallbackDocument(`<script>alert(1)</script> & "quotes"`)

	if strings.Contains(doc, "<script>alert(1)</script>") {
		t.Fatalf("expected prompt markup to be escaped, got %q", doc)
	}

	if !strings.Contains(doc, "&lt;script&gt;") {
		t.Fatalf("expected escaped prompt echo, got %q", doc)
	}
}

// The fallback path is subject to the same sanitization as generated content;
// its output must satisfy the no-script and single-loader invariants too.
func TestFallbackDocumentSurvivesSanitization(t *testing.T) {
	t.Parallel()

	for _, prompt := range []string{"plain prompt", `<img src=x onerror=alert(1)>`, "a & b < c"} {
		out := sanitize.Sanitize(FallbackDocument(prompt))

		if count := strings.Count(out, "<script"); count != 1 {
			t.Fatalf("expected exactly one script element, got %d for prompt %q", count, prompt)
		}

		if !strings.Contains(out, `<script src="`+sanitize.StylesheetLoaderURL+`"></script>`) {
			t.Fatalf("expected pinned loader in sanitized fallback for prompt %q", prompt)
		}

		if !strings.Contains(out, "Service Temporarily Unavailable") {
			t.Fatalf("expected fallback copy to survive sanitization for prompt %q", prompt)
		}

		if strings.Contains(out, "<img") {
			t.Fatalf("expected prompt markup to stay escaped text for prompt %q", prompt)
		}
	}
}
