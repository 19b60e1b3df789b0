package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

const stylesheetLoaderURL = "https://cdn.tailwindcss.com"

// LandingPage renders the public landing page with live publication stats.
func LandingPage(data LandingPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := writeDocumentHead(w, "PageSmith"); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<body class="bg-slate-50 text-slate-900">
<main class="mx-auto max-w-3xl px-6 py-16">
<h1 class="text-4xl font-bold tracking-tight">PageSmith</h1>
<p class="mt-4 text-lg text-slate-600">Describe the page you want and get a live, shareable link in seconds. Every document is generated on demand and cleaned before it is published.</p>
<section class="mt-10 grid grid-cols-2 gap-4">
<div class="rounded-lg bg-white p-6 shadow"><p class="text-3xl font-semibold">%d</p><p class="text-sm text-slate-500">pages published</p></div>
<div class="rounded-lg bg-white p-6 shadow"><p class="text-3xl font-semibold">%d</p><p class="text-sm text-slate-500">pages viewed</p></div>
</section>
<section class="mt-10 rounded-lg bg-white p-6 shadow">
<h2 class="text-xl font-semibold">How it works</h2>
<ol class="mt-4 list-decimal space-y-2 pl-5 text-slate-600">
<li>Send a prompt to <code class="rounded bg-slate-100 px-1">POST /api/generate</code> with your email address.</li>
<li>The page is written, cleaned and stored under a permanent link.</li>
<li>Share the returned <code class="rounded bg-slate-100 px-1">live_url</code> with anyone.</li>
</ol>
</section>
<footer class="mt-12 text-sm text-slate-400">Published pages are public to anyone holding the link.</footer>
</main>
</body></html>`, data.TotalPages, data.TotalViews)
		return err
	})
}

// ErrorPage renders a minimal standalone error view.
func ErrorPage(data ErrorPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		title := data.Title
		if title == "" {
			title = data.StatusLabel
		}
		if err := writeDocumentHead(w, title); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<body class="bg-slate-50 text-slate-900">
<main class="mx-auto flex min-h-screen max-w-xl flex-col items-center justify-center px-6 text-center">
<p class="text-sm font-medium uppercase tracking-wide text-slate-400">%s</p>
<h1 class="mt-2 text-2xl font-semibold">%s</h1>
<a href="/" class="mt-8 text-sm text-blue-600 hover:underline">Back to PageSmith</a>
</main>
</body></html>`, html.EscapeString(data.StatusLabel), html.EscapeString(data.Message))
		return err
	})
}

func writeDocumentHead(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><script src="%s"></script></head>`,
		html.EscapeString(title), stylesheetLoaderURL)
	return err
}
