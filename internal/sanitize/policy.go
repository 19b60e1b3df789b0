package sanitize

// StylesheetLoaderURL is the only script source the engine ever emits. The
// generated pages rely on Tailwind utility classes, so the loader is pinned
// here rather than taken from the document under sanitization.
const StylesheetLoaderURL = "https://cdn.tailwindcss.com"

// removedElements are dropped together with their entire subtree. Everything
// here either executes or reinterprets content, so unwrapping would leak
// payloads back into the document as text or markup.
var removedElements = map[string]struct{}{
	"script":   {},
	"iframe":   {},
	"object":   {},
	"embed":    {},
	"noscript": {},
	"template": {},
	"base":     {},
}

// allowedElements pass through with filtered attributes. Elements outside
// this set are unwrapped: the tag is dropped but its children survive.
var allowedElements = map[string]struct{}{
	// document structure
	"html": {}, "head": {}, "body": {}, "title": {}, "meta": {}, "link": {}, "style": {},
	// layout
	"div": {}, "span": {}, "section": {}, "article": {}, "header": {}, "footer": {},
	"nav": {}, "main": {}, "aside": {},
	// headings and text
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"p": {}, "br": {}, "hr": {}, "blockquote": {}, "pre": {}, "code": {},
	"strong": {}, "em": {}, "b": {}, "i": {}, "small": {}, "sub": {}, "sup": {},
	// lists
	"ul": {}, "ol": {}, "li": {}, "dl": {}, "dt": {}, "dd": {},
	// tables
	"table": {}, "thead": {}, "tbody": {}, "tfoot": {}, "tr": {}, "th": {}, "td": {},
	// media, links and form controls
	"img": {}, "a": {}, "button": {}, "form": {}, "label": {},
	"input": {}, "textarea": {}, "select": {}, "option": {},
	// inline svg subset used by decorative icons
	"svg": {}, "path": {}, "circle": {}, "rect": {}, "line": {}, "g": {},
	"defs": {}, "lineargradient": {}, "stop": {},
}

// globalAttributes are permitted on any allowed element.
var globalAttributes = map[string]struct{}{
	"class": {}, "id": {}, "style": {}, "href": {}, "src": {}, "alt": {}, "title": {},
	"type": {}, "name": {}, "value": {}, "placeholder": {}, "required": {}, "checked": {},
	"width": {}, "height": {}, "viewbox": {}, "xmlns": {},
	"fill": {}, "stroke": {}, "d": {}, "r": {}, "cx": {}, "cy": {},
	"x1": {}, "y1": {}, "x2": {}, "y2": {},
	"stroke-width": {}, "stroke-linecap": {}, "stroke-linejoin": {},
}

// elementAttributes extends the global set for specific elements.
var elementAttributes = map[string]map[string]struct{}{
	"meta": {"charset": {}, "name": {}, "content": {}},
	"link": {"rel": {}, "href": {}, "crossorigin": {}, "integrity": {}},
	"a":    {"href": {}, "target": {}, "rel": {}},
}

// urlAttributes carry a URI and are subject to scheme checks.
var urlAttributes = map[string]struct{}{
	"href":       {},
	"src":        {},
	"action":     {},
	"formaction": {},
	"poster":     {},
}

func elementAllowed(name string) bool {
	_, ok := allowedElements[name]
	return ok
}

func elementRemoved(name string) bool {
	_, ok := removedElements[name]
	return ok
}

func attributeAllowed(element, key string) bool {
	if _, ok := globalAttributes[key]; ok {
		return true
	}
	if extras, ok := elementAttributes[element]; ok {
		if _, ok := extras[key]; ok {
			return true
		}
	}
	return false
}
