package sanitize

import "strings"

// The CSS filter works at declaration granularity so generator-authored
// layout, color and typography survive while anything that can trigger a
// fetch or execute survives nowhere. Declarations are re-emitted in a
// canonical "prop: value" form, which makes re-filtering a no-op.

var allowedCSSProperties = map[string]struct{}{
	"color": {}, "opacity": {}, "display": {}, "position": {}, "float": {}, "clear": {},
	"top": {}, "right": {}, "bottom": {}, "left": {}, "z-index": {},
	"width": {}, "height": {}, "min-width": {}, "min-height": {}, "max-width": {}, "max-height": {},
	"overflow": {}, "overflow-x": {}, "overflow-y": {}, "visibility": {},
	"white-space": {}, "vertical-align": {}, "line-height": {}, "letter-spacing": {},
	"box-shadow": {}, "box-sizing": {}, "cursor": {}, "gap": {}, "row-gap": {}, "column-gap": {},
	"align-items": {}, "align-content": {}, "align-self": {},
	"justify-content": {}, "justify-items": {}, "justify-self": {},
	"order": {}, "object-fit": {}, "aspect-ratio": {},
	"list-style": {}, "list-style-type": {}, "list-style-position": {},
	"table-layout": {}, "border-collapse": {}, "border-spacing": {},
	"transition": {}, "transform": {}, "animation": {},
}

// allowedCSSPrefixes admit property families without enumerating every
// longhand (margin-top, border-bottom-left-radius, grid-template-columns...).
var allowedCSSPrefixes = []string{
	"margin", "padding", "border", "font", "text", "background",
	"flex", "grid", "outline", "word", "place",
}

// disallowedCSSValueParts reject values that can fetch or execute. The '<'
// check also prevents filtered stylesheet text from terminating the
// enclosing style element when serialized.
var disallowedCSSValueParts = []string{
	"url(", "expression(", "javascript:", "-moz-binding", "behavior:", "@import", "\\", "<", "{", "}",
}

func cssPropertyAllowed(prop string) bool {
	if _, ok := allowedCSSProperties[prop]; ok {
		return true
	}
	for _, prefix := range allowedCSSPrefixes {
		if strings.HasPrefix(prop, prefix) {
			return true
		}
	}
	return false
}

func cssValueSafe(value string) bool {
	lowered := strings.ToLower(value)
	for _, part := range disallowedCSSValueParts {
		if strings.Contains(lowered, part) {
			return false
		}
	}
	return true
}

func validCSSPropertyName(prop string) bool {
	if prop == "" {
		return false
	}
	for _, r := range prop {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// filterDeclarations reduces a declaration list (the contents of a style
// attribute or a rule body) to the allowed properties with safe values.
func filterDeclarations(input string) string {
	declarations := strings.Split(input, ";")
	kept := make([]string, 0, len(declarations))

	for _, declaration := range declarations {
		trimmed := strings.TrimSpace(declaration)
		if trimmed == "" {
			continue
		}

		colon := strings.IndexByte(trimmed, ':')
		if colon <= 0 {
			continue
		}

		prop := strings.ToLower(strings.TrimSpace(trimmed[:colon]))
		value := strings.TrimSpace(trimmed[colon+1:])
		if value == "" {
			continue
		}

		if !validCSSPropertyName(prop) || !cssPropertyAllowed(prop) || !cssValueSafe(value) {
			continue
		}

		kept = append(kept, prop+": "+value)
	}

	return strings.Join(kept, "; ")
}

// filterStylesheet applies the declaration filter to each rule body of a
// stylesheet. At-rules are dropped wholesale and selectors that could break
// out of the style element are discarded with their rule.
func filterStylesheet(input string) string {
	var rules []string
	rest := input

	for {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			break
		}

		selector := strings.TrimSpace(rest[:open])
		body, remaining, ok := matchRuleBody(rest[open+1:])
		if !ok {
			break
		}
		rest = remaining

		if selector == "" || strings.HasPrefix(selector, "@") {
			continue
		}
		if strings.ContainsAny(selector, "<&{}") {
			continue
		}

		declarations := filterDeclarations(body)
		if declarations == "" {
			continue
		}

		rules = append(rules, selector+" { "+declarations+" }")
	}

	return strings.Join(rules, "\n")
}

// matchRuleBody consumes input up to the closing brace of the current rule,
// tolerating nested braces from at-rule blocks.
func matchRuleBody(input string) (body string, rest string, ok bool) {
	depth := 1
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[:i], input[i+1:], true
			}
		}
	}
	return "", "", false
}
