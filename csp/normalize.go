package csp

import "strings"

// normalizeDirectives splits raw directive values into tokens and rewrites
// the special keywords into their dialect-correct spelling. Token order
// within a directive is preserved; the input map is not modified.
func normalizeDirectives(directives DirectiveMap, strategy *Strategy) DirectiveMap {
	normalized := make(DirectiveMap, len(directives))
	for name, values := range directives {
		tokens := make([]string, 0, len(values))
		for _, value := range values {
			for _, token := range strings.Fields(value) {
				tokens = append(tokens, normalizeToken(token, strategy))
			}
		}
		normalized[name] = tokens
	}
	return normalized
}

func normalizeToken(token string, strategy *Strategy) string {
	switch token {
	case "inline", "eval":
		return strategy.QuoteInlineEval(token)
	case "self", "none":
		return "'" + token + "'"
	default:
		return token
	}
}
