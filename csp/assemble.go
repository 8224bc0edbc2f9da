package csp

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// assembleHeader renders the final header value: the dialect's default-src
// clause first, the remaining directives in lexicographic order, then the
// report-uri clause. default-src must be present by now.
func assembleHeader(directives DirectiveMap, reportURI string, strategy *Strategy) (string, error) {
	defaults, ok := directives[DefaultSrc]
	if !ok {
		return "", errors.New("missing default-src directive")
	}
	delete(directives, DefaultSrc)

	// img-src always allows data: URIs.
	if tokens, ok := directives[ImgSrc]; ok {
		if !containsToken(tokens, SchemeData) {
			directives[ImgSrc] = append(tokens, SchemeData)
		}
	} else {
		directives[ImgSrc] = []string{SchemeData}
	}

	names := make([]string, 0, len(directives))
	for d := range directives {
		names = append(names, string(d))
	}
	sort.Strings(names)

	var header strings.Builder
	header.WriteString(strategy.DefaultSrcClause(defaults))
	header.WriteString("; ")
	for _, name := range names {
		tokens := directives[Directive(name)]
		if len(tokens) == 0 {
			continue
		}
		header.WriteString(name)
		header.WriteString(" ")
		header.WriteString(strings.Join(tokens, " "))
		header.WriteString("; ")
	}
	if reportURI != "" {
		header.WriteString("report-uri " + reportURI + ";")
	}
	return strings.TrimSpace(header.String()), nil
}
