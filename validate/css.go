package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/pkg/errors"
)

var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// ValidateStylesheet checks a stylesheet's external references against the
// policy: @import targets against style-src, @font-face sources against
// font-src and every other url() reference against img-src.
func ValidateStylesheet(p *Policy, page url.URL, stylesheet string) (bool, []Report, error) {
	parsed, err := parser.Parse(stylesheet)
	if err != nil {
		return false, nil, errors.Wrap(err, "parsing stylesheet")
	}

	var reports []Report
	for _, rule := range parsed.Rules {
		ruleReports, err := checkRule(p, page, rule, false)
		if err != nil {
			return false, nil, err
		}
		reports = append(reports, ruleReports...)
	}
	return len(reports) == 0, reports, nil
}

func checkRule(p *Policy, page url.URL, rule *css.Rule, inFontFace bool) ([]Report, error) {
	var reports []Report

	if rule.Kind == css.AtRule {
		switch strings.ToLower(rule.Name) {
		case "@import":
			target := rule.Prelude
			if m := cssURLPattern.FindStringSubmatch(target); m != nil {
				target = m[1]
			} else {
				target = strings.Trim(target, `'" `)
			}
			report, err := checkCSSReference(p, page, "style-src", target)
			if err != nil {
				return nil, err
			}
			if report != nil {
				reports = append(reports, *report)
			}
			return reports, nil
		case "@font-face":
			inFontFace = true
		}
	}

	for _, declaration := range rule.Declarations {
		directiveName := "img-src"
		if inFontFace && strings.EqualFold(declaration.Property, "src") {
			directiveName = "font-src"
		}
		for _, m := range cssURLPattern.FindAllStringSubmatch(declaration.Value, -1) {
			report, err := checkCSSReference(p, page, directiveName, m[1])
			if err != nil {
				return nil, err
			}
			if report != nil {
				reports = append(reports, *report)
			}
		}
	}

	for _, nested := range rule.Rules {
		nestedReports, err := checkRule(p, page, nested, inFontFace)
		if err != nil {
			return nil, err
		}
		reports = append(reports, nestedReports...)
	}
	return reports, nil
}

func checkCSSReference(p *Policy, page url.URL, directiveName, reference string) (*Report, error) {
	parsed, err := url.Parse(reference)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing css reference %q", reference)
	}
	ctx := SourceContext{
		Page: page,
		URL:  *page.ResolveReference(parsed),
	}
	directive := p.Directive(directiveName)
	allowed, err := directive.Check(p, ctx)
	if err != nil {
		return nil, err
	}
	if allowed {
		return nil, nil
	}
	report := ctx.Report(directiveName, directive)
	return &report, nil
}
