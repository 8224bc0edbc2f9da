package validate

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	srcDirectiveElements = map[string]string{
		"script-src": "script",
		"img-src":    "img",
		"media-src":  "audio, video, track",
		"frame-src":  "iframe",
		"object-src": "object, embed, applet",
		"style-src":  "style",
	}

	hrefDirectiveElements = map[string]string{
		"style-src": "link[rel=stylesheet]",
		"img-src":   "link[rel=icon], link[rel=apple-touch-icon]",
	}

	// Passive content is upgraded instead of blocked on mixed-content pages.
	passiveElements = map[string]bool{
		"img":    true,
		"audio":  true,
		"video":  true,
		"object": true,
	}
)

// ValidatePage checks every policy-relevant element of an HTML document
// against the policy and returns a report per blocked resource.
func ValidatePage(p *Policy, page url.URL, html io.Reader) (bool, []Report, error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return false, nil, err
	}

	var reports []Report
	var walkErr error

	for directiveName, selector := range srcDirectiveElements {
		directive := p.Directive(directiveName)
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if walkErr != nil {
				return
			}
			ctx := SourceContext{
				Page:  page,
				Nonce: s.AttrOr("nonce", ""),
			}

			element := strings.ToLower(goquery.NodeName(s))
			if src := s.AttrOr("src", ""); src != "" {
				parsed, err := url.Parse(src)
				if err != nil {
					walkErr = err
					return
				}
				ctx.URL = *page.ResolveReference(parsed)
				upgradeMixedContent(p, &ctx, passiveElements[element])
			} else {
				ctx.Body = []byte(s.Text())
				ctx.UnsafeInline = true
			}

			allowed, err := directive.Check(p, ctx)
			if err != nil {
				walkErr = err
				return
			}
			if !allowed {
				reports = append(reports, ctx.Report(directiveName, directive))
			}

			if element == "style" {
				_, cssReports, err := ValidateStylesheet(p, page, s.Text())
				if err != nil {
					walkErr = err
					return
				}
				reports = append(reports, cssReports...)
			}
		})
		if walkErr != nil {
			return false, nil, walkErr
		}
	}

	for directiveName, selector := range hrefDirectiveElements {
		directive := p.Directive(directiveName)
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if walkErr != nil {
				return
			}
			href := s.AttrOr("href", "")
			if href == "" {
				return
			}
			parsed, err := url.Parse(href)
			if err != nil {
				walkErr = err
				return
			}
			ctx := SourceContext{
				Page:  page,
				URL:   *page.ResolveReference(parsed),
				Nonce: s.AttrOr("nonce", ""),
			}
			upgradeMixedContent(p, &ctx, false)

			allowed, err := directive.Check(p, ctx)
			if err != nil {
				walkErr = err
				return
			}
			if !allowed {
				reports = append(reports, ctx.Report(directiveName, directive))
			}
		})
		if walkErr != nil {
			return false, nil, walkErr
		}
	}

	return len(reports) == 0, reports, nil
}

// upgradeMixedContent rewrites http loads on https pages to https when the
// policy upgrades insecure requests, or for passive content that is not
// subject to block-all-mixed-content.
func upgradeMixedContent(p *Policy, ctx *SourceContext, passive bool) {
	if ctx.Page.Scheme != "https" || ctx.URL.Scheme != "http" {
		return
	}
	if p.UpgradeInsecureRequests || (passive && !p.BlockAllMixedContent) {
		ctx.URL.Scheme = "https"
	}
}
