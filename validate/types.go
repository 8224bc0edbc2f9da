// Package validate checks web content against a compiled
// Content-Security-Policy, answering whether a policy would block
// resources a page actually loads.
package validate

import (
	"fmt"
	"hash"
	"net/url"

	"github.com/gobwas/glob"
)

// Policy is a parsed CSP header value, ready for matching.
type Policy struct {
	Directives              map[string]*SourceDirective
	ReportURI               string
	UpgradeInsecureRequests bool
	BlockAllMixedContent    bool
}

// Directive returns the source directive that governs directiveName,
// falling back to default-src. A nil result means the policy does not
// restrict that category.
func (p *Policy) Directive(directiveName string) *SourceDirective {
	if d, ok := p.Directives[directiveName]; ok {
		return d
	}
	return p.Directives["default-src"]
}

// SourceDirective is one directive's allowed-source rules.
type SourceDirective struct {
	ruleCount int

	None         bool
	Self         bool
	UnsafeInline bool
	UnsafeEval   bool
	Nonces       map[string]bool
	Hashes       []HashSource
	Schemes      map[string]bool
	Hosts        []HostSource
	SrcHosts     []string
}

// HostSource matches one host expression from a source list. Host patterns
// may contain * wildcards; a scheme restricts the match when present.
type HostSource struct {
	Scheme  string
	Pattern glob.Glob
	Raw     string
}

// HashSource matches content whose digest equals Value.
type HashSource struct {
	Algorithm func() hash.Hash
	Value     string
}

// SourceContext describes one resource load to check against a directive.
type SourceContext struct {
	URL          url.URL
	Page         url.URL
	UnsafeInline bool
	UnsafeEval   bool
	Nonce        string
	Body         []byte
}

// Report records one resource the policy would block.
type Report struct {
	Document      string
	Blocked       string
	DirectiveName string
	Directive     *SourceDirective
	Context       SourceContext
}

func (c SourceContext) Report(directiveName string, directive *SourceDirective) Report {
	blocked := c.URL.String()
	if blocked == "" {
		blocked = "inline"
	}
	return Report{
		Document:      c.Page.String(),
		Blocked:       blocked,
		DirectiveName: directiveName,
		Directive:     directive,
		Context:       c,
	}
}

func (r Report) String() string {
	return fmt.Sprintf("%s blocked by %s on %s", r.Blocked, r.DirectiveName, r.Document)
}
