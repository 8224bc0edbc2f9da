package csp

import "strings"

// BrowserFamily identifies the CSP dialect of the requesting browser. The
// classification itself happens elsewhere; the compiler only consumes the
// resolved family.
type BrowserFamily int

const (
	FamilyStandard BrowserFamily = iota
	FamilyWebKit
	FamilyFirefox
)

// Header names per dialect.
const (
	HeaderNameStandard = "Content-Security-Policy"
	HeaderNameWebKit   = "X-WebKit-CSP"
	HeaderNameFirefox  = "X-Content-Security-Policy"
)

// Header values emitted when no policy configuration was supplied at all.
const (
	defaultWebKitPolicy  = "default-src https://* 'unsafe-inline' 'unsafe-eval' data:"
	defaultFirefoxPolicy = "options eval-script inline-script; allow https://* data:"
)

// Strategy fixes the dialect-specific facts of one browser family. Values
// are resolved once per compile and never mutated, so the package-level
// strategies are safe for concurrent reads.
type Strategy struct {
	family          BrowserFamily
	headerName      string
	defaultPolicy   string
	supported       []Directive
	supportedSet    map[Directive]struct{}
	inlineToken     string
	evalToken       string
	defaultSrcName  string
	forwardsReports bool
}

var (
	webkitDirectives = []Directive{
		DefaultSrc, ScriptSrc, FrameSrc, StyleSrc, ImgSrc,
		MediaSrc, FontSrc, ObjectSrc, ConnectSrc,
	}

	// Legacy Firefox speaks xhr-src and frame-ancestors but not connect-src.
	firefoxDirectives = []Directive{
		DefaultSrc, ScriptSrc, FrameSrc, StyleSrc, ImgSrc,
		MediaSrc, FontSrc, ObjectSrc, XHRSrc, FrameAncestors,
	}
)

var (
	standardStrategy = newStrategy(Strategy{
		family:         FamilyStandard,
		headerName:     HeaderNameStandard,
		defaultPolicy:  defaultWebKitPolicy,
		supported:      webkitDirectives,
		inlineToken:    SourceUnsafeInline,
		evalToken:      SourceUnsafeEval,
		defaultSrcName: "default-src",
	})

	webkitStrategy = newStrategy(Strategy{
		family:         FamilyWebKit,
		headerName:     HeaderNameWebKit,
		defaultPolicy:  defaultWebKitPolicy,
		supported:      webkitDirectives,
		inlineToken:    SourceUnsafeInline,
		evalToken:      SourceUnsafeEval,
		defaultSrcName: "default-src",
	})

	firefoxStrategy = newStrategy(Strategy{
		family:          FamilyFirefox,
		headerName:      HeaderNameFirefox,
		defaultPolicy:   defaultFirefoxPolicy,
		supported:       firefoxDirectives,
		inlineToken:     "inline-script",
		evalToken:       "eval-script",
		defaultSrcName:  "allow",
		forwardsReports: true,
	})
)

func newStrategy(s Strategy) *Strategy {
	s.supportedSet = make(map[Directive]struct{}, len(s.supported))
	for _, d := range s.supported {
		s.supportedSet[d] = struct{}{}
	}
	return &s
}

// ResolveStrategy maps a browser family to its dialect strategy. Unknown
// families fall back to the standard dialect.
func ResolveStrategy(family BrowserFamily) *Strategy {
	switch family {
	case FamilyWebKit:
		return webkitStrategy
	case FamilyFirefox:
		return firefoxStrategy
	default:
		return standardStrategy
	}
}

// ParseBrowserFamily maps a family name to its enum value. Unrecognized
// names resolve to the standard family.
func ParseBrowserFamily(name string) BrowserFamily {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "firefox", "gecko":
		return FamilyFirefox
	case "webkit", "chrome", "safari":
		return FamilyWebKit
	default:
		return FamilyStandard
	}
}

func (s *Strategy) Family() BrowserFamily { return s.family }

func (s *Strategy) HeaderName() string { return s.headerName }

// DefaultPolicy is the header value used when no configuration was supplied.
func (s *Strategy) DefaultPolicy() string { return s.defaultPolicy }

func (s *Strategy) Supports(d Directive) bool {
	_, ok := s.supportedSet[d]
	return ok
}

// SupportedDirectives returns the dialect's directive set in its fixed order.
func (s *Strategy) SupportedDirectives() []Directive { return s.supported }

// QuoteInlineEval translates the bare inline/eval keywords into the
// dialect's literal form.
func (s *Strategy) QuoteInlineEval(token string) string {
	if token == "inline" {
		return s.inlineToken
	}
	return s.evalToken
}

// DefaultSrcClause phrases the leading default-src clause; legacy Firefox
// spells it "allow".
func (s *Strategy) DefaultSrcClause(tokens []string) string {
	return s.defaultSrcName + " " + strings.Join(tokens, " ")
}

// ForwardsReports reports whether the dialect cannot deliver cross-origin
// violation reports and therefore needs the forwarding endpoint.
func (s *Strategy) ForwardsReports() bool { return s.forwardsReports }
