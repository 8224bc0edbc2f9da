// Package csp compiles Content-Security-Policy headers from a declarative
// policy configuration, tailored to the requesting browser's CSP dialect.
package csp

import (
	stderrors "errors"
)

// Directive is the hyphenated name of a CSP directive.
type Directive string

const (
	DefaultSrc     Directive = "default-src"
	ScriptSrc      Directive = "script-src"
	FrameSrc       Directive = "frame-src"
	StyleSrc       Directive = "style-src"
	ImgSrc         Directive = "img-src"
	MediaSrc       Directive = "media-src"
	FontSrc        Directive = "font-src"
	ObjectSrc      Directive = "object-src"
	ConnectSrc     Directive = "connect-src"
	XHRSrc         Directive = "xhr-src"
	FrameAncestors Directive = "frame-ancestors"
)

// Source tokens with fixed spellings.
const (
	SourceSelf         = "'self'"
	SourceNone         = "'none'"
	SourceUnsafeInline = "'unsafe-inline'"
	SourceUnsafeEval   = "'unsafe-eval'"

	SchemeData            = "data:"
	SchemeChromeExtension = "chrome-extension:"
)

// ForwardReportPath is the fixed local endpoint that stands in for a
// cross-origin report URI when forwarding is enabled.
const ForwardReportPath = "/content_security_policy/forward_report"

// universalDirectives is every directive the configuration may name,
// across all dialects.
var universalDirectives = []Directive{
	DefaultSrc,
	ScriptSrc,
	FrameSrc,
	StyleSrc,
	ImgSrc,
	MediaSrc,
	FontSrc,
	ObjectSrc,
	ConnectSrc,
	XHRSrc,
	FrameAncestors,
}

// DirectiveMap holds the working directive state of one compile.
type DirectiveMap map[Directive][]string

// Request is the read-only view of the incoming request the compiler needs.
type Request interface {
	IsSSL() bool
	URL() string
}

// RequestInfo is a plain-value Request for callers outside an HTTP handler.
type RequestInfo struct {
	SSL        bool
	RequestURL string
}

func (r RequestInfo) IsSSL() bool { return r.SSL }

func (r RequestInfo) URL() string { return r.RequestURL }

// PolicyBuildError is the single error kind the compiler surfaces. Every
// internal failure is wrapped into one at the compiler boundary.
type PolicyBuildError struct {
	cause error
}

func (e *PolicyBuildError) Error() string {
	return "could not build content security policy header: " + e.cause.Error()
}

func (e *PolicyBuildError) Unwrap() error { return e.cause }

// wrapBuildError converts err into a *PolicyBuildError unless it already is
// one somewhere in its chain.
func wrapBuildError(err error) error {
	if err == nil {
		return nil
	}
	var buildErr *PolicyBuildError
	if stderrors.As(err, &buildErr) {
		return err
	}
	return &PolicyBuildError{cause: err}
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
