package csp

import "github.com/pkg/errors"

// Header is one compiled name/value pair.
type Header struct {
	Name  string
	Value string
}

// Compile runs the full pipeline for one request: normalization, filling,
// report-endpoint resolution and assembly. A nil opts yields the dialect's
// fixed default policy; a set Raw value is returned verbatim. Every failure,
// panics included, surfaces as a *PolicyBuildError.
func Compile(opts *Options, req Request, family BrowserFamily) (header Header, err error) {
	defer func() {
		if r := recover(); r != nil {
			header = Header{}
			err = wrapBuildError(errors.Errorf("panic during policy compile: %v", r))
		}
	}()

	strategy := ResolveStrategy(family)
	if opts == nil {
		return Header{Name: strategy.HeaderName(), Value: strategy.DefaultPolicy()}, nil
	}
	if opts.Raw != "" {
		return Header{Name: strategy.HeaderName(), Value: opts.Raw}, nil
	}

	value, err := compileValue(opts, req, strategy)
	if err != nil {
		return Header{}, wrapBuildError(err)
	}
	return Header{Name: strategy.HeaderName(), Value: value}, nil
}

func compileValue(opts *Options, req Request, strategy *Strategy) (string, error) {
	directives := normalizeDirectives(opts.Directives(), strategy)
	directives = fillDirectives(directives, strategy, opts, req.IsSSL())
	reportURI, err := resolveReportURI(opts.ReportURI, req, strategy, opts.ForwardEndpoint)
	if err != nil {
		return "", err
	}
	return assembleHeader(directives, reportURI, strategy)
}

// Policy binds one configuration to one request and memoizes the compiled
// value. A Policy is meant for a single in-flight request and must not be
// shared between goroutines.
type Policy struct {
	opts     *Options
	req      Request
	family   BrowserFamily
	strategy *Strategy
	compiled string
	done     bool
}

func NewPolicy(opts *Options, req Request, family BrowserFamily) *Policy {
	return &Policy{
		opts:     opts,
		req:      req,
		family:   family,
		strategy: ResolveStrategy(family),
	}
}

func (p *Policy) HeaderName() string { return p.strategy.HeaderName() }

// Enforce reports whether the policy should be emitted as enforcing. The
// default no-config policy always enforces; a configured policy must opt in.
func (p *Policy) Enforce() bool {
	return p.opts == nil || p.opts.Enforce
}

// Value compiles the header value once; later calls return the cached
// string without re-running the pipeline.
func (p *Policy) Value() (string, error) {
	if p.done {
		return p.compiled, nil
	}
	header, err := Compile(p.opts, p.req, p.family)
	if err != nil {
		return "", err
	}
	p.compiled = header.Value
	p.done = true
	return p.compiled, nil
}
