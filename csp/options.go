package csp

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SourceList holds the configured value of one directive. In YAML it may be
// written as a single string of whitespace-separated tokens or as a list.
type SourceList []string

func (s *SourceList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*s = SourceList{raw}
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*s = raw
		return nil
	default:
		return errors.Errorf("directive value must be a string or a list, got yaml kind %d", node.Kind)
	}
}

// Options is the declarative policy configuration. Directive fields left nil
// stay absent from the compiled policy; every compile works on its own copy,
// so one Options value may serve many requests.
type Options struct {
	DefaultSrc     SourceList `yaml:"default_src,omitempty"`
	ScriptSrc      SourceList `yaml:"script_src,omitempty"`
	FrameSrc       SourceList `yaml:"frame_src,omitempty"`
	StyleSrc       SourceList `yaml:"style_src,omitempty"`
	ImgSrc         SourceList `yaml:"img_src,omitempty"`
	MediaSrc       SourceList `yaml:"media_src,omitempty"`
	FontSrc        SourceList `yaml:"font_src,omitempty"`
	ObjectSrc      SourceList `yaml:"object_src,omitempty"`
	ConnectSrc     SourceList `yaml:"connect_src,omitempty"`
	XHRSrc         SourceList `yaml:"xhr_src,omitempty"`
	FrameAncestors SourceList `yaml:"frame_ancestors,omitempty"`

	ReportURI string `yaml:"report_uri,omitempty"`

	// Enforce is exposed to callers (the middleware picks the report-only
	// header name when it is false); the pipeline itself ignores it.
	Enforce bool `yaml:"enforce,omitempty"`

	// HTTPAdditions maps directive names to one extra token each, appended
	// only when the request is not SSL.
	HTTPAdditions map[string]string `yaml:"http_additions,omitempty"`

	DisableChromeExtension bool `yaml:"disable_chrome_extension,omitempty"`
	DisableFillMissing     bool `yaml:"disable_fill_missing,omitempty"`
	ForwardEndpoint        bool `yaml:"forward_endpoint,omitempty"`

	// Experimental carries overrides that are merged onto the top-level
	// configuration when the experimental variant is compiled.
	Experimental *Options `yaml:"experimental,omitempty"`

	// Raw, when set, is emitted verbatim as the header value and the
	// pipeline is skipped.
	Raw string `yaml:"raw,omitempty"`
}

// directiveFields pairs every directive with its configured value.
func (o *Options) directiveFields() map[Directive]SourceList {
	return map[Directive]SourceList{
		DefaultSrc:     o.DefaultSrc,
		ScriptSrc:      o.ScriptSrc,
		FrameSrc:       o.FrameSrc,
		StyleSrc:       o.StyleSrc,
		ImgSrc:         o.ImgSrc,
		MediaSrc:       o.MediaSrc,
		FontSrc:        o.FontSrc,
		ObjectSrc:      o.ObjectSrc,
		ConnectSrc:     o.ConnectSrc,
		XHRSrc:         o.XHRSrc,
		FrameAncestors: o.FrameAncestors,
	}
}

// Directives copies the configured directives into a fresh working map.
func (o *Options) Directives() DirectiveMap {
	directives := make(DirectiveMap)
	for d, values := range o.directiveFields() {
		if values == nil {
			continue
		}
		directives[d] = append([]string(nil), values...)
	}
	return directives
}

// ExperimentalVariant returns a copy of the options with the experimental
// overrides merged on top: directive values and the report URI replace the
// top-level ones, http additions merge per key. Toggles are inherited. With
// no experimental section the options are returned unchanged.
func (o *Options) ExperimentalVariant() *Options {
	if o.Experimental == nil {
		return o
	}
	merged := *o
	merged.Experimental = nil

	exp := o.Experimental
	if exp.DefaultSrc != nil {
		merged.DefaultSrc = exp.DefaultSrc
	}
	if exp.ScriptSrc != nil {
		merged.ScriptSrc = exp.ScriptSrc
	}
	if exp.FrameSrc != nil {
		merged.FrameSrc = exp.FrameSrc
	}
	if exp.StyleSrc != nil {
		merged.StyleSrc = exp.StyleSrc
	}
	if exp.ImgSrc != nil {
		merged.ImgSrc = exp.ImgSrc
	}
	if exp.MediaSrc != nil {
		merged.MediaSrc = exp.MediaSrc
	}
	if exp.FontSrc != nil {
		merged.FontSrc = exp.FontSrc
	}
	if exp.ObjectSrc != nil {
		merged.ObjectSrc = exp.ObjectSrc
	}
	if exp.ConnectSrc != nil {
		merged.ConnectSrc = exp.ConnectSrc
	}
	if exp.XHRSrc != nil {
		merged.XHRSrc = exp.XHRSrc
	}
	if exp.FrameAncestors != nil {
		merged.FrameAncestors = exp.FrameAncestors
	}
	if exp.ReportURI != "" {
		merged.ReportURI = exp.ReportURI
	}
	if len(exp.HTTPAdditions) > 0 {
		additions := make(map[string]string, len(o.HTTPAdditions)+len(exp.HTTPAdditions))
		for k, v := range o.HTTPAdditions {
			additions[k] = v
		}
		for k, v := range exp.HTTPAdditions {
			additions[k] = v
		}
		merged.HTTPAdditions = additions
	}
	return &merged
}

// parseDirective resolves a configuration key like "script_src" or
// "script-src" to its directive.
func parseDirective(name string) (Directive, bool) {
	d := Directive(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-"))
	for _, known := range universalDirectives {
		if d == known {
			return d, true
		}
	}
	return "", false
}
