package validate

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// Check reports whether the load described by ctx is allowed under the
// directive. A nil directive means the policy places no restriction on the
// category.
func (d *SourceDirective) Check(p *Policy, ctx SourceContext) (bool, error) {
	if d == nil {
		return true, nil
	}
	if d.None {
		return false, nil
	}

	if ctx.UnsafeInline {
		return d.checkInline(ctx), nil
	}
	if ctx.UnsafeEval {
		return d.UnsafeEval, nil
	}
	return d.checkURL(ctx), nil
}

func (d *SourceDirective) checkInline(ctx SourceContext) bool {
	if d.UnsafeInline {
		return true
	}
	if ctx.Nonce != "" && d.Nonces[ctx.Nonce] {
		return true
	}
	for _, h := range d.Hashes {
		digest := h.Algorithm()
		digest.Write(ctx.Body)
		if base64.StdEncoding.EncodeToString(digest.Sum(nil)) == h.Value {
			return true
		}
	}
	return false
}

func (d *SourceDirective) checkURL(ctx SourceContext) bool {
	scheme := strings.ToLower(ctx.URL.Scheme)
	if d.Schemes[scheme+":"] {
		return true
	}
	if d.Self && sameOrigin(ctx.URL, ctx.Page) {
		return true
	}

	host := strings.ToLower(ctx.URL.Hostname())
	for _, source := range d.Hosts {
		if source.Scheme != "" && source.Scheme != scheme {
			continue
		}
		if source.Pattern.Match(host) {
			return true
		}
	}
	return false
}

func sameOrigin(a, b url.URL) bool {
	return a.Scheme == b.Scheme && a.Hostname() == b.Hostname() && a.Port() == b.Port()
}
