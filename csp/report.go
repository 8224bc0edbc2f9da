package csp

import (
	"net/url"

	"github.com/pkg/errors"
)

// resolveReportURI decides what happens to the configured report URI under
// dialects that cannot deliver cross-origin reports: same-origin URIs pass
// through, cross-origin (or path-only) URIs are either replaced with the
// fixed forwarding path or dropped entirely.
func resolveReportURI(reportURI string, req Request, strategy *Strategy, forward bool) (string, error) {
	if reportURI == "" || !strategy.ForwardsReports() {
		return reportURI, nil
	}

	reportURL, err := url.Parse(reportURI)
	if err != nil {
		return "", errors.Wrapf(err, "parsing report uri %q", reportURI)
	}
	requestURL, err := url.Parse(req.URL())
	if err != nil {
		return "", errors.Wrapf(err, "parsing request url %q", req.URL())
	}

	// A report URI without a host is path-only and counts as cross-origin.
	if reportURL.Host != "" && sameOrigin(reportURL, requestURL) {
		return reportURI, nil
	}
	if forward {
		return ForwardReportPath, nil
	}
	return "", nil
}

// sameOrigin compares scheme, host and port verbatim. Default ports are not
// normalized: https://x and https://x:443 are different origins here.
func sameOrigin(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Hostname() == b.Hostname() && a.Port() == b.Port()
}
