package validate

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"
)

const fetchTimeout = 5 * time.Second

// FetchPage retrieves a page, following HTML meta-refresh redirects, and
// returns the served Content-Security-Policy header value, the body and the
// final URL.
func FetchPage(address string) (string, string, *url.URL, error) {
	client := &http.Client{Timeout: fetchTimeout}

	req, err := http.NewRequest(http.MethodGet, address, nil)
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "creating request for %s", address)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "requesting %s", address)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "reading response from %s", address)
	}

	if target, ok := metaRefreshTarget(string(body)); ok {
		parsed, err := url.Parse(target)
		if err != nil {
			gologger.Debug().Msgf("Ignoring unparsable meta refresh target %s: %s", target, err)
		} else {
			followed := req.URL.ResolveReference(parsed)
			gologger.Debug().Msgf("Following meta refresh to %s", followed)
			return FetchPage(followed.String())
		}
	}

	return resp.Header.Get("Content-Security-Policy"), string(body), resp.Request.URL, nil
}

// metaRefreshTarget extracts the url= target of a <meta http-equiv=refresh>
// tag, if the document carries one.
func metaRefreshTarget(body string) (string, bool) {
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	for _, node := range htmlquery.Find(doc, "//meta[@http-equiv]") {
		refresh := false
		target := ""
		for _, attr := range node.Attr {
			switch strings.ToLower(attr.Key) {
			case "http-equiv":
				refresh = strings.EqualFold(attr.Val, "refresh")
			case "content":
				for _, part := range strings.Split(attr.Val, ";") {
					part = strings.TrimSpace(part)
					if strings.HasPrefix(strings.ToLower(part), "url=") {
						target = part[len("url="):]
					}
				}
			}
		}
		if refresh && target != "" {
			return target, true
		}
	}
	return "", false
}
