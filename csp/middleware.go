package csp

import (
	"encoding/json"
	"net/http"
)

const reportOnlySuffix = "-Report-Only"

// Classifier resolves the browser family of an incoming request. The
// package deliberately ships no user-agent sniffing; wire your own.
type Classifier func(*http.Request) BrowserFamily

// Middleware compiles the policy per request and sets the dialect header on
// the response. Policies that do not enforce are emitted report-only; an
// experimental section is additionally emitted as a report-only header next
// to an enforced one. A compile failure leaves the response without a CSP
// header rather than failing the request.
func Middleware(opts *Options, classify Classifier) func(http.Handler) http.Handler {
	if classify == nil {
		classify = func(*http.Request) BrowserFamily { return FamilyStandard }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			family := classify(r)
			policy := NewPolicy(opts, RequestFromHTTP(r), family)
			if value, err := policy.Value(); err == nil {
				name := policy.HeaderName()
				if !policy.Enforce() {
					name += reportOnlySuffix
				}
				w.Header().Set(name, value)
			}

			if opts != nil && opts.Experimental != nil && opts.Enforce {
				experimental := NewPolicy(opts.ExperimentalVariant(), RequestFromHTTP(r), family)
				if value, err := experimental.Value(); err == nil {
					w.Header().Set(experimental.HeaderName()+reportOnlySuffix, value)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestFromHTTP adapts an *http.Request to the compiler's request view.
func RequestFromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) IsSSL() bool {
	return h.r.TLS != nil
}

func (h httpRequest) URL() string {
	scheme := "http"
	if h.r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + h.r.Host + h.r.URL.RequestURI()
}

// ViolationReport is the payload browsers POST to the report endpoint.
type ViolationReport struct {
	DocumentURI        string `json:"document-uri"`
	Referrer           string `json:"referrer"`
	BlockedURI         string `json:"blocked-uri"`
	ViolatedDirective  string `json:"violated-directive"`
	EffectiveDirective string `json:"effective-directive"`
	OriginalPolicy     string `json:"original-policy"`
	ScriptSample       string `json:"script-sample"`
	StatusCode         int    `json:"status-code"`
}

type violationReportWrapper struct {
	Report ViolationReport `json:"csp-report"`
}

// ReportHandler decodes violation reports, typically mounted on
// ForwardReportPath so forwarded cross-origin reports land here too.
func ReportHandler(handle func(ViolationReport)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			_ = r.Body.Close()
		}()
		var wrapper violationReportWrapper
		if err := json.NewDecoder(r.Body).Decode(&wrapper); err != nil {
			http.Error(w, "could not parse violation report", http.StatusBadRequest)
			return
		}
		handle(wrapper.Report)
		w.WriteHeader(http.StatusNoContent)
	})
}
