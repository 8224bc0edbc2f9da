package validate

import (
	"crypto/sha256"
	"crypto/sha512"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// ParsePolicy parses a CSP header value into a matchable Policy. Directive
// clauses are semicolon-separated, tokens whitespace-separated.
func ParsePolicy(header string) (*Policy, error) {
	policy := &Policy{Directives: map[string]*SourceDirective{}}

	for _, clause := range strings.Split(header, ";") {
		tokens := strings.Fields(clause)
		if len(tokens) == 0 {
			continue
		}
		name := strings.ToLower(tokens[0])
		values := tokens[1:]

		switch name {
		case "upgrade-insecure-requests":
			policy.UpgradeInsecureRequests = true
		case "block-all-mixed-content":
			policy.BlockAllMixedContent = true
		case "report-uri":
			if len(values) == 0 {
				return nil, errors.New("report-uri clause without a value")
			}
			policy.ReportURI = values[0]
		case "allow":
			// Legacy spelling of default-src.
			directive, err := parseSourceDirective(values)
			if err != nil {
				return nil, errors.Wrap(err, "parsing allow clause")
			}
			policy.Directives["default-src"] = directive
		default:
			directive, err := parseSourceDirective(values)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s clause", name)
			}
			policy.Directives[name] = directive
		}
	}
	return policy, nil
}

func parseSourceDirective(values []string) (*SourceDirective, error) {
	directive := &SourceDirective{
		Nonces:  map[string]bool{},
		Schemes: map[string]bool{},
	}
	for _, value := range values {
		directive.ruleCount++
		switch {
		case value == "'none'":
			directive.None = true
		case value == "'self'":
			directive.Self = true
		case value == "'unsafe-inline'" || value == "inline-script":
			directive.UnsafeInline = true
		case value == "'unsafe-eval'" || value == "eval-script":
			directive.UnsafeEval = true
		case strings.HasPrefix(value, "'nonce-"):
			directive.Nonces[strings.TrimSuffix(strings.TrimPrefix(value, "'nonce-"), "'")] = true
		case strings.HasPrefix(value, "'sha256-"):
			directive.Hashes = append(directive.Hashes, HashSource{
				Algorithm: sha256.New,
				Value:     strings.TrimSuffix(strings.TrimPrefix(value, "'sha256-"), "'"),
			})
		case strings.HasPrefix(value, "'sha384-"):
			directive.Hashes = append(directive.Hashes, HashSource{
				Algorithm: sha512.New384,
				Value:     strings.TrimSuffix(strings.TrimPrefix(value, "'sha384-"), "'"),
			})
		case strings.HasPrefix(value, "'sha512-"):
			directive.Hashes = append(directive.Hashes, HashSource{
				Algorithm: sha512.New,
				Value:     strings.TrimSuffix(strings.TrimPrefix(value, "'sha512-"), "'"),
			})
		case strings.HasSuffix(value, ":") && !strings.Contains(value, "/"):
			directive.Schemes[strings.ToLower(value)] = true
		case strings.HasPrefix(value, "'"):
			return nil, errors.Errorf("unrecognized keyword source %q", value)
		default:
			host, err := parseHostSource(value)
			if err != nil {
				return nil, err
			}
			directive.Hosts = append(directive.Hosts, host)
			directive.SrcHosts = append(directive.SrcHosts, value)
		}
	}
	return directive, nil
}

func parseHostSource(value string) (HostSource, error) {
	scheme := ""
	hostPart := value
	if idx := strings.Index(value, "://"); idx >= 0 {
		scheme = strings.ToLower(value[:idx])
		hostPart = value[idx+3:]
	}
	// Ignore any path component for matching purposes.
	if idx := strings.Index(hostPart, "/"); idx >= 0 {
		hostPart = hostPart[:idx]
	}
	pattern, err := glob.Compile(strings.ToLower(hostPart), '.')
	if err != nil {
		return HostSource{}, errors.Wrapf(err, "compiling host pattern %q", value)
	}
	return HostSource{Scheme: scheme, Pattern: pattern, Raw: value}, nil
}
