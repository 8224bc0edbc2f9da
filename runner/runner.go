package runner

import (
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"
	"gopkg.in/yaml.v3"

	"github.com/secinto/csp-compiler/csp"
	"github.com/secinto/csp-compiler/validate"
)

// Settings is the on-disk configuration: the policy plus tool defaults.
type Settings struct {
	CSP     csp.Options `yaml:"csp"`
	Browser string      `yaml:"browser,omitempty"`
	URL     string      `yaml:"url,omitempty"`
}

// Runner compiles the configured policy and optionally checks target pages
// against it.
type Runner struct {
	options  *Options
	settings *Settings
}

func New(options *Options) (*Runner, error) {
	settings, err := loadSettings(options.ConfigFile)
	if err != nil {
		return nil, err
	}
	if options.Browser == "" {
		options.Browser = settings.Browser
	}
	if options.RequestURL == "" {
		options.RequestURL = settings.URL
	}
	if options.RequestURL == "" {
		options.RequestURL = "https://localhost/"
	}
	return &Runner{options: options, settings: settings}, nil
}

func loadSettings(location string) (*Settings, error) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "reading configuration %s", location)
	}
	settings := &Settings{}
	if err := yaml.Unmarshal(raw, settings); err != nil {
		return nil, errors.Wrapf(err, "parsing configuration %s", location)
	}
	return settings, nil
}

//-------------------------------------------
//			Main functions methods
//-------------------------------------------

// Run compiles the header and, when targets are configured, checks each
// target page against the compiled policy.
func (r *Runner) Run() error {
	family := csp.ParseBrowserFamily(r.options.Browser)
	request := csp.RequestInfo{
		SSL:        strings.HasPrefix(r.options.RequestURL, "https://"),
		RequestURL: r.options.RequestURL,
	}

	opts := &r.settings.CSP
	if r.options.Experimental {
		opts = opts.ExperimentalVariant()
	}

	header, err := csp.Compile(opts, request, family)
	if err != nil {
		return err
	}
	gologger.Silent().Msgf("%s: %s", header.Name, header.Value)

	if r.options.TargetsFile == "" {
		return nil
	}
	return r.checkTargets(header.Value)
}

// checkTargets fetches every target page and validates its content against
// the compiled policy.
func (r *Runner) checkTargets(headerValue string) error {
	policy, err := validate.ParsePolicy(headerValue)
	if err != nil {
		return errors.Wrap(err, "parsing compiled policy")
	}

	raw, err := os.ReadFile(r.options.TargetsFile)
	if err != nil {
		return errors.Wrapf(err, "reading targets %s", r.options.TargetsFile)
	}

	for _, target := range strings.Split(string(raw), "\n") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if !strings.Contains(target, "://") {
			target = "https://" + target
		}
		r.checkTarget(policy, target)
	}
	return nil
}

func (r *Runner) checkTarget(policy *validate.Policy, target string) {
	gologger.Info().Msgf("Checking target %s", target)

	served, body, finalURL, err := validate.FetchPage(target)
	if err != nil {
		gologger.Error().Msgf("No response for %s: %s", target, err)
		return
	}
	if served != "" {
		gologger.Debug().Msgf("Target currently serves: %s", served)
	}

	page, err := url.Parse(finalURL.String())
	if err != nil {
		gologger.Error().Msgf("Could not parse final url for %s: %s", target, err)
		return
	}

	valid, reports, err := validate.ValidatePage(policy, *page, strings.NewReader(body))
	if err != nil {
		gologger.Error().Msgf("Could not validate %s: %s", target, err)
		return
	}
	if valid {
		gologger.Info().Msgf("[OK] Policy does not block anything on %s", target)
		return
	}
	for _, report := range reports {
		gologger.Info().Msgf("[FAIL] %s", report)
	}
}
