package runner

import (
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
)

// Options are the command line options of the csp-compiler tool.
type Options struct {
	ConfigFile   string
	Browser      string
	RequestURL   string
	Experimental bool
	TargetsFile  string
	Verbose      bool
}

// ParseOptions parses the command line flags.
func ParseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Compile a Content-Security-Policy header for a browser dialect and optionally check target pages against it.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.ConfigFile, "config", "c", "csp.yaml", "policy configuration file"),
		flagSet.StringVarP(&options.Browser, "browser", "b", "", "browser family (standard, webkit, firefox)"),
		flagSet.StringVarP(&options.RequestURL, "url", "u", "", "request url the header is compiled for"),
		flagSet.BoolVar(&options.Experimental, "experimental", false, "compile the experimental policy variant"),
	)
	flagSet.CreateGroup("check", "Check",
		flagSet.StringVarP(&options.TargetsFile, "targets", "t", "", "file with target urls to check against the compiled policy"),
	)
	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "verbose output"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not parse flags: %s\n", err)
	}

	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	return options
}
