package main

import (
	"github.com/projectdiscovery/gologger"

	"github.com/secinto/csp-compiler/runner"
)

func main() {
	// Parse the command line flags and read config files
	options := runner.ParseOptions()

	r, err := runner.New(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create csp-compiler: %s\n", err)
	}

	if err := r.Run(); err != nil {
		gologger.Fatal().Msgf("Could not compile policy: %s\n", err)
	}
}
