package csp

// fillDirectives enriches the normalized directive map in place: default-src
// propagation, chrome-extension: augmentation, http additions on plain-HTTP
// requests, then filtering down to the dialect's supported set. Propagation
// runs first so filled-in directives also receive the later steps.
func fillDirectives(directives DirectiveMap, strategy *Strategy, opts *Options, ssl bool) DirectiveMap {
	if !opts.DisableFillMissing {
		if defaults, ok := directives[DefaultSrc]; ok {
			for _, d := range strategy.SupportedDirectives() {
				if _, present := directives[d]; !present {
					directives[d] = append([]string(nil), defaults...)
				}
			}
		}
	}

	if !opts.DisableChromeExtension {
		for d, tokens := range directives {
			if !containsToken(tokens, SchemeChromeExtension) {
				directives[d] = append(tokens, SchemeChromeExtension)
			}
		}
	}

	if !ssl {
		for name, token := range opts.HTTPAdditions {
			d, ok := parseDirective(name)
			if !ok {
				continue
			}
			directives[d] = append(directives[d], token)
		}
	}

	// Filtering runs last and unconditionally, so neither propagation nor
	// additions can leave a directive the dialect does not understand.
	for d := range directives {
		if !strategy.Supports(d) {
			delete(directives, d)
		}
	}
	return directives
}
