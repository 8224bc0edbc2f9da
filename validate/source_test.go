package validate

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestCheckNilDirectiveAllowsAll(t *testing.T) {
	var d *SourceDirective
	allowed, err := d.Check(&Policy{}, SourceContext{})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckNone(t *testing.T) {
	policy, err := ParsePolicy("script-src 'none';")
	require.NoError(t, err)

	allowed, err := policy.Directive("script-src").Check(policy, SourceContext{
		URL:  mustURL(t, "https://app.example/a.js"),
		Page: mustURL(t, "https://app.example/"),
	})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckSelf(t *testing.T) {
	policy, err := ParsePolicy("script-src 'self';")
	require.NoError(t, err)
	directive := policy.Directive("script-src")

	allowed, _ := directive.Check(policy, SourceContext{
		URL:  mustURL(t, "https://app.example/a.js"),
		Page: mustURL(t, "https://app.example/page"),
	})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{
		URL:  mustURL(t, "https://other.example/a.js"),
		Page: mustURL(t, "https://app.example/page"),
	})
	assert.False(t, allowed)

	// Scheme is part of the origin.
	allowed, _ = directive.Check(policy, SourceContext{
		URL:  mustURL(t, "http://app.example/a.js"),
		Page: mustURL(t, "https://app.example/page"),
	})
	assert.False(t, allowed)
}

func TestCheckSchemes(t *testing.T) {
	policy, err := ParsePolicy("img-src data: https:;")
	require.NoError(t, err)
	directive := policy.Directive("img-src")

	allowed, _ := directive.Check(policy, SourceContext{
		URL:  mustURL(t, "data:image/png;base64,xyz"),
		Page: mustURL(t, "https://app.example/"),
	})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{
		URL:  mustURL(t, "https://anything.example/x.png"),
		Page: mustURL(t, "https://app.example/"),
	})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{
		URL:  mustURL(t, "ftp://anything.example/x.png"),
		Page: mustURL(t, "https://app.example/"),
	})
	assert.False(t, allowed)
}

func TestCheckHostGlobs(t *testing.T) {
	policy, err := ParsePolicy("script-src *.example.com https://exact.example.org;")
	require.NoError(t, err)
	directive := policy.Directive("script-src")

	cases := []struct {
		url     string
		allowed bool
	}{
		{"https://cdn.example.com/a.js", true},
		{"http://cdn.example.com/a.js", true},
		{"https://deep.cdn.example.com/a.js", false},
		{"https://exact.example.org/a.js", true},
		{"http://exact.example.org/a.js", false},
		{"https://other.example.net/a.js", false},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			allowed, err := directive.Check(policy, SourceContext{
				URL:  mustURL(t, tc.url),
				Page: mustURL(t, "https://app.example/"),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestCheckInlineNonce(t *testing.T) {
	policy, err := ParsePolicy("script-src 'nonce-r4nd0m';")
	require.NoError(t, err)
	directive := policy.Directive("script-src")

	allowed, _ := directive.Check(policy, SourceContext{UnsafeInline: true, Nonce: "r4nd0m"})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{UnsafeInline: true, Nonce: "wrong"})
	assert.False(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{UnsafeInline: true})
	assert.False(t, allowed)
}

func TestCheckInlineHash(t *testing.T) {
	body := []byte("alert('hi')")
	digest := sha256.Sum256(body)
	encoded := base64.StdEncoding.EncodeToString(digest[:])

	policy, err := ParsePolicy(fmt.Sprintf("script-src 'sha256-%s';", encoded))
	require.NoError(t, err)
	directive := policy.Directive("script-src")

	allowed, _ := directive.Check(policy, SourceContext{UnsafeInline: true, Body: body})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{UnsafeInline: true, Body: []byte("alert('bye')")})
	assert.False(t, allowed)
}

func TestCheckUnsafeInlineAndEval(t *testing.T) {
	policy, err := ParsePolicy("script-src 'unsafe-inline' 'unsafe-eval';")
	require.NoError(t, err)
	directive := policy.Directive("script-src")

	allowed, _ := directive.Check(policy, SourceContext{UnsafeInline: true})
	assert.True(t, allowed)

	allowed, _ = directive.Check(policy, SourceContext{UnsafeEval: true})
	assert.True(t, allowed)
}

func TestDirectiveFallsBackToDefaultSrc(t *testing.T) {
	policy, err := ParsePolicy("default-src 'self';")
	require.NoError(t, err)

	assert.Same(t, policy.Directives["default-src"], policy.Directive("script-src"))
	assert.Nil(t, (&Policy{Directives: map[string]*SourceDirective{}}).Directive("script-src"))
}
