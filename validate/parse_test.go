package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	policy, err := ParsePolicy("default-src 'self'; script-src https://cdn.example.com 'unsafe-inline' 'nonce-abc'; img-src data: *.example.com; report-uri /csp_reports; upgrade-insecure-requests;")
	require.NoError(t, err)

	require.Contains(t, policy.Directives, "default-src")
	assert.True(t, policy.Directives["default-src"].Self)

	script := policy.Directives["script-src"]
	require.NotNil(t, script)
	assert.True(t, script.UnsafeInline)
	assert.True(t, script.Nonces["abc"])
	assert.Equal(t, []string{"https://cdn.example.com"}, script.SrcHosts)

	img := policy.Directives["img-src"]
	require.NotNil(t, img)
	assert.True(t, img.Schemes["data:"])
	assert.Len(t, img.Hosts, 1)

	assert.Equal(t, "/csp_reports", policy.ReportURI)
	assert.True(t, policy.UpgradeInsecureRequests)
	assert.False(t, policy.BlockAllMixedContent)
}

func TestParsePolicyLegacyTokens(t *testing.T) {
	policy, err := ParsePolicy("allow 'self'; script-src inline-script eval-script;")
	require.NoError(t, err)

	// "allow" is the legacy spelling of default-src.
	require.Contains(t, policy.Directives, "default-src")
	assert.True(t, policy.Directives["default-src"].Self)

	script := policy.Directives["script-src"]
	assert.True(t, script.UnsafeInline)
	assert.True(t, script.UnsafeEval)
}

func TestParsePolicyHashes(t *testing.T) {
	policy, err := ParsePolicy("script-src 'sha256-abcd' 'sha384-efgh' 'sha512-ijkl';")
	require.NoError(t, err)

	script := policy.Directives["script-src"]
	require.Len(t, script.Hashes, 3)
	assert.Equal(t, "abcd", script.Hashes[0].Value)
	assert.Equal(t, "efgh", script.Hashes[1].Value)
	assert.Equal(t, "ijkl", script.Hashes[2].Value)
}

func TestParsePolicyNone(t *testing.T) {
	policy, err := ParsePolicy("object-src 'none';")
	require.NoError(t, err)
	assert.True(t, policy.Directives["object-src"].None)
}

func TestParsePolicyUnknownKeyword(t *testing.T) {
	_, err := ParsePolicy("script-src 'bogus-keyword';")
	assert.Error(t, err)
}

func TestParsePolicySchemeQualifiedHost(t *testing.T) {
	policy, err := ParsePolicy("frame-src https://frames.example.com;")
	require.NoError(t, err)

	frame := policy.Directives["frame-src"]
	require.Len(t, frame.Hosts, 1)
	assert.Equal(t, "https", frame.Hosts[0].Scheme)
	assert.True(t, frame.Hosts[0].Pattern.Match("frames.example.com"))
	assert.False(t, frame.Hosts[0].Pattern.Match("other.example.com"))
}
