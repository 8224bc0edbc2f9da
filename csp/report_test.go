package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appRequest = RequestInfo{SSL: true, RequestURL: "https://app.example/page"}

func TestReportURIUntouchedWithoutForwardingDialect(t *testing.T) {
	uri, err := resolveReportURI("https://other.example/r", appRequest, ResolveStrategy(FamilyStandard), true)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/r", uri)
}

func TestReportURISameOriginPassthrough(t *testing.T) {
	uri, err := resolveReportURI("https://app.example/csp_reports", appRequest, ResolveStrategy(FamilyFirefox), false)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/csp_reports", uri)
}

func TestReportURICrossOriginForwarded(t *testing.T) {
	uri, err := resolveReportURI("https://other.example/r", appRequest, ResolveStrategy(FamilyFirefox), true)
	require.NoError(t, err)
	assert.Equal(t, ForwardReportPath, uri)
}

func TestReportURICrossOriginDropped(t *testing.T) {
	uri, err := resolveReportURI("https://other.example/r", appRequest, ResolveStrategy(FamilyFirefox), false)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestReportURIPathOnlyIsCrossOrigin(t *testing.T) {
	uri, err := resolveReportURI("/csp_reports", appRequest, ResolveStrategy(FamilyFirefox), true)
	require.NoError(t, err)
	assert.Equal(t, ForwardReportPath, uri)
}

func TestReportURISchemeAndPortMatter(t *testing.T) {
	uri, err := resolveReportURI("http://app.example/r", appRequest, ResolveStrategy(FamilyFirefox), false)
	require.NoError(t, err)
	assert.Empty(t, uri)

	// Default ports are not normalized: an explicit :443 is a different
	// origin than the implicit one.
	uri, err = resolveReportURI("https://app.example:443/r", appRequest, ResolveStrategy(FamilyFirefox), false)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestReportURIMalformed(t *testing.T) {
	_, err := resolveReportURI("https://bad host/r", appRequest, ResolveStrategy(FamilyFirefox), true)
	assert.Error(t, err)
}

func TestReportURIEmptyIsNoop(t *testing.T) {
	uri, err := resolveReportURI("", appRequest, ResolveStrategy(FamilyFirefox), true)
	require.NoError(t, err)
	assert.Empty(t, uri)
}
