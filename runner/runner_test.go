package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secinto/csp-compiler/csp"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "csp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
browser: firefox
url: https://app.example/
csp:
  default_src: "https:"
  script_src:
    - "'self'"
    - https://cdn.example.com
  report_uri: /csp_reports
  forward_endpoint: true
`)
	settings, err := loadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "firefox", settings.Browser)
	assert.Equal(t, csp.SourceList{"https:"}, settings.CSP.DefaultSrc)
	assert.Equal(t, csp.SourceList{"'self'", "https://cdn.example.com"}, settings.CSP.ScriptSrc)
	assert.Equal(t, "/csp_reports", settings.CSP.ReportURI)
	assert.True(t, settings.CSP.ForwardEndpoint)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewFallsBackToSettings(t *testing.T) {
	path := writeSettings(t, `
browser: webkit
url: https://app.example/
csp:
  default_src: "'self'"
`)
	r, err := New(&Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "webkit", r.options.Browser)
	assert.Equal(t, "https://app.example/", r.options.RequestURL)
}
