package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contentpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "khan/", cfg.RootPath)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 22, cfg.SFTP.Port)
	assert.Equal(t, "en.zip", cfg.OutputPath())
	assert.True(t, cfg.IsEnglish())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
language: es-ES
node_data: https://example.org/topictree.json
content_po: po/es.po
unavailable_paths:
  - khan/math/
  - khan/test-prep/
http:
  timeout: 5s
  max_attempts: 2
sftp:
  host: files.example.org
  user: uploader
`)
	t.Setenv("CONTENTPACK_LANG", "pt-BR")
	t.Setenv("SFTP_PORT", "2222")
	t.Setenv("CONTENTPACK_KEEP_EMPTY_TOPICS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pt-BR", cfg.Language, "env wins over file")
	assert.Equal(t, "https://example.org/topictree.json", cfg.NodeData)
	assert.Equal(t, "po/es.po", cfg.ContentPO)
	assert.Equal(t, []string{"khan/math/", "khan/test-prep/"}, cfg.UnavailablePaths)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.HTTP.MaxAttempts)
	assert.Equal(t, "files.example.org", cfg.SFTP.Host)
	assert.Equal(t, 2222, cfg.SFTP.Port)
	assert.True(t, cfg.KeepEmptyTopics)
	assert.Equal(t, "khan/", cfg.RootPath, "unset keys keep defaults")
	assert.False(t, cfg.IsEnglish())
	assert.Equal(t, "pt-BR.zip", cfg.OutputPath())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "language: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_EnvList(t *testing.T) {
	t.Setenv("CONTENTPACK_UNAVAILABLE_PATHS", " khan/a/ , ,khan/b/")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"khan/a/", "khan/b/"}, cfg.UnavailablePaths)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_data is required")

	cfg.NodeData = "nodes.json"
	assert.NoError(t, cfg.Validate())

	cfg.RootPath, cfg.RootTitle = "", ""
	cfg.HTTP.MaxAttempts = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root_path or root_title")
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestValidateSFTP(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateSFTP())

	cfg.SFTP.Host, cfg.SFTP.User = "h", "u"
	assert.NoError(t, cfg.ValidateSFTP())
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-an-int")
	assert.Equal(t, 42, getenvInt("TEST_INT", 42))

	t.Setenv("TEST_BOOL", "nope")
	assert.True(t, getenvBool("TEST_BOOL", true))

	t.Setenv("TEST_DURATION", "1m")
	assert.Equal(t, time.Minute, getenvDuration("TEST_DURATION", time.Second))

	assert.Equal(t, "def", getenv("TEST_UNSET_VALUE_XYZ", "def"))
}
