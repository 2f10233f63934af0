package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rit3sh-x/mongoschema/core/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		constants.DEBUG_ENV,
		constants.OUTPUT_DIR_ENV,
		constants.DB_MAX_CONNS_ENV,
		constants.DB_MIN_CONNS_ENV,
		constants.DATABASE_URI_ENV,
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, constants.SCHEMA_FILE, cfg.SchemaFile)
	assert.Equal(t, constants.OUTPUT_DIR, cfg.OutputDir)
	assert.Equal(t, []string{constants.GENERATOR_MONGOOSE, constants.GENERATOR_PRISMA}, cfg.Generators)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.EnvLoaded)
	assert.Equal(t, constants.DATABASE_URI_ENV, cfg.Database.URIEnv)
	assert.Empty(t, cfg.Database.URI)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "mongoschema.yaml", `
schema_file: design/schema.json
output_dir: out
generators:
  - prisma
  - mongodb
debug: true
database:
  max_conns: 8
  min_conns: 2
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "design/schema.json", cfg.SchemaFile)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{constants.GENERATOR_PRISMA, constants.GENERATOR_MONGODB}, cfg.Generators)
	assert.True(t, cfg.Debug)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.Equal(t, int32(2), cfg.Database.MinConns)
	assert.Equal(t, constants.DATABASE_URI_ENV, cfg.Database.URIEnv)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "mongoschema.yaml", "generators: [unclosed\n")

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "mongoschema.yaml", "output_dir: out\ndebug: true\n")

	t.Setenv(constants.OUTPUT_DIR_ENV, "elsewhere")
	t.Setenv(constants.DEBUG_ENV, "false")
	t.Setenv(constants.DB_MAX_CONNS_ENV, "12")
	t.Setenv(constants.DATABASE_URI_ENV, "postgres://localhost/designs")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "elsewhere", cfg.OutputDir)
	assert.False(t, cfg.Debug)
	assert.Equal(t, int32(12), cfg.Database.MaxConns)
	assert.Equal(t, "postgres://localhost/designs", cfg.Database.URI)
}

func TestInvalidDebugValue(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.DEBUG_ENV, "loud")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), constants.DEBUG_ENV)
}

func TestEnvFileWithCustomURIVariable(t *testing.T) {
	clearEnv(t)
	const uriEnv = "MONGOSCHEMA_TEST_STORE_URI"
	t.Cleanup(func() { os.Unsetenv(uriEnv) })

	dir := t.TempDir()
	configPath := writeFile(t, dir, "mongoschema.yaml", "database:\n  uri_env: "+uriEnv+"\n")
	envPath := writeFile(t, dir, ".env", uriEnv+"=postgres://db.internal/schemas\n")

	cfg, err := Load(configPath, envPath)
	require.NoError(t, err)

	assert.True(t, cfg.EnvLoaded)
	assert.Equal(t, uriEnv, cfg.Database.URIEnv)
	assert.Equal(t, "postgres://db.internal/schemas", cfg.Database.URI)
}
