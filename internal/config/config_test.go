package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Auth:   AuthConfig{LoginRateLimit: 1, LoginBurst: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())

	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_LoginLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.LoginBurst = 0
	assert.Error(t, cfg.Validate())
}

func TestDataConfig_Paths(t *testing.T) {
	d := DataConfig{BasePath: "/var/lib/catalog"}
	assert.Equal(t, "/var/lib/catalog/catalog.db", d.SQLitePath())
	assert.Equal(t, "/var/lib/catalog/kv", d.KVPath())
	assert.Equal(t, "/var/lib/catalog/search.bleve", d.SearchPath())
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("LOAN_ENFORCE_RENEWAL_WINDOW", "")

	cfg, err := LoadConfig([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, dir, cfg.Data.BasePath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.True(t, cfg.Loans.EnforceRenewalWindow)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_FlagBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOAN_ENFORCE_RENEWAL_WINDOW", "true")

	cfg, err := LoadConfig([]string{
		"-data-path", dir,
		"-port", "9100",
		"-enforce-renewal-window", "false",
		"-env-file", filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.False(t, cfg.Loans.EnforceRenewalWindow)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig([]string{"-data-path", dir, "-read-timeout", "soon", "-env-file", filepath.Join(dir, "x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read timeout")
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "LocalLibrary", "data"), cfg.Data.BasePath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "~/library"}}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "library"), cfg.Data.BasePath)
}

func TestExpandDataPath_RelativePath(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "relative/dir"}}
	require.NoError(t, cfg.expandDataPath())
	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY_XYZ", "default-value"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("YES", "UNUSED_BOOL_KEY", false))
	assert.False(t, getBoolConfigValue("off", "UNUSED_BOOL_KEY", true))
	assert.True(t, getBoolConfigValue("", "UNUSED_BOOL_KEY", true))
	assert.False(t, getBoolConfigValue("0", "UNUSED_BOOL_KEY", true))
	assert.True(t, getBoolConfigValue("ture", "UNUSED_BOOL_KEY", true))
	assert.False(t, getBoolConfigValue("maybe", "UNUSED_BOOL_KEY", false))
}

func TestLoadConfig_MistypedRenewalWindowKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOAN_ENFORCE_RENEWAL_WINDOW", "ture")

	cfg, err := LoadConfig([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.True(t, cfg.Loans.EnforceRenewalWindow)
}

func TestGetNumericConfigValues(t *testing.T) {
	assert.Equal(t, 7, getIntConfigValue("7", "UNUSED_INT_KEY", 1))
	assert.Equal(t, 1, getIntConfigValue("seven", "UNUSED_INT_KEY", 1))
	assert.InDelta(t, 0.5, getFloatConfigValue("0.5", "UNUSED_FLOAT_KEY", 2), 0.0001)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
CATALOG_TEST_ENV=staging
CATALOG_TEST_LEVEL=debug
# Comment line
CATALOG_TEST_QUOTED="some value"
CATALOG_TEST_SINGLE='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, k := range []string{"CATALOG_TEST_ENV", "CATALOG_TEST_LEVEL", "CATALOG_TEST_QUOTED", "CATALOG_TEST_SINGLE"} {
		t.Setenv(k, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("CATALOG_TEST_ENV"))
	assert.Equal(t, "debug", os.Getenv("CATALOG_TEST_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("CATALOG_TEST_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("CATALOG_TEST_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("CATALOG_TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`CATALOG_TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("CATALOG_TEST_VAR"))
}

func TestLoadEnvFile_Whitespace(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`  CATALOG_KEY_WITH_SPACES  =  value with spaces  `), 0o644))
	t.Setenv("CATALOG_KEY_WITH_SPACES", "")

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "value with spaces", os.Getenv("CATALOG_KEY_WITH_SPACES"))
}
