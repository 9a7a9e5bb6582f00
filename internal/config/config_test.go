package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		EnvAccountSID: "AC123",
		EnvAuthToken:  "secret",
		EnvNumber:     "+15550000000",
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(validEnv()))
	require.NoError(t, err)

	assert.Equal(t, "AC123", cfg.AccountSID)
	assert.Equal(t, "secret", cfg.AuthToken)
	assert.Equal(t, "+15550000000", cfg.PhoneNumber)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Zero(t, cfg.VendorTimeout)
}

func TestFromLookup_MissingRequired(t *testing.T) {
	for _, key := range []string{EnvAccountSID, EnvAuthToken, EnvNumber} {
		t.Run(key, func(t *testing.T) {
			env := validEnv()
			delete(env, key)

			_, err := FromLookup(lookupFrom(env))
			require.Error(t, err)

			var missing *MissingError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, key, missing.Key)
			assert.Contains(t, err.Error(), "must be provided")
		})
	}
}

func TestFromLookup_EmptyCountsAsMissing(t *testing.T) {
	env := validEnv()
	env[EnvAuthToken] = "   "

	_, err := FromLookup(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAuthToken)
}

func TestFromLookup_AllMissingReportedTogether(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{}))
	require.Error(t, err)

	for _, key := range []string{EnvAccountSID, EnvAuthToken, EnvNumber} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"3000", 3000, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"65536", 0, true},
		{"abc", 0, true},
		{"30.5", 0, true},
		{"3000abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePort(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "between 1 and 65535")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromLookup_InvalidPort(t *testing.T) {
	env := validEnv()
	env[EnvPort] = "99999"

	_, err := FromLookup(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestFromLookup_Optional(t *testing.T) {
	env := validEnv()
	env[EnvPort] = "8080"
	env[EnvAPIBaseURL] = "http://localhost:9999/"
	env[EnvTimeout] = "15s"

	cfg, err := FromLookup(lookupFrom(env))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:9999", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.VendorTimeout)
}

func TestFromLookup_InvalidTimeout(t *testing.T) {
	env := validEnv()
	env[EnvTimeout] = "soon"

	_, err := FromLookup(lookupFrom(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	for _, key := range []string{EnvAccountSID, EnvAuthToken, EnvNumber, EnvPort, EnvAPIBaseURL, EnvTimeout} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "TWILIO_ACCOUNT_SID=ACfile\nTWILIO_AUTH_TOKEN=filetoken\nTWILIO_NUMBER=+15551112222\nPORT=4000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ACfile", cfg.AccountSID)
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed loading env file")
}
