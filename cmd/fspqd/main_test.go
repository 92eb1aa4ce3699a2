package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		setEnv   bool
		def      string
		expected string
	}{
		{name: "environment variable set", key: "FSPQD_TEST_VAR", value: "configured", setEnv: true, def: "default", expected: "configured"},
		{name: "environment variable not set", key: "FSPQD_TEST_UNSET", setEnv: false, def: "default_value", expected: "default_value"},
		{name: "empty environment variable returns default", key: "FSPQD_TEST_EMPTY", value: "", setEnv: true, def: "fallback", expected: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				os.Setenv(tt.key, tt.value)
				defer os.Unsetenv(tt.key)
			}
			require.Equal(t, tt.expected, getenv(tt.key, tt.def))
		})
	}
}

func TestBuildLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := buildLogger("not-a-level")
	require.Error(t, err)
}

func TestBuildLoggerAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := buildLogger(level)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}

func TestNewRootCmdDefaultsFromEnv(t *testing.T) {
	os.Setenv("FSPQD_LISTEN", ":9999")
	defer os.Unsetenv("FSPQD_LISTEN")

	cmd := newRootCmd()
	flag := cmd.Flags().Lookup("listen")
	require.NotNil(t, flag)
	require.Equal(t, ":9999", flag.DefValue)
}
