package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-u", "admin", "--email", "admin@example.com", "-p", "secreto123", "--migrate"})
	require.NoError(t, err)
	assert.Equal(t, "admin", opts.username)
	assert.Equal(t, "admin@example.com", opts.email)
	assert.Equal(t, "secreto123", opts.password)
	assert.True(t, opts.migrate)
}

func TestParseFlagsPasswordFromEnv(t *testing.T) {
	t.Setenv(passwordEnv, "desdeEnv123")
	opts, err := parseFlags([]string{"--username", "admin", "--email", "admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "desdeEnv123", opts.password)
}

func TestParseFlagsMissing(t *testing.T) {
	t.Setenv(passwordEnv, "")
	_, err := parseFlags([]string{"--username", "admin"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--nope"})
	assert.Error(t, err)
}
