package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactorMasksSecretsAndHashesIdentity(t *testing.T) {
	r := &redactor{salt: "pepper"}
	out := r.sanitize([]interface{}{
		"access_token", "abc",
		"user_id", 42,
		"session", 7,
		"dangling",
	})

	require.Len(t, out, 7)
	require.Equal(t, "[REDACTED]", out[1])
	require.Equal(t, "session", out[4])
	require.Equal(t, 7, out[5])
	require.Equal(t, "dangling", out[6])

	hashed, ok := out[3].(string)
	require.True(t, ok)
	require.Regexp(t, `^hash:[0-9a-f]{12}$`, hashed)
	require.Equal(t, hashed, r.hash("42"), "hash must be stable for the same input")
}

func TestRedactorDetectsBareJWT(t *testing.T) {
	r := &redactor{}
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	out := r.sanitize([]interface{}{"header", jwtish})
	require.Equal(t, "[REDACTED]", out[1])
}

func TestNilRedactorPassesThrough(t *testing.T) {
	var r *redactor
	kv := []interface{}{"password", "hunter2"}
	require.Equal(t, kv, r.sanitize(kv))
}

func TestNewWithConfigRejectsUnknownLevel(t *testing.T) {
	_, err := NewWithConfig(Config{Mode: "development", Level: "loud"})
	require.Error(t, err)

	log, err := NewWithConfig(Config{Mode: "production", Level: "info", Redact: true})
	require.NoError(t, err)
	require.NotNil(t, log.With("component", "test"))
}
