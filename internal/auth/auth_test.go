package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaller(t *testing.T) {
	_, err := Caller(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithCaller(context.Background(), "user-1")
	id, err := Caller(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTarget(t *testing.T) {
	ctx := WithCaller(context.Background(), "user-1")

	id, err := Target(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id, "empty explicit target falls back to caller")

	id, err = Target(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", id)

	// Explicit target works without a caller; fallback does not
	id, err = Target(context.Background(), "user-3")
	require.NoError(t, err)
	assert.Equal(t, "user-3", id)

	_, err = Target(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)

	token := tokens.Mint("user-1")
	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokensRejects(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)

	other, err := NewTokens("other-secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no separator", token: "justonepart"},
		{name: "garbage signature", token: "dXNlci0x.!!!!"},
		{name: "wrong key", token: other.Mint("user-1")},
		{name: "tampered subject", token: "YXR0YWNrZXI" + tokens.Mint("user-1")[7:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("")
	assert.Error(t, err)
}
