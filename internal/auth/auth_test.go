package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 60)

	token, err := svc.GenerateToken("user-1", "ana@uni.edu", "student")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@uni.edu", claims.Email)
	assert.Equal(t, "student", claims.Role)

	identity, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", 60)
	token, err := svc.GenerateToken("user-1", "ana@uni.edu", "student")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTService("other-secret", 60).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService("test-secret", 60)
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidPassword)
}

type stubVerifier struct {
	identity *Identity
}

func (s stubVerifier) VerifyToken(context.Context, string) (*Identity, error) {
	if s.identity == nil {
		return nil, ErrInvalidToken
	}
	return s.identity, nil
}

func TestChainVerifier(t *testing.T) {
	ctx := context.Background()
	chain := NewChainVerifier(stubVerifier{}, stubVerifier{identity: &Identity{UserID: "u2"}})

	identity, err := chain.VerifyToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u2", identity.UserID)

	_, err = chain.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewChainVerifier(stubVerifier{}).VerifyToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNoVerifierAccept)
}

func TestTurnstileVerifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer server.Close()

	v := NewTurnstileVerifier("secret")
	v.verifyURL = server.URL
	ctx := context.Background()

	assert.NoError(t, v.Verify(ctx, "good", "127.0.0.1"))
	assert.ErrorIs(t, v.Verify(ctx, "bad", ""), ErrBotCheckFailed)
	assert.ErrorIs(t, v.Verify(ctx, "", ""), ErrBotCheckFailed)
	assert.NoError(t, NoopBotVerifier{}.Verify(ctx, "", ""))
}
