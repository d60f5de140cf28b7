package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenAndDecode(t *testing.T) {
	j := New("secret", time.Hour)
	identity := domain.Identity{Id: 7, Email: "luckyalade309@gmail.com"}

	token, err := j.NewToken(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := j.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity, session.Identity)
	assert.NotEmpty(t, session.TokenId)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 2*time.Second)
}

func TestTokensHaveDistinctIds(t *testing.T) {
	j := New("secret", time.Hour)
	identity := domain.Identity{Id: 1, Email: "a@b.com"}

	t1, err := j.NewToken(identity)
	require.NoError(t, err)
	t2, err := j.NewToken(identity)
	require.NoError(t, err)

	s1, err := j.DecodeToken(t1)
	require.NoError(t, err)
	s2, err := j.DecodeToken(t2)
	require.NoError(t, err)
	assert.NotEqual(t, s1.TokenId, s2.TokenId)
}

func TestDecodeToken_Errors(t *testing.T) {
	identity := domain.Identity{Id: 1, Email: "a@b.com"}

	t.Run("wrong key", func(t *testing.T) {
		token, err := New("one", time.Hour).NewToken(identity)
		require.NoError(t, err)

		_, err = New("two", time.Hour).DecodeToken(token)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, internal_errors.StatusCode(err))
	})

	t.Run("expired", func(t *testing.T) {
		j := New("secret", time.Minute)
		j.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := j.NewToken(identity)
		require.NoError(t, err)

		_, err = New("secret", time.Minute).DecodeToken(token)
		require.Error(t, err)
		assert.Equal(t, "Session expired", err.Error())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := New("secret", time.Hour).DecodeToken("not-a-token")
		require.Error(t, err)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"email": "a@b.com", "jti": "x", "exp": time.Now().Add(time.Hour).Unix()})
		str, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = New("secret", time.Hour).DecodeToken(str)
		require.Error(t, err)
	})
}
