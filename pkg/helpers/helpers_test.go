package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("a-secret", "r-secret", time.Minute, time.Hour, "social")

	access, aexp, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "social", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)

	refresh, _, err := m.GenerateRefreshToken("u1", "s1")
	require.NoError(t, err)
	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("a-secret", "r-secret", -time.Hour, time.Hour, "social")
	expired, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.Error(t, err)

	valid := jwt.RegisteredClaims{Issuer: "social", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{SessionID: "s1", Kind: tokenAccess, RegisteredClaims: valid})
	s, err = noUser.SignedString(m.AccessSecret)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := valid
	foreign.Issuer = "someone-else"
	s, err = jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1", Kind: tokenAccess, RegisteredClaims: foreign}).SignedString(m.AccessSecret)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTKindsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("same", "same", time.Minute, time.Hour, "social")
	access, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
	assert.Equal(t, "", BearerToken(""))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))
	assert.False(t, CompareHashAndPassword("", ""))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestObjectPaths(t *testing.T) {
	assert.Equal(t, "avatars/u1/abc.jpg", ObjectPath("avatars", "u1", "abc", "Photo.JPG"))
	assert.Equal(t, "posts/u1/abc", ObjectPath("posts", "u1", "abc", "noext"))
	assert.Equal(t, "https://storage.googleapis.com/b/avatars/u1/abc.jpg", PublicURL("b", "avatars/u1/abc.jpg"))
	assert.Nil(t, NewGCSUploader(nil, "bucket"))
}

func TestIsImageContentType(t *testing.T) {
	assert.True(t, IsImageContentType("image/png"))
	assert.True(t, IsImageContentType(" IMAGE/JPEG "))
	assert.False(t, IsImageContentType("image/"))
	assert.False(t, IsImageContentType("application/pdf"))
	assert.False(t, IsImageContentType(""))
}

func TestCookiePair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	m := NewCookie("example.com", true)
	m.SetPair(c, "acc", time.Now().Add(time.Minute), "ref", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessCookie, cookies[0].Name)
	assert.Equal(t, "acc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, RefreshCookie, cookies[1].Name)
	assert.Greater(t, cookies[1].MaxAge, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	m.Clear(c)
	for _, ck := range w.Result().Cookies() {
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "user:session:u1", SessionKey("u1"))
	assert.Equal(t, "pwd:reset:token:t", ResetTokenKey("t"))
}
