package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(testSecret, "user-123", "STUDENT")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "STUDENT", claims.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(testSecret, "user-123", "STUDENT")
	require.NoError(t, err)

	_, err = ValidateJWT("other-secret", token)
	require.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT(testSecret, "not.a.token")
	require.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "user-123",
		"role": "STUDENT",
		"iat":  time.Now().Add(-8 * 24 * time.Hour).Unix(),
		"exp":  time.Now().Add(-24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateJWT(testSecret, token)
	require.Error(t, err)
}

func TestJWTRejectsMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"role": "STUDENT",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateJWT(testSecret, token)
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2!", hash)

	require.True(t, CheckPasswordHash("hunter2!", hash))
	require.False(t, CheckPasswordHash("wrong", hash))
}
