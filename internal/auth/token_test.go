package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/improvement-board/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:           "user-1",
		Email:        "hong@company.com",
		Role:         domain.RoleEmployee,
		DepartmentID: "dept-prod",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)

	token, exp, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "hong@company.com", claims.Email)
	assert.Equal(t, domain.RoleEmployee, claims.Role)
	assert.Equal(t, "dept-prod", claims.DepartmentID)
	assert.Equal(t, domain.TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)

	access, _, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)
	refresh, _, err := tm.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	_, err = tm.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := tm.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenTypeRefresh, claims.TokenType)
}

func TestRefreshTokenTTL(t *testing.T) {
	tm := NewTokenManager("a", "b", time.Hour, 7*24*time.Hour)

	_, exp, err := tm.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	ttl := time.Until(exp)
	assert.Greater(t, ttl, 7*24*time.Hour-time.Minute)
	assert.LessOrEqual(t, ttl, 7*24*time.Hour)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("a", "b", time.Hour, 7*24*time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }

	token, _, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedAndForeignTokensRejected(t *testing.T) {
	tm := NewTokenManager("a", "b", time.Hour, time.Hour)
	other := NewTokenManager("x", "y", time.Hour, time.Hour)

	foreign, _, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", foreign} {
		_, err := tm.ParseAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	require.NoError(t, err)

	assert.True(t, PasswordMatches(hash, "password123"))
	assert.False(t, PasswordMatches(hash, "wrong"))
	assert.False(t, PasswordMatches("", "password123"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("password123", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
