package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestTokenManager_RoundTrip 测试令牌签发与验证
func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := auth.NewTokenManager(testSecret, "eqms-test", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue("user-1", "Reviewer")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Reviewer", claims.Role)
	assert.Equal(t, "eqms-test", claims.Issuer)
}

// TestTokenManager_RejectsShortSecret 测试短密钥拒绝
func TestTokenManager_RejectsShortSecret(t *testing.T) {
	_, err := auth.NewTokenManager("short", "eqms-test", time.Hour)
	assert.Error(t, err)
}

// TestTokenManager_RejectsTamperedToken 测试篡改与异签名密钥
func TestTokenManager_RejectsTamperedToken(t *testing.T) {
	m1, err := auth.NewTokenManager(testSecret, "eqms-test", time.Hour)
	require.NoError(t, err)
	m2, err := auth.NewTokenManager("ffffffffffffffffffffffffffffffff", "eqms-test", time.Hour)
	require.NoError(t, err)

	token, err := m1.Issue("user-1", "Creator")
	require.NoError(t, err)

	_, err = m2.Validate(token)
	assert.Error(t, err)

	_, err = m1.Validate(token + "x")
	assert.Error(t, err)
}

// TestTokenManager_RejectsExpiredToken 测试过期令牌
func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	m, err := auth.NewTokenManager(testSecret, "eqms-test", time.Millisecond)
	require.NoError(t, err)

	token, err := m.Issue("user-1", "Creator")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = m.Validate(token)
	assert.Error(t, err)
}

// TestTokenManager_RejectsWrongIssuer 测试签发方不匹配
func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	issuerA, err := auth.NewTokenManager(testSecret, "issuer-a", time.Hour)
	require.NoError(t, err)
	issuerB, err := auth.NewTokenManager(testSecret, "issuer-b", time.Hour)
	require.NoError(t, err)

	token, err := issuerA.Issue("user-1", "Creator")
	require.NoError(t, err)

	_, err = issuerB.Validate(token)
	assert.Error(t, err)
}
