package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubtix/internal/model"
)

func testUser() *model.User {
	sid := "c1234567"
	return &model.User{
		ID:          7,
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		StudentID:   &sid,
		FirstName:   "Jane",
		LastName:    "Doe",
		UserType:    model.UserTypeRegular,
		AccountType: model.AccountPublic,
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("sup3rsecret")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3rsecret", hash)

	assert.True(t, CheckPassword(hash, "sup3rsecret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenPairCarriesProfile(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	access, refresh, err := m.IssuePair(testUser(), true, "http://x/media/p.jpg", "jti-1")
	require.NoError(t, err)

	claims, err := m.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "Jane", claims.FirstName)
	assert.Equal(t, "Doe", claims.LastName)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, "c1234567", *claims.StudentID)
	assert.True(t, claims.Verified)
	assert.Equal(t, "http://x/media/p.jpg", claims.ProfilePicture)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	rc, err := m.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", rc.ID)
}

func TestTokenKindEnforced(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	access, refresh, err := m.IssuePair(testUser(), false, "", "jti-2")
	require.NoError(t, err)

	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	m := NewTokenManager("secret-a", time.Minute, time.Hour)
	other := NewTokenManager("secret-b", time.Minute, time.Hour)

	access, _, err := m.IssuePair(testUser(), false, "", "jti-3")
	require.NoError(t, err)

	_, err = other.ParseAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	access, _, err := m.IssuePair(testUser(), false, "", "jti-4")
	require.NoError(t, err)

	_, err = m.ParseAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
