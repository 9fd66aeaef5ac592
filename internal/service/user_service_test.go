package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubtix/internal/model"
	"clubtix/internal/repo"
)

func profileFixture(accountType string) *fakeRepo {
	desc := "Coffee enjoyer"
	return &fakeRepo{
		getUserByUsername: func(_ context.Context, username string) (*model.User, error) {
			if username != "bob" {
				return nil, repo.ErrUserNotFound
			}
			return &model.User{ID: 2, Username: "bob", FirstName: "Bob", LastName: "Stone", AccountType: accountType}, nil
		},
		getProfileByUser: func(_ context.Context, userID int64) (*model.Profile, error) {
			return &model.Profile{
				ID:          20,
				UserID:      userID,
				Course:      "Physics",
				Year:        2,
				Description: &desc,
				Verified:    true,
			}, nil
		},
	}
}

func getPublicProfile(t *testing.T, f *fakeRepo) map[string]any {
	t.Helper()
	s := newTestService(t, f)
	c, w := testContext(t, http.MethodGet, "/v1/users/bob/", nil)
	asUser(c, 1)
	setParam(c, "username", "bob")

	s.GetPublicProfile(c)

	require.Equal(t, http.StatusOK, w.Code)
	return dataMap(t, w)
}

func TestPublicProfileVisibleToAnyone(t *testing.T) {
	data := getPublicProfile(t, profileFixture(model.AccountPublic))

	assert.Equal(t, "Bob", data["first_name"])
	assert.Equal(t, "Stone", data["last_name"])
	assert.Equal(t, "Physics", data["course"])
	assert.Equal(t, float64(2), data["year"])
	assert.Equal(t, true, data["verified"])
}

func TestPrivateProfileHiddenFromStrangers(t *testing.T) {
	f := profileFixture(model.AccountPrivate)
	f.areFriends = func(context.Context, int64, int64) (bool, error) { return false, nil }

	data := getPublicProfile(t, f)

	assert.Equal(t, "Bob", data["first_name"])
	assert.Nil(t, data["course"])
	assert.Nil(t, data["year"])
	assert.Nil(t, data["profile_picture"])
	assert.Nil(t, data["verified"])
}

func TestPrivateProfileVisibleToFriends(t *testing.T) {
	f := profileFixture(model.AccountPrivate)
	f.areFriends = func(context.Context, int64, int64) (bool, error) { return true, nil }

	data := getPublicProfile(t, f)

	assert.Equal(t, "Physics", data["course"])
	assert.Equal(t, float64(2), data["year"])
}

// Closed accounts show a placeholder name and null profile fields to
// everyone, accepted friends included.
func TestClosedProfileShowsPlaceholder(t *testing.T) {
	f := profileFixture(model.AccountClosed)
	f.areFriends = func(context.Context, int64, int64) (bool, error) {
		t.Fatal("friendship must not be consulted for closed accounts")
		return false, nil
	}
	f.getProfileByUser = func(context.Context, int64) (*model.Profile, error) {
		t.Fatal("profile must not be loaded for closed accounts")
		return nil, nil
	}

	data := getPublicProfile(t, f)

	assert.Equal(t, "Closed", data["first_name"])
	assert.Equal(t, "Account", data["last_name"])
	assert.Nil(t, data["course"])
	assert.Nil(t, data["description"])
}

func TestPublicProfileUnknownUser(t *testing.T) {
	s := newTestService(t, profileFixture(model.AccountPublic))
	c, w := testContext(t, http.MethodGet, "/v1/users/nobody/", nil)
	asUser(c, 1)
	setParam(c, "username", "nobody")

	s.GetPublicProfile(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
