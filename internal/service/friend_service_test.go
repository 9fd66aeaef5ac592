package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/repo"
)

func friendFixture() *fakeRepo {
	return &fakeRepo{
		getUserByUsername: func(_ context.Context, username string) (*model.User, error) {
			switch username {
			case "alice":
				return &model.User{ID: 1, Username: "alice"}, nil
			case "bob":
				return &model.User{ID: 2, Username: "bob"}, nil
			}
			return nil, repo.ErrUserNotFound
		},
	}
}

func TestCreateFriendSendsRequest(t *testing.T) {
	f := friendFixture()
	f.getFriendBetween = func(context.Context, int64, int64) (*model.Friend, error) {
		return nil, repo.ErrFriendNotFound
	}
	var sender, receiver int64
	f.createFriend = func(_ context.Context, s, r int64) (*model.Friend, error) {
		sender, receiver = s, r
		return &model.Friend{ID: 10, SenderID: s, ReceiverID: r}, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/friends/", dto.CreateFriendRequest{Receiver: "bob"})
	asUser(c, 1)

	s.CreateFriend(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), sender)
	assert.Equal(t, int64(2), receiver)
	data := dataMap(t, w)
	assert.Equal(t, "False", data["status"])
	assert.Equal(t, "current", data["sender"])
}

// A request towards someone who already has a pending request to the
// caller accepts the existing friendship instead of creating a second row.
func TestCreateFriendAcceptsInverse(t *testing.T) {
	f := friendFixture()
	f.getFriendBetween = func(context.Context, int64, int64) (*model.Friend, error) {
		return &model.Friend{ID: 10, SenderID: 2, ReceiverID: 1, Status: false}, nil
	}
	var accepted int64
	f.acceptFriend = func(_ context.Context, id int64) error {
		accepted = id
		return nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/friends/", dto.CreateFriendRequest{Receiver: "bob"})
	asUser(c, 1)

	s.CreateFriend(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10), accepted)
	data := dataMap(t, w)
	assert.Equal(t, "True", data["status"])
}

func TestCreateFriendDuplicate(t *testing.T) {
	f := friendFixture()
	f.getFriendBetween = func(context.Context, int64, int64) (*model.Friend, error) {
		return &model.Friend{ID: 10, SenderID: 1, ReceiverID: 2, Status: false}, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/friends/", dto.CreateFriendRequest{Receiver: "bob"})
	asUser(c, 1)

	s.CreateFriend(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.FriendDuplicate, errorCode(t, w))
}

func TestCreateFriendSelf(t *testing.T) {
	s := newTestService(t, friendFixture())
	c, w := testContext(t, http.MethodPost, "/v1/friends/", dto.CreateFriendRequest{Receiver: "alice"})
	asUser(c, 1)

	s.CreateFriend(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.FieldIncorrect, errorCode(t, w))
}

func TestAcceptFriendRejectsOwnRequest(t *testing.T) {
	f := friendFixture()
	f.getFriendBetween = func(context.Context, int64, int64) (*model.Friend, error) {
		return &model.Friend{ID: 10, SenderID: 1, ReceiverID: 2, Status: false}, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/friends/bob/accept/", nil)
	asUser(c, 1)
	setParam(c, "username", "bob")

	s.AcceptFriend(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFriendshipStatus(t *testing.T) {
	tests := []struct {
		name       string
		friend     *model.Friend
		err        error
		wantStatus string
		wantSender string
	}{
		{
			name:       "no row",
			err:        repo.ErrFriendNotFound,
			wantStatus: "None",
			wantSender: "None",
		},
		{
			name:       "pending sent by caller",
			friend:     &model.Friend{ID: 10, SenderID: 1, ReceiverID: 2, Status: false},
			wantStatus: "False",
			wantSender: "current",
		},
		{
			name:       "accepted received by caller",
			friend:     &model.Friend{ID: 10, SenderID: 2, ReceiverID: 1, Status: true},
			wantStatus: "True",
			wantSender: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := friendFixture()
			f.getFriendBetween = func(context.Context, int64, int64) (*model.Friend, error) {
				return tt.friend, tt.err
			}

			s := newTestService(t, f)
			c, w := testContext(t, http.MethodGet, "/v1/friends/bob/status/", nil)
			asUser(c, 1)
			setParam(c, "username", "bob")

			s.FriendshipStatus(c)

			require.Equal(t, http.StatusOK, w.Code)
			data := dataMap(t, w)
			assert.Equal(t, tt.wantStatus, data["status"])
			assert.Equal(t, tt.wantSender, data["sender"])
		})
	}
}
