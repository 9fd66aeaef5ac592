package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/repo"
)

func transferFixture(ticketStatus string) *fakeRepo {
	return &fakeRepo{
		getUserByUsername: func(_ context.Context, username string) (*model.User, error) {
			switch username {
			case "alice":
				return &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}, nil
			case "bob":
				return &model.User{ID: 2, Username: "bob", Email: "bob@example.com"}, nil
			}
			return nil, repo.ErrUserNotFound
		},
		getUserByID: func(_ context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
		},
		getTicketByID: func(_ context.Context, id int64) (*model.Ticket, error) {
			return &model.Ticket{
				ID:      id,
				Title:   "Spring Ball",
				Price:   decimal.NewFromInt(10),
				Status:  ticketStatus,
				UserID:  1,
				EventID: 5,
			}, nil
		},
	}
}

func TestCreateTransferSuccess(t *testing.T) {
	f := transferFixture(model.TicketActive)
	var sender, receiver, ticket int64
	f.createTransfer = func(_ context.Context, s, r, tk int64) (int64, error) {
		sender, receiver, ticket = s, r, tk
		return 30, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/", dto.CreateTransferRequest{Receiver: "bob", TicketID: 11})
	asUser(c, 1)

	s.CreateTransfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), sender)
	assert.Equal(t, int64(2), receiver)
	assert.Equal(t, int64(11), ticket)
}

func TestCreateTransferNotOwner(t *testing.T) {
	s := newTestService(t, transferFixture(model.TicketActive))
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/", dto.CreateTransferRequest{Receiver: "bob", TicketID: 11})
	asUser(c, 3)

	s.CreateTransfer(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateTransferUsedTicket(t *testing.T) {
	s := newTestService(t, transferFixture(model.TicketUsed))
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/", dto.CreateTransferRequest{Receiver: "bob", TicketID: 11})
	asUser(c, 1)

	s.CreateTransfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.TicketNotActive, errorCode(t, w))
}

func TestCreateTransferDuplicate(t *testing.T) {
	f := transferFixture(model.TicketActive)
	f.createTransfer = func(context.Context, int64, int64, int64) (int64, error) {
		return 0, repo.ErrDuplicateTransfer
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/", dto.CreateTransferRequest{Receiver: "bob", TicketID: 11})
	asUser(c, 1)

	s.CreateTransfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.TransferDuplicate, errorCode(t, w))
}

func TestAcceptTransferReissuesTicket(t *testing.T) {
	f := transferFixture(model.TicketActive)
	f.getTransferByID = func(_ context.Context, id int64) (*model.TransferRequest, error) {
		return &model.TransferRequest{ID: id, SenderID: 1, ReceiverID: 2, TicketID: 11, Status: model.TransferPending}, nil
	}
	var newCode string
	f.acceptTransferTx = func(_ context.Context, requestID, receiverID int64, code string, qrGen func(int64) (string, error)) (int64, error) {
		assert.Equal(t, int64(30), requestID)
		assert.Equal(t, int64(2), receiverID)
		newCode = code
		_, err := qrGen(77)
		require.NoError(t, err)
		return 77, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/30/accept/", nil)
	asUser(c, 2)
	setParam(c, "id", "30")

	s.AcceptTransfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, newCode, 20)
}

func TestAcceptTransferErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no longer pending", repo.ErrTransferNotPending, http.StatusBadRequest, dto.FieldIncorrect},
		{"ticket no longer active", repo.ErrTicketNotActive, http.StatusBadRequest, dto.TicketNotActive},
		{"receiver already has a ticket", repo.ErrReceiverHasTicket, http.StatusBadRequest, dto.TicketDuplicate},
		{"request gone", repo.ErrTransferNotFound, http.StatusNotFound, dto.TransferNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := transferFixture(model.TicketActive)
			f.getTransferByID = func(_ context.Context, id int64) (*model.TransferRequest, error) {
				return &model.TransferRequest{ID: id, SenderID: 1, ReceiverID: 2, TicketID: 11, Status: model.TransferPending}, nil
			}
			f.acceptTransferTx = func(context.Context, int64, int64, string, func(int64) (string, error)) (int64, error) {
				return 0, tt.err
			}

			s := newTestService(t, f)
			c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/30/accept/", nil)
			asUser(c, 2)
			setParam(c, "id", "30")

			s.AcceptTransfer(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestDeclineTransferNotFound(t *testing.T) {
	f := transferFixture(model.TicketActive)
	f.declineTransfer = func(context.Context, int64, int64) error {
		return repo.ErrTransferNotFound
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/transfer-requests/30/decline/", nil)
	asUser(c, 2)
	setParam(c, "id", "30")

	s.DeclineTransfer(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.TransferNotFound, errorCode(t, w))
}

func TestCanAcceptTransfer(t *testing.T) {
	f := transferFixture(model.TicketActive)
	f.getTransferByID = func(_ context.Context, id int64) (*model.TransferRequest, error) {
		return &model.TransferRequest{ID: id, SenderID: 1, ReceiverID: 2, TicketID: 11, Status: model.TransferPending}, nil
	}
	f.userHasTicket = func(context.Context, int64, int64) (bool, error) { return true, nil }

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodGet, "/v1/transfer-requests/30/can-accept/", nil)
	asUser(c, 2)
	setParam(c, "id", "30")

	s.CanAcceptTransfer(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w)
	assert.Equal(t, false, data["can_accept_transfer"])
}
