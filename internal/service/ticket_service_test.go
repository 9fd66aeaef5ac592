package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/repo"
)

func issueFixture() *fakeRepo {
	return &fakeRepo{
		getUserByUsername: func(_ context.Context, username string) (*model.User, error) {
			if username != "jdoe" {
				return nil, repo.ErrUserNotFound
			}
			return &model.User{ID: 1, Username: "jdoe", Email: "jdoe@example.com"}, nil
		},
		getEventByID: func(_ context.Context, id int64) (*repo.EventRow, error) {
			return &repo.EventRow{
				Event: model.Event{
					ID:    id,
					Title: "Spring Ball",
					Price: decimal.NewFromInt(10),
				},
				ClubName: "Dance Society",
			}, nil
		},
	}
}

func TestIssueTicketSuccess(t *testing.T) {
	f := issueFixture()
	var issued *model.Ticket
	f.issueTicketTx = func(_ context.Context, tk *model.Ticket, qrGen func(int64) (string, error)) (int64, error) {
		issued = tk
		path, err := qrGen(42)
		require.NoError(t, err)
		tk.QRCode = &path
		return 42, nil
	}
	f.getTicketByID = func(_ context.Context, id int64) (*model.Ticket, error) {
		return &model.Ticket{ID: id, Title: "Spring Ball", Code: issued.Code, Status: model.TicketActive, UserID: 1, EventID: 5}, nil
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/tickets/", dto.IssueTicketRequest{Username: "jdoe", EventID: 5})
	asUser(c, 1)

	s.IssueTicket(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, issued)
	assert.Equal(t, int64(1), issued.UserID)
	assert.Equal(t, int64(5), issued.EventID)
	assert.Len(t, issued.Code, 20)
}

func TestIssueTicketDuplicate(t *testing.T) {
	f := issueFixture()
	f.issueTicketTx = func(context.Context, *model.Ticket, func(int64) (string, error)) (int64, error) {
		return 0, repo.ErrDuplicateTicket
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/tickets/", dto.IssueTicketRequest{Username: "jdoe", EventID: 5})
	asUser(c, 1)

	s.IssueTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.TicketDuplicate, errorCode(t, w))
}

func TestIssueTicketSoldOut(t *testing.T) {
	f := issueFixture()
	f.issueTicketTx = func(context.Context, *model.Ticket, func(int64) (string, error)) (int64, error) {
		return 0, repo.ErrEventSoldOut
	}

	s := newTestService(t, f)
	c, w := testContext(t, http.MethodPost, "/v1/tickets/", dto.IssueTicketRequest{Username: "jdoe", EventID: 5})
	asUser(c, 1)

	s.IssueTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.EventSoldOut, errorCode(t, w))
}

func TestIssueTicketForAnotherUser(t *testing.T) {
	s := newTestService(t, issueFixture())
	c, w := testContext(t, http.MethodPost, "/v1/tickets/", dto.IssueTicketRequest{Username: "jdoe", EventID: 5})
	asUser(c, 99)

	s.IssueTicket(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateTicketOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		result     *repo.ScanResult
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "first scan",
			result:     &repo.ScanResult{Outcome: repo.ScanValidated, FirstName: "Jane", LastName: "Doe", Status: model.TicketUsed},
			wantStatus: http.StatusOK,
		},
		{
			name:       "re-scan within grace",
			result:     &repo.ScanResult{Outcome: repo.ScanRepeat, FirstName: "Jane", LastName: "Doe", Status: model.TicketUsed},
			wantStatus: http.StatusOK,
		},
		{
			name:       "already used",
			result:     &repo.ScanResult{Outcome: repo.ScanAlready, Status: model.TicketUsed, ScannedAgo: 5 * time.Minute},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.TicketNotActive,
		},
		{
			name:       "cancelled ticket",
			result:     &repo.ScanResult{Outcome: repo.ScanNotActive, Status: model.TicketCancelled},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.TicketNotActive,
		},
		{
			name:       "another event's ticket",
			err:        repo.ErrWrongEvent,
			wantStatus: http.StatusForbidden,
			wantCode:   dto.PermissionDenied,
		},
		{
			name:       "unknown ticket",
			err:        repo.ErrTicketNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.TicketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRepo{
				scanTicketTx: func(_ context.Context, ticketID, scannerID, scannerEventID int64, grace time.Duration) (*repo.ScanResult, error) {
					assert.Equal(t, int64(7), ticketID)
					assert.Equal(t, int64(3), scannerID)
					assert.Equal(t, int64(9), scannerEventID)
					assert.Equal(t, 2*time.Second, grace)
					return tt.result, tt.err
				},
			}
			s := newTestService(t, f)
			c, w := testContext(t, http.MethodPost, "/v1/validate-ticket/7/", nil)
			asScanner(c, 3, 9)
			setParam(c, "id", "7")

			s.ValidateTicket(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
		})
	}
}

func TestValidateTicketRejectsRegularUser(t *testing.T) {
	s := newTestService(t, &fakeRepo{})
	c, w := testContext(t, http.MethodPost, "/v1/validate-ticket/7/", nil)
	asUser(c, 1)
	setParam(c, "id", "7")

	s.ValidateTicket(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
