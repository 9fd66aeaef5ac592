package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/auth"
	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/model"
	"clubtix/internal/repo"
)

// fakeRepo embeds the Repository interface so each test only stubs the
// methods its handler touches. Calling an unstubbed method panics, which
// surfaces unexpected repository access immediately.
type fakeRepo struct {
	repo.Repository

	getUserByID       func(ctx context.Context, id int64) (*model.User, error)
	getUserByUsername func(ctx context.Context, username string) (*model.User, error)
	getProfileByUser  func(ctx context.Context, userID int64) (*model.Profile, error)

	getFriendBetween func(ctx context.Context, a, b int64) (*model.Friend, error)
	createFriend     func(ctx context.Context, senderID, receiverID int64) (*model.Friend, error)
	acceptFriend     func(ctx context.Context, id int64) error
	areFriends       func(ctx context.Context, a, b int64) (bool, error)

	getEventByID func(ctx context.Context, id int64) (*repo.EventRow, error)

	issueTicketTx func(ctx context.Context, t *model.Ticket, qrGen func(int64) (string, error)) (int64, error)
	getTicketByID func(ctx context.Context, id int64) (*model.Ticket, error)
	userHasTicket func(ctx context.Context, userID, eventID int64) (bool, error)
	scanTicketTx  func(ctx context.Context, ticketID, scannerID, scannerEventID int64, grace time.Duration) (*repo.ScanResult, error)

	createTransfer   func(ctx context.Context, senderID, receiverID, ticketID int64) (int64, error)
	getTransferByID  func(ctx context.Context, id int64) (*model.TransferRequest, error)
	acceptTransferTx func(ctx context.Context, requestID, receiverID int64, code string, qrGen func(int64) (string, error)) (int64, error)
	declineTransfer  func(ctx context.Context, requestID, receiverID int64) error
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return f.getUserByID(ctx, id)
}

func (f *fakeRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.getUserByUsername(ctx, username)
}

func (f *fakeRepo) GetProfileByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	return f.getProfileByUser(ctx, userID)
}

func (f *fakeRepo) GetFriendBetween(ctx context.Context, a, b int64) (*model.Friend, error) {
	return f.getFriendBetween(ctx, a, b)
}

func (f *fakeRepo) CreateFriend(ctx context.Context, senderID, receiverID int64) (*model.Friend, error) {
	return f.createFriend(ctx, senderID, receiverID)
}

func (f *fakeRepo) AcceptFriend(ctx context.Context, id int64) error {
	return f.acceptFriend(ctx, id)
}

func (f *fakeRepo) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return f.areFriends(ctx, a, b)
}

func (f *fakeRepo) GetEventByID(ctx context.Context, id int64) (*repo.EventRow, error) {
	return f.getEventByID(ctx, id)
}

func (f *fakeRepo) IssueTicketTx(ctx context.Context, t *model.Ticket, qrGen func(int64) (string, error)) (int64, error) {
	return f.issueTicketTx(ctx, t, qrGen)
}

func (f *fakeRepo) GetTicketByID(ctx context.Context, id int64) (*model.Ticket, error) {
	return f.getTicketByID(ctx, id)
}

func (f *fakeRepo) UserHasTicket(ctx context.Context, userID, eventID int64) (bool, error) {
	return f.userHasTicket(ctx, userID, eventID)
}

func (f *fakeRepo) ScanTicketTx(ctx context.Context, ticketID, scannerID, scannerEventID int64, grace time.Duration) (*repo.ScanResult, error) {
	return f.scanTicketTx(ctx, ticketID, scannerID, scannerEventID, grace)
}

func (f *fakeRepo) CreateTransfer(ctx context.Context, senderID, receiverID, ticketID int64) (int64, error) {
	return f.createTransfer(ctx, senderID, receiverID, ticketID)
}

func (f *fakeRepo) GetTransferByID(ctx context.Context, id int64) (*model.TransferRequest, error) {
	return f.getTransferByID(ctx, id)
}

func (f *fakeRepo) AcceptTransferTx(ctx context.Context, requestID, receiverID int64, code string, qrGen func(int64) (string, error)) (int64, error) {
	return f.acceptTransferTx(ctx, requestID, receiverID, code, qrGen)
}

func (f *fakeRepo) DeclineTransfer(ctx context.Context, requestID, receiverID int64) error {
	return f.declineTransfer(ctx, requestID, receiverID)
}

func newTestService(t *testing.T, f *fakeRepo) *service {
	t.Helper()
	log := zerolog.Nop()
	store, err := media.NewStore(t.TempDir(), "http://test")
	require.NoError(t, err)
	return NewService(f, &log, nil, nil, nil, store, nil, Options{BaseURL: "http://test"}).(*service)
}

func testContext(t *testing.T, method, path string, body any) (*ginext.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asUser(c *ginext.Context, userID int64) {
	c.Set(auth.ContextClaimsKey, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
		Kind:             "access",
		UserType:         model.UserTypeRegular,
	})
}

func asScanner(c *ginext.Context, scannerID, eventID int64) {
	c.Set(auth.ContextClaimsKey, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(scannerID, 10)},
		Kind:             "access",
		UserType:         model.UserTypeScanner,
		EventID:          &eventID,
	})
}

func setParam(c *ginext.Context, name, value string) {
	c.Params = append(c.Params, gin.Param{Key: name, Value: value})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "response data is not an object")
	return m
}
