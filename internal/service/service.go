package service

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/auth"
	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/payments"
	"clubtix/internal/rabbit"
	"clubtix/internal/repo"
)

type Service interface {
	// auth
	Register(ctx *ginext.Context)
	Token(ctx *ginext.Context)
	ScannerToken(ctx *ginext.Context)
	RefreshToken(ctx *ginext.Context)

	// users and profiles
	GetCurrentUser(ctx *ginext.Context)
	GetPublicProfile(ctx *ginext.Context)
	SearchUsernames(ctx *ginext.Context)
	GetProfile(ctx *ginext.Context)
	UpdateProfile(ctx *ginext.Context)
	UploadProfilePicture(ctx *ginext.Context)
	ChangeAccountType(ctx *ginext.Context)
	GetAccountType(ctx *ginext.Context)

	// friends
	CreateFriend(ctx *ginext.Context)
	AcceptFriend(ctx *ginext.Context)
	RemoveFriend(ctx *ginext.Context)
	ListFriends(ctx *ginext.Context)
	ListPendingFriends(ctx *ginext.Context)
	FriendshipStatus(ctx *ginext.Context)
	ListCommonFriends(ctx *ginext.Context)

	// clubs and follows
	CreateClub(ctx *ginext.Context)
	GetClub(ctx *ginext.Context)
	ListClubs(ctx *ginext.Context)
	UpdateClub(ctx *ginext.Context)
	UploadClubLogo(ctx *ginext.Context)
	UploadClubCover(ctx *ginext.Context)
	AddClubAdmins(ctx *ginext.Context)
	RemoveClubAdmin(ctx *ginext.Context)
	ListClubAdmins(ctx *ginext.Context)
	ListManagedClubs(ctx *ginext.Context)
	FollowClub(ctx *ginext.Context)
	UnfollowClub(ctx *ginext.Context)
	FollowStatus(ctx *ginext.Context)
	ListFollowedClubs(ctx *ginext.Context)
	ListCommonClubs(ctx *ginext.Context)
	EventYearStats(ctx *ginext.Context)
	ClubFollowerStats(ctx *ginext.Context)

	// events
	CreateEvent(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	UploadEventCover(ctx *ginext.Context)
	ListEvents(ctx *ginext.Context)
	ListClubEvents(ctx *ginext.Context)
	ListFollowedEvents(ctx *ginext.Context)
	ListUserEvents(ctx *ginext.Context)
	EventSoldOut(ctx *ginext.Context)

	// tickets and scanning
	IssueTicket(ctx *ginext.Context)
	GetTicket(ctx *ginext.Context)
	ListMyTickets(ctx *ginext.Context)
	HasTicket(ctx *ginext.Context)
	ListTransferableTickets(ctx *ginext.Context)
	ValidateTicket(ctx *ginext.Context)
	ListEventTickets(ctx *ginext.Context)
	CreateScanner(ctx *ginext.Context)
	ListEventScanners(ctx *ginext.Context)
	ResetScannerPassword(ctx *ginext.Context)
	DeleteScanner(ctx *ginext.Context)

	// transfers
	CreateTransfer(ctx *ginext.Context)
	ListSentTransfers(ctx *ginext.Context)
	ListReceivedTransfers(ctx *ginext.Context)
	CountPendingTransfers(ctx *ginext.Context)
	CanAcceptTransfer(ctx *ginext.Context)
	AcceptTransfer(ctx *ginext.Context)
	DeclineTransfer(ctx *ginext.Context)

	// payments
	ConnectClubAccount(ctx *ginext.Context)
	ClubOnboardingLink(ctx *ginext.Context)
	ClubAccountStatus(ctx *ginext.Context)
	ConnectUserAccount(ctx *ginext.Context)
	UserOnboardingLink(ctx *ginext.Context)
	UserAccountStatus(ctx *ginext.Context)
	CreateCheckout(ctx *ginext.Context)
	CreateTransferCheckout(ctx *ginext.Context)
}

// Options are the tunables the handlers need beyond their dependencies.
type Options struct {
	BaseURL   string
	PageSize  int
	ScanGrace time.Duration
}

type service struct {
	repo    repo.Repository
	log     *zerolog.Logger
	rbt     *rabbit.Client
	tokens  *auth.TokenManager
	refresh *auth.RefreshStore
	media   *media.Store
	pay     *payments.Client
	opts    Options
}

func NewService(
	repository repo.Repository,
	logger *zerolog.Logger,
	rbt *rabbit.Client,
	tokens *auth.TokenManager,
	refresh *auth.RefreshStore,
	mediaStore *media.Store,
	pay *payments.Client,
	opts Options,
) Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}
	if opts.ScanGrace <= 0 {
		opts.ScanGrace = 2 * time.Second
	}
	return &service{
		repo:    repository,
		log:     logger,
		rbt:     rbt,
		tokens:  tokens,
		refresh: refresh,
		media:   mediaStore,
		pay:     pay,
		opts:    opts,
	}
}

// claims returns the parsed token claims the auth middleware attached.
func (s *service) claims(ctx *ginext.Context) (*auth.Claims, bool) {
	v, ok := ctx.Get(auth.ContextClaimsKey)
	if !ok {
		dto.UnauthorizedError(ctx)
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		dto.UnauthorizedError(ctx)
		return nil, false
	}
	return claims, true
}

// currentUserID resolves the calling user's id from the token claims.
func (s *service) currentUserID(ctx *ginext.Context) (int64, bool) {
	claims, ok := s.claims(ctx)
	if !ok {
		return 0, false
	}
	id, err := claims.UserID()
	if err != nil {
		dto.UnauthorizedError(ctx)
		return 0, false
	}
	return id, true
}

func paramID(ctx *ginext.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// requireClubAdmin checks that the caller administers the club.
func (s *service) requireClubAdmin(ctx *ginext.Context, clubID int64) (int64, bool) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return 0, false
	}
	isAdmin, err := s.repo.IsClubAdmin(ctx.Request.Context(), userID, clubID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to check club admin")
		dto.InternalServerError(ctx)
		return 0, false
	}
	if !isAdmin {
		dto.PermissionDeniedError(ctx)
		return 0, false
	}
	return userID, true
}

// publishNotification hands a message to RabbitMQ for the mail worker.
// Failures are logged but never fail the request.
func (s *service) publishNotification(msg dto.NotificationMessage) {
	if s.rbt == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal notification message")
		return
	}
	if err := s.rbt.Publish(payload, 0); err != nil {
		s.log.Error().Err(err).Msg("failed to publish notification message")
	}
}

func (s *service) eventResponse(e *repo.EventRow) dto.EventResponse {
	return dto.EventResponse{
		ID:          e.ID,
		ClubID:      e.ClubID,
		ClubName:    e.ClubName,
		ClubLogo:    s.media.URL(e.ClubLogo, media.DefaultClubLogo),
		Title:       e.Title,
		Description: e.Description,
		Price:       e.Price,
		StartsAt:    e.StartsAt,
		Location:    e.Location,
		Capacity:    e.Capacity,
		SoldOut:     e.SoldOut,
		EventType:   e.EventType,
		EventCover:  s.media.URL(e.Cover, media.DefaultEventCover),
	}
}

func (s *service) eventResponses(rows []repo.EventRow) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, s.eventResponse(&rows[i]))
	}
	return out
}
