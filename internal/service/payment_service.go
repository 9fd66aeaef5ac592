package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/repo"
	"clubtix/pkg/validator"
)

// ConnectClubAccount creates a Stripe custom account for the club and
// returns the onboarding link.
func (s *service) ConnectClubAccount(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	club, err := s.repo.GetClubByID(ctx.Request.Context(), clubID)
	if err != nil {
		dto.ClubNotFoundError(ctx)
		return
	}
	if club.PaymentAccountID != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Club already has a payment account")
		return
	}

	stripeID, err := s.pay.CreateClubAccount(club.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create stripe account for club")
		dto.InternalServerError(ctx)
		return
	}

	accountID, err := s.repo.CreatePaymentAccount(ctx.Request.Context(), stripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store payment account")
		dto.InternalServerError(ctx)
		return
	}
	if err := s.repo.AttachAccountToClub(ctx.Request.Context(), clubID, accountID); err != nil {
		s.log.Error().Err(err).Msg("failed to attach payment account to club")
		dto.InternalServerError(ctx)
		return
	}

	link, err := s.pay.OnboardingLink(stripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create onboarding link")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("club_id", clubID).Msg("club payment account connected")
	dto.SuccessCreatedResponse(ctx, dto.OnboardingResponse{AccountLinkURL: link})
}

func (s *service) ClubOnboardingLink(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	account, err := s.repo.GetClubPaymentAccount(ctx.Request.Context(), clubID)
	if err != nil {
		dto.NotFoundError(ctx, dto.AccountNotFound, "Club has no payment account")
		return
	}

	link, err := s.pay.OnboardingLink(account.StripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create onboarding link")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.OnboardingResponse{AccountLinkURL: link})
}

// ClubAccountStatus polls Stripe for onboarding completion and persists
// the flag once payouts are enabled.
func (s *service) ClubAccountStatus(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	account, err := s.repo.GetClubPaymentAccount(ctx.Request.Context(), clubID)
	if err != nil {
		dto.SuccessResponse(ctx, dto.AccountStatusResponse{Detail: "Not connected"})
		return
	}
	s.accountStatus(ctx, account)
}

func (s *service) ConnectUserAccount(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	if _, err := s.repo.GetUserPaymentAccount(ctx.Request.Context(), userID); err == nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "You already have a payment account")
		return
	}

	user, err := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	stripeID, err := s.pay.CreateUserAccount(user.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create stripe account for user")
		dto.InternalServerError(ctx)
		return
	}

	accountID, err := s.repo.CreatePaymentAccount(ctx.Request.Context(), stripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store payment account")
		dto.InternalServerError(ctx)
		return
	}
	if err := s.repo.AttachAccountToProfile(ctx.Request.Context(), userID, accountID); err != nil {
		s.log.Error().Err(err).Msg("failed to attach payment account to profile")
		dto.InternalServerError(ctx)
		return
	}

	link, err := s.pay.OnboardingLink(stripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create onboarding link")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessCreatedResponse(ctx, dto.OnboardingResponse{AccountLinkURL: link})
}

func (s *service) UserOnboardingLink(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	account, err := s.repo.GetUserPaymentAccount(ctx.Request.Context(), userID)
	if err != nil {
		dto.NotFoundError(ctx, dto.AccountNotFound, "No payment account")
		return
	}

	link, err := s.pay.OnboardingLink(account.StripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create onboarding link")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.OnboardingResponse{AccountLinkURL: link})
}

func (s *service) UserAccountStatus(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	account, err := s.repo.GetUserPaymentAccount(ctx.Request.Context(), userID)
	if err != nil {
		dto.SuccessResponse(ctx, dto.AccountStatusResponse{Detail: "Not connected"})
		return
	}
	s.accountStatus(ctx, account)
}

func (s *service) accountStatus(ctx *ginext.Context, account *model.PaymentAccount) {
	if !account.Complete {
		enabled, err := s.pay.PayoutsEnabled(account.StripeID)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to check payouts status")
			dto.InternalServerError(ctx)
			return
		}
		if enabled {
			if err := s.repo.SetAccountComplete(ctx.Request.Context(), account.ID); err != nil {
				s.log.Error().Err(err).Msg("failed to mark account complete")
				dto.InternalServerError(ctx)
				return
			}
			account.Complete = true
		}
	}

	resp := dto.AccountStatusResponse{Connected: true}
	if account.Complete {
		resp.Detail = "Onboarding complete"
	} else {
		resp.Detail = "Onboarding incomplete"
		link, err := s.pay.OnboardingLink(account.StripeID)
		if err == nil {
			resp.AccountLinkURL = link
		}
	}
	dto.SuccessResponse(ctx, resp)
}

// CreateCheckout starts payment for a club event ticket. The money goes
// to the club's connected account minus the platform fee.
func (s *service) CreateCheckout(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), req.EventID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	if event.Price.IsZero() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Event is free, no payment needed")
		return
	}

	has, err := s.repo.UserHasTicket(ctx.Request.Context(), userID, event.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to check existing ticket")
		dto.InternalServerError(ctx)
		return
	}
	if has {
		dto.BadResponseError(ctx, dto.TicketDuplicate, "You already have a ticket for this event")
		return
	}

	account, err := s.repo.GetClubPaymentAccount(ctx.Request.Context(), event.ClubID)
	if err != nil || !account.Complete {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "This club cannot take payments yet")
		return
	}

	secret, err := s.pay.CreatePaymentIntent(event.Price, account.StripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create payment intent")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.CheckoutResponse{ClientSecret: secret})
}

// CreateTransferCheckout starts payment for a transferred ticket. The
// money goes to the sender's connected account minus the platform fee.
func (s *service) CreateTransferCheckout(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.UserCheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	transfer, err := s.repo.GetTransferByID(ctx.Request.Context(), req.TransferRequestID)
	if err != nil || transfer.ReceiverID != userID {
		dto.NotFoundError(ctx, dto.TransferNotFound, "Transfer request not found")
		return
	}
	if transfer.Status != model.TransferPending {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Transfer request is no longer pending")
		return
	}

	ticket, err := s.repo.GetTicketByID(ctx.Request.Context(), transfer.TicketID)
	if err != nil {
		dto.TicketNotFoundError(ctx)
		return
	}
	if ticket.Price.IsZero() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Ticket is free, no payment needed")
		return
	}

	account, err := s.repo.GetUserPaymentAccount(ctx.Request.Context(), transfer.SenderID)
	if err != nil {
		if errors.Is(err, repo.ErrAccountNotFound) {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Sender cannot receive payments yet")
			return
		}
		s.log.Error().Err(err).Msg("failed to load sender payment account")
		dto.InternalServerError(ctx)
		return
	}
	if !account.Complete {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Sender cannot receive payments yet")
		return
	}

	secret, err := s.pay.CreatePaymentIntent(ticket.Price, account.StripeID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create payment intent")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.CheckoutResponse{ClientSecret: secret})
}
