package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/auth"
	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/model"
	"clubtix/internal/repo"
	"clubtix/pkg/validator"
)

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse register request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if req.Password != req.Password2 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Passwords do not match")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		dto.InternalServerError(ctx)
		return
	}

	user := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    hash,
		UserType:    model.UserTypeRegular,
		AccountType: model.AccountPublic,
		IsActive:    true,
	}
	if req.StudentID != "" {
		user.StudentID = &req.StudentID
	}
	profile := &model.Profile{
		Course: req.Profile.Course,
		Year:   req.Profile.Year,
	}
	if req.Profile.Description != "" {
		profile.Description = &req.Profile.Description
	}

	id, err := s.repo.CreateUserWithProfileTx(ctx.Request.Context(), user, profile)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			dto.BadResponseError(ctx, dto.FieldIncorrect, "Username or email already taken")
			return
		}
		s.log.Error().Err(err).Msg("failed to create user")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("user_id", id).Str("username", user.Username).Msg("user registered")

	dto.SuccessCreatedResponse(ctx, dto.UserResponse{
		ID:        id,
		Username:  user.Username,
		Email:     user.Email,
		StudentID: user.StudentID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (s *service) Token(ctx *ginext.Context) {
	var req dto.TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		dto.UnauthorizedError(ctx)
		return
	}
	if user.UserType != model.UserTypeRegular {
		dto.UnauthorizedError(ctx)
		return
	}
	if !user.IsActive || !auth.CheckPassword(user.Password, req.Password) {
		dto.UnauthorizedError(ctx)
		return
	}

	access, refresh, ok := s.issuePair(ctx, user)
	if !ok {
		return
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user signed in")
	dto.SuccessResponse(ctx, dto.TokenResponse{Access: access, Refresh: refresh})
}

// ScannerToken is the login flavor for ticket-scanner accounts, which
// cannot sign in through the regular endpoint.
func (s *service) ScannerToken(ctx *ginext.Context) {
	var req dto.TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		dto.UnauthorizedError(ctx)
		return
	}
	if user.UserType != model.UserTypeScanner {
		dto.UnauthorizedError(ctx)
		return
	}
	if !user.IsActive || !auth.CheckPassword(user.Password, req.Password) {
		dto.UnauthorizedError(ctx)
		return
	}

	access, refresh, ok := s.issuePair(ctx, user)
	if !ok {
		return
	}

	s.log.Info().Int64("user_id", user.ID).Msg("scanner signed in")
	dto.SuccessResponse(ctx, dto.TokenResponse{Access: access, Refresh: refresh})
}

func (s *service) RefreshToken(ctx *ginext.Context) {
	var req dto.RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		dto.UnauthorizedError(ctx)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		dto.UnauthorizedError(ctx)
		return
	}

	if err := s.refresh.Rotate(ctx.Request.Context(), userID, claims.ID); err != nil {
		if errors.Is(err, auth.ErrRefreshRevoked) {
			dto.UnauthorizedError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to rotate refresh token")
		dto.InternalServerError(ctx)
		return
	}

	user, err := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if err != nil || !user.IsActive {
		dto.UnauthorizedError(ctx)
		return
	}

	access, refresh, ok := s.issuePair(ctx, user)
	if !ok {
		return
	}
	dto.SuccessResponse(ctx, dto.TokenResponse{Access: access, Refresh: refresh})
}

// issuePair signs a token pair carrying the user's profile fields and
// registers the refresh token id in the allowlist.
func (s *service) issuePair(ctx *ginext.Context, user *model.User) (access, refresh string, ok bool) {
	verified := false
	picture := s.media.URL(nil, media.DefaultProfilePicture)
	if user.UserType == model.UserTypeRegular {
		profile, err := s.repo.GetProfileByUserID(ctx.Request.Context(), user.ID)
		if err == nil {
			verified = profile.Verified
			picture = s.media.URL(profile.ProfilePicture, media.DefaultProfilePicture)
		}
	}

	refreshID := uuid.NewString()
	access, refresh, err := s.tokens.IssuePair(user, verified, picture, refreshID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign tokens")
		dto.InternalServerError(ctx)
		return "", "", false
	}
	if err := s.refresh.Save(ctx.Request.Context(), user.ID, refreshID, s.tokens.RefreshTTL()); err != nil {
		s.log.Error().Err(err).Msg("failed to save refresh token")
		dto.InternalServerError(ctx)
		return "", "", false
	}
	return access, refresh, true
}
