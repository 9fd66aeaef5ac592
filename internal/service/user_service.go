package service

import (
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/model"
	"clubtix/pkg/validator"
)

func (s *service) GetCurrentUser(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	user, err := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		StudentID: user.StudentID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetPublicProfile renders another user's profile page honouring their
// account visibility. Private profiles show their fields only to accepted
// friends. Closed profiles show a placeholder name and null fields to
// everyone, friends included.
func (s *service) GetPublicProfile(ctx *ginext.Context) {
	viewerID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	username := ctx.Param("username")

	user, err := s.repo.GetUserByUsername(ctx.Request.Context(), username)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	resp := dto.PublicProfileResponse{
		Username:    user.Username,
		AccountType: user.AccountType,
	}

	if user.AccountType == model.AccountClosed {
		resp.FirstName = "Closed"
		resp.LastName = "Account"
		dto.SuccessResponse(ctx, resp)
		return
	}

	resp.FirstName = user.FirstName
	resp.LastName = user.LastName

	visible := user.AccountType == model.AccountPublic || viewerID == user.ID
	if !visible {
		friends, err := s.repo.AreFriends(ctx.Request.Context(), viewerID, user.ID)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to check friendship")
			dto.InternalServerError(ctx)
			return
		}
		visible = friends
	}

	if visible {
		profile, err := s.repo.GetProfileByUserID(ctx.Request.Context(), user.ID)
		if err != nil {
			dto.SuccessResponse(ctx, resp)
			return
		}
		picture := s.media.URL(profile.ProfilePicture, media.DefaultProfilePicture)
		resp.ProfilePicture = &picture
		resp.Course = &profile.Course
		resp.Year = &profile.Year
		resp.Description = profile.Description
		resp.Verified = &profile.Verified
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) SearchUsernames(ctx *ginext.Context) {
	if _, ok := s.currentUserID(ctx); !ok {
		return
	}
	filter := ctx.Query("username")

	users, err := s.repo.ListUsernames(ctx.Request.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list usernames")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.UserNameResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.UserNameResponse{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetProfile(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	profile, err := s.repo.GetProfileByUserID(ctx.Request.Context(), userID)
	if err != nil {
		dto.NotFoundError(ctx, dto.ProfileNotFound, "Profile not found")
		return
	}
	dto.SuccessResponse(ctx, s.profileResponse(profile))
}

func (s *service) UpdateProfile(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	profile, err := s.repo.GetProfileByUserID(ctx.Request.Context(), userID)
	if err != nil {
		dto.NotFoundError(ctx, dto.ProfileNotFound, "Profile not found")
		return
	}

	if req.Birthday != nil {
		if *req.Birthday == "" {
			profile.Birthday = nil
		} else {
			bd, err := time.Parse("2006-01-02", *req.Birthday)
			if err != nil {
				dto.BadResponseError(ctx, dto.FieldBadFormat, "Birthday must be YYYY-MM-DD")
				return
			}
			profile.Birthday = &bd
		}
	}
	if req.Course != nil {
		profile.Course = *req.Course
	}
	if req.Year != nil {
		profile.Year = *req.Year
	}
	if req.Description != nil {
		profile.Description = req.Description
	}

	if err := s.repo.UpdateProfile(ctx.Request.Context(), profile); err != nil {
		s.log.Error().Err(err).Msg("failed to update profile")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.profileResponse(profile))
}

func (s *service) UploadProfilePicture(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	fh, err := ctx.FormFile("profile_picture")
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing profile_picture file")
		return
	}

	rel, err := s.media.SaveUpload("profiles", fh)
	if err != nil {
		s.uploadError(ctx, err)
		return
	}

	profile, err := s.repo.GetProfileByUserID(ctx.Request.Context(), userID)
	if err == nil {
		s.media.Remove(derefString(profile.ProfilePicture))
	}

	if err := s.repo.SetProfilePicture(ctx.Request.Context(), userID, rel); err != nil {
		s.log.Error().Err(err).Msg("failed to save profile picture")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.ProfileResponse{
		ProfilePicture: s.media.URL(&rel, media.DefaultProfilePicture),
	})
}

func (s *service) ChangeAccountType(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.ChangeAccountTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	if err := s.repo.UpdateAccountType(ctx.Request.Context(), userID, req.AccountType); err != nil {
		s.log.Error().Err(err).Msg("failed to change account type")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.AccountTypeResponse{AccountType: req.AccountType})
}

func (s *service) GetAccountType(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	user, err := s.repo.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.AccountTypeResponse{AccountType: user.AccountType})
}

func (s *service) profileResponse(p *model.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		ProfilePicture: s.media.URL(p.ProfilePicture, media.DefaultProfilePicture),
		Course:         p.Course,
		Year:           p.Year,
		Description:    p.Description,
		Verified:       p.Verified,
	}
	if p.Birthday != nil {
		bd := p.Birthday.Format("2006-01-02")
		resp.Birthday = &bd
	}
	return resp
}

func (s *service) uploadError(ctx *ginext.Context, err error) {
	switch err {
	case media.ErrTooLarge:
		dto.BadResponseError(ctx, dto.FieldIncorrect, "File exceeds the 1 MiB limit")
	case media.ErrBadType:
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Unsupported image type")
	default:
		s.log.Error().Err(err).Msg("failed to store upload")
		dto.InternalServerError(ctx)
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
