package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/model"
	"clubtix/internal/repo"
	"clubtix/pkg/validator"
)

func (s *service) CreateClub(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	club := &model.Club{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Content:     req.Content,
	}
	if req.Website != "" {
		club.Website = &req.Website
	}

	id, err := s.repo.CreateClub(ctx.Request.Context(), club)
	if err != nil {
		if errors.Is(err, repo.ErrClubEmailTaken) {
			dto.BadResponseError(ctx, dto.ClubEmailTaken, "A club with this email already exists")
			return
		}
		s.log.Error().Err(err).Msg("failed to create club")
		dto.InternalServerError(ctx)
		return
	}
	club.ID = id

	// the creator manages the club from the start
	if err := s.repo.AddClubAdmin(ctx.Request.Context(), id, userID); err != nil {
		s.log.Error().Err(err).Msg("failed to add club creator as admin")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("club_id", id).Str("name", club.Name).Msg("club created")
	dto.SuccessCreatedResponse(ctx, s.clubResponse(club))
}

func (s *service) GetClub(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	club, err := s.repo.GetClubByID(ctx.Request.Context(), clubID)
	if err != nil {
		dto.ClubNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponse(club))
}

func (s *service) ListClubs(ctx *ginext.Context) {
	clubs, err := s.repo.ListClubs(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list clubs")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponses(clubs))
}

func (s *service) UpdateClub(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	var req dto.UpdateClubRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	club, err := s.repo.GetClubByID(ctx.Request.Context(), clubID)
	if err != nil {
		dto.ClubNotFoundError(ctx)
		return
	}

	if req.Name != nil {
		club.Name = *req.Name
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.Email != nil {
		club.Email = *req.Email
	}
	if req.Website != nil {
		club.Website = req.Website
	}
	if req.Content != nil {
		club.Content = *req.Content
	}

	if err := s.repo.UpdateClub(ctx.Request.Context(), club); err != nil {
		s.log.Error().Err(err).Msg("failed to update club")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponse(club))
}

func (s *service) UploadClubLogo(ctx *ginext.Context) {
	s.uploadClubImage(ctx, "club_logo", s.repo.SetClubLogo)
}

func (s *service) UploadClubCover(ctx *ginext.Context) {
	s.uploadClubImage(ctx, "club_cover", s.repo.SetClubCover)
}

func (s *service) uploadClubImage(ctx *ginext.Context, field string, save func(ctx context.Context, clubID int64, path string) error) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	fh, err := ctx.FormFile(field)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing "+field+" file")
		return
	}

	rel, err := s.media.SaveUpload("clubs", fh)
	if err != nil {
		s.uploadError(ctx, err)
		return
	}

	if err := save(ctx.Request.Context(), clubID, rel); err != nil {
		s.log.Error().Err(err).Msg("failed to save club image")
		dto.InternalServerError(ctx)
		return
	}

	club, err := s.repo.GetClubByID(ctx.Request.Context(), clubID)
	if err != nil {
		dto.ClubNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponse(club))
}

func (s *service) AddClubAdmins(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	var req dto.AddAdminsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if len(req.Usernames) == 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "No usernames given")
		return
	}

	for _, username := range req.Usernames {
		user, err := s.repo.GetUserByUsername(ctx.Request.Context(), username)
		if err != nil {
			dto.BadResponseError(ctx, dto.UserNotFound, fmt.Sprintf("User %q not found", username))
			return
		}
		if err := s.repo.AddClubAdmin(ctx.Request.Context(), clubID, user.ID); err != nil {
			s.log.Error().Err(err).Msg("failed to add club admin")
			dto.InternalServerError(ctx)
			return
		}
	}
	s.ListClubAdmins(ctx)
}

func (s *service) RemoveClubAdmin(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	callerID, ok := s.requireClubAdmin(ctx, clubID)
	if !ok {
		return
	}

	user, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	if user.ID == callerID {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Cannot remove yourself")
		return
	}

	removed, err := s.repo.RemoveClubAdmin(ctx.Request.Context(), clubID, user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to remove club admin")
		dto.InternalServerError(ctx)
		return
	}
	if !removed {
		dto.NotFoundError(ctx, dto.UserNotFound, "User is not an admin of this club")
		return
	}
	dto.NoContentResponse(ctx)
}

func (s *service) ListClubAdmins(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	rows, err := s.repo.ListClubAdmins(ctx.Request.Context(), clubID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list club admins")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.AdminUserResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, dto.AdminUserResponse{
			Username:       row.Username,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			ProfilePicture: s.media.URL(row.ProfilePicture, media.DefaultProfilePicture),
			Course:         row.Course,
			Year:           row.Year,
			Verified:       row.Verified,
			Description:    row.Description,
		})
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListManagedClubs(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	clubs, err := s.repo.ListClubsAdminedBy(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list managed clubs")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponses(clubs))
}

func (s *service) FollowClub(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.FollowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if req.UserID != userID {
		dto.PermissionDeniedError(ctx)
		return
	}

	if _, err := s.repo.GetClubByID(ctx.Request.Context(), req.ClubID); err != nil {
		dto.ClubNotFoundError(ctx)
		return
	}

	if _, err := s.repo.CreateFollow(ctx.Request.Context(), userID, req.ClubID); err != nil {
		if errors.Is(err, repo.ErrDuplicateFollow) {
			dto.BadResponseError(ctx, dto.FollowDuplicate, "Already following this club")
			return
		}
		s.log.Error().Err(err).Msg("failed to create follow")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessCreatedResponse(ctx, dto.DetailResponse{Detail: "Followed"})
}

func (s *service) UnfollowClub(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := s.repo.DeleteFollow(ctx.Request.Context(), userID, clubID); err != nil {
		if errors.Is(err, repo.ErrFollowNotFound) {
			dto.NotFoundError(ctx, dto.FollowNotFound, "Not following this club")
			return
		}
		s.log.Error().Err(err).Msg("failed to delete follow")
		dto.InternalServerError(ctx)
		return
	}
	dto.NoContentResponse(ctx)
}

func (s *service) FollowStatus(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	following, err := s.repo.IsFollowing(ctx.Request.Context(), userID, clubID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to check follow status")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.FollowStatusResponse{Following: following})
}

func (s *service) ListFollowedClubs(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	clubs, err := s.repo.ListFollowedClubs(ctx.Request.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list followed clubs")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponses(clubs))
}

func (s *service) ListCommonClubs(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}
	other, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	clubs, err := s.repo.ListCommonClubs(ctx.Request.Context(), userID, other.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list common clubs")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.clubResponses(clubs))
}

func (s *service) EventYearStats(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	stats, err := s.repo.EventYearStats(ctx.Request.Context(), clubID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to compute event year stats")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, stats)
}

func (s *service) ClubFollowerStats(ctx *ginext.Context) {
	clubID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, ok := s.requireClubAdmin(ctx, clubID); !ok {
		return
	}

	stats, err := s.repo.ClubFollowerStats(ctx.Request.Context(), clubID)
	if err != nil {
		if errors.Is(err, repo.ErrClubNotFound) {
			dto.ClubNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to compute follower stats")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, stats)
}

func (s *service) clubResponse(c *model.Club) dto.ClubResponse {
	return dto.ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Email:       c.Email,
		ClubLogo:    s.media.URL(c.Logo, media.DefaultClubLogo),
		ClubCover:   s.media.URL(c.Cover, media.DefaultClubCover),
		Website:     c.Website,
		Content:     c.Content,
	}
}

func (s *service) clubResponses(clubs []model.Club) []dto.ClubResponse {
	resp := make([]dto.ClubResponse, 0, len(clubs))
	for i := range clubs {
		resp = append(resp, s.clubResponse(&clubs[i]))
	}
	return resp
}
