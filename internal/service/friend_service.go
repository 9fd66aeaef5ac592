package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"clubtix/internal/dto"
	"clubtix/internal/media"
	"clubtix/internal/repo"
	"clubtix/pkg/validator"
)

// CreateFriend sends a friend request. When the receiver already has a
// pending request towards the caller, the two requests meet in the middle
// and the friendship is accepted instead of duplicated.
func (s *service) CreateFriend(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateFriendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	receiver, err := s.repo.GetUserByUsername(ctx.Request.Context(), req.Receiver)
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}
	if receiver.ID == userID {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Cannot send a friend request to yourself")
		return
	}

	existing, err := s.repo.GetFriendBetween(ctx.Request.Context(), userID, receiver.ID)
	if err != nil && !errors.Is(err, repo.ErrFriendNotFound) {
		s.log.Error().Err(err).Msg("failed to look up friendship")
		dto.InternalServerError(ctx)
		return
	}

	if existing != nil {
		if !existing.Status && existing.ReceiverID == userID {
			if err := s.repo.AcceptFriend(ctx.Request.Context(), existing.ID); err != nil {
				s.log.Error().Err(err).Msg("failed to accept friend request")
				dto.InternalServerError(ctx)
				return
			}
			dto.SuccessResponse(ctx, dto.FriendshipStatusResponse{
				Detail: "Friend request accepted",
				Status: "True",
				Sender: "other",
			})
			return
		}
		dto.BadResponseError(ctx, dto.FriendDuplicate, "Friend request already exists")
		return
	}

	if _, err := s.repo.CreateFriend(ctx.Request.Context(), userID, receiver.ID); err != nil {
		s.log.Error().Err(err).Msg("failed to create friend request")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("sender_id", userID).Int64("receiver_id", receiver.ID).Msg("friend request created")
	dto.SuccessCreatedResponse(ctx, dto.FriendshipStatusResponse{
		Detail: "Friend request sent",
		Status: "False",
		Sender: "current",
	})
}

func (s *service) AcceptFriend(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	sender, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	friend, err := s.repo.GetFriendBetween(ctx.Request.Context(), userID, sender.ID)
	if err != nil {
		dto.NotFoundError(ctx, dto.FriendNotFound, "Friend request not found")
		return
	}
	if friend.Status || friend.ReceiverID != userID {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "No pending request from this user")
		return
	}

	if err := s.repo.AcceptFriend(ctx.Request.Context(), friend.ID); err != nil {
		s.log.Error().Err(err).Msg("failed to accept friend request")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.FriendshipStatusResponse{
		Detail: "Friend request accepted",
		Status: "True",
		Sender: "other",
	})
}

// RemoveFriend covers unfriending, cancelling an outgoing request and
// declining an incoming one: whatever row links the two users is removed.
func (s *service) RemoveFriend(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	other, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	friend, err := s.repo.GetFriendBetween(ctx.Request.Context(), userID, other.ID)
	if err != nil {
		dto.NotFoundError(ctx, dto.FriendNotFound, "Friendship not found")
		return
	}
	if err := s.repo.DeleteFriend(ctx.Request.Context(), friend.ID); err != nil {
		s.log.Error().Err(err).Msg("failed to delete friendship")
		dto.InternalServerError(ctx)
		return
	}
	dto.NoContentResponse(ctx)
}

func (s *service) ListFriends(ctx *ginext.Context) {
	s.listFriends(ctx, true)
}

func (s *service) ListPendingFriends(ctx *ginext.Context) {
	s.listFriends(ctx, false)
}

func (s *service) listFriends(ctx *ginext.Context, accepted bool) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	rows, err := s.repo.ListFriends(ctx.Request.Context(), userID, accepted)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list friends")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.friendResponses(rows))
}

func (s *service) FriendshipStatus(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	other, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	friend, err := s.repo.GetFriendBetween(ctx.Request.Context(), userID, other.ID)
	if errors.Is(err, repo.ErrFriendNotFound) {
		dto.SuccessResponse(ctx, dto.FriendshipStatusResponse{
			Detail: "No friendship",
			Status: "None",
			Sender: "None",
		})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to look up friendship")
		dto.InternalServerError(ctx)
		return
	}

	resp := dto.FriendshipStatusResponse{Detail: "Friendship found"}
	if friend.Status {
		resp.Status = "True"
	} else {
		resp.Status = "False"
	}
	if friend.SenderID == userID {
		resp.Sender = "current"
	} else {
		resp.Sender = "other"
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListCommonFriends(ctx *ginext.Context) {
	userID, ok := s.currentUserID(ctx)
	if !ok {
		return
	}

	other, err := s.repo.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		dto.UserNotFoundError(ctx)
		return
	}

	rows, err := s.repo.ListCommonFriends(ctx.Request.Context(), userID, other.ID, []int64{userID, other.ID})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list common friends")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.CommonFriendResponse, 0, len(rows))
	for _, row := range rows {
		picture := s.media.URL(row.ProfilePicture, media.DefaultProfilePicture)
		resp = append(resp, dto.CommonFriendResponse{
			Username:       row.Username,
			ProfilePicture: &picture,
		})
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) friendResponses(rows []repo.FriendUserRow) []dto.FriendUserResponse {
	resp := make([]dto.FriendUserResponse, 0, len(rows))
	for _, row := range rows {
		picture := s.media.URL(row.ProfilePicture, media.DefaultProfilePicture)
		resp = append(resp, dto.FriendUserResponse{
			Username:       row.Username,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			ProfilePicture: &picture,
			Verified:       row.Verified,
		})
	}
	return resp
}
