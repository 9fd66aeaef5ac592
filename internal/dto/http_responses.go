package dto

import (
	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	Unauthorized     = "UNAUTHORIZED"
	PermissionDenied = "PERMISSION_DENIED"

	UserNotFound      = "USER_NOT_FOUND"
	ProfileNotFound   = "PROFILE_NOT_FOUND"
	ClubNotFound      = "CLUB_NOT_FOUND"
	ClubEmailTaken    = "CLUB_EMAIL_TAKEN"
	EventNotFound     = "EVENT_NOT_FOUND"
	EventSoldOut      = "EVENT_SOLD_OUT"
	TicketNotFound    = "TICKET_NOT_FOUND"
	TicketDuplicate   = "TICKET_DUPLICATE"
	TicketNotActive   = "TICKET_NOT_ACTIVE"
	TransferNotFound  = "TRANSFER_NOT_FOUND"
	TransferDuplicate = "TRANSFER_DUPLICATE"
	FriendNotFound    = "FRIEND_NOT_FOUND"
	FriendDuplicate   = "FRIEND_DUPLICATE"
	FollowNotFound    = "FOLLOW_NOT_FOUND"
	FollowDuplicate   = "FOLLOW_DUPLICATE"
	AccountNotFound   = "PAYMENT_ACCOUNT_NOT_FOUND"
)

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func UnauthorizedError(c *ginext.Context) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: "Authentication required",
		},
	})
}

func PermissionDeniedError(c *ginext.Context) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: PermissionDenied,
			Desc: "Permission denied",
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldIncorrect, "Field '"+fieldName+"' is incorrect")
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func TicketNotFoundError(c *ginext.Context) {
	NotFoundError(c, TicketNotFound, "Ticket not found")
}

func UserNotFoundError(c *ginext.Context) {
	NotFoundError(c, UserNotFound, "User not found")
}

func ClubNotFoundError(c *ginext.Context) {
	NotFoundError(c, ClubNotFound, "Club not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}

func NoContentResponse(c *ginext.Context) {
	c.Status(204)
}
