package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/ginext"

	"clubtix/cmd/middleware"
	"clubtix/internal/auth"
	"clubtix/internal/service"
)

type Routers struct {
	Service    service.Service
	Tokens     *auth.TokenManager
	Redis      *redis.Client
	MediaRoot  string
	ScanLimit  int
	ScanWindow time.Duration
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(middleware.MetricsMiddleware())
	app.Use(cors.Default())

	app.GET("/health", func(c *ginext.Context) {
		c.JSON(200, map[string]string{"status": "ok"})
	})
	app.GET("/metrics", gin.WrapH(promhttp.Handler()))
	app.Static("/media", r.MediaRoot)

	v1 := app.Group("/v1")

	// no token required
	v1.POST("/auth/register", r.Service.Register)
	v1.POST("/auth/token", r.Service.Token)
	v1.POST("/auth/token/ticket-scanner", r.Service.ScannerToken)
	v1.POST("/auth/token/refresh", r.Service.RefreshToken)
	v1.GET("/clubs", r.Service.ListClubs)
	v1.GET("/clubs/:id", r.Service.GetClub)
	v1.GET("/clubs/:id/events", r.Service.ListClubEvents)
	v1.GET("/events", r.Service.ListEvents)
	v1.GET("/events/:id", r.Service.GetEvent)
	v1.GET("/events/:id/soldout", r.Service.EventSoldOut)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(r.Tokens))

	authed.GET("/users/me", r.Service.GetCurrentUser)
	authed.GET("/users", r.Service.SearchUsernames)
	authed.GET("/users/:username", r.Service.GetPublicProfile)
	authed.GET("/users/:username/friendship", r.Service.FriendshipStatus)
	authed.GET("/users/:username/common-friends", r.Service.ListCommonFriends)
	authed.GET("/users/:username/common-clubs", r.Service.ListCommonClubs)

	authed.GET("/profile", r.Service.GetProfile)
	authed.PUT("/profile", r.Service.UpdateProfile)
	authed.POST("/profile/picture", r.Service.UploadProfilePicture)
	authed.GET("/profile/account-type", r.Service.GetAccountType)
	authed.PUT("/profile/account-type", r.Service.ChangeAccountType)

	authed.POST("/friends", r.Service.CreateFriend)
	authed.GET("/friends", r.Service.ListFriends)
	authed.GET("/friends/pending", r.Service.ListPendingFriends)
	authed.POST("/friends/:username/accept", r.Service.AcceptFriend)
	authed.DELETE("/friends/:username", r.Service.RemoveFriend)

	authed.POST("/clubs", r.Service.CreateClub)
	authed.PUT("/clubs/:id", r.Service.UpdateClub)
	authed.GET("/clubs/managed", r.Service.ListManagedClubs)
	authed.POST("/clubs/:id/logo", r.Service.UploadClubLogo)
	authed.POST("/clubs/:id/cover", r.Service.UploadClubCover)
	authed.GET("/clubs/:id/admins", r.Service.ListClubAdmins)
	authed.POST("/clubs/:id/admins", r.Service.AddClubAdmins)
	authed.DELETE("/clubs/:id/admins/:username", r.Service.RemoveClubAdmin)
	authed.GET("/clubs/:id/stats/events", r.Service.EventYearStats)
	authed.GET("/clubs/:id/stats/followers", r.Service.ClubFollowerStats)
	authed.POST("/clubs/:id/payments/connect", r.Service.ConnectClubAccount)
	authed.GET("/clubs/:id/payments/onboarding", r.Service.ClubOnboardingLink)
	authed.GET("/clubs/:id/payments/status", r.Service.ClubAccountStatus)

	authed.POST("/follows", r.Service.FollowClub)
	authed.GET("/follows", r.Service.ListFollowedClubs)
	authed.DELETE("/follows/:id", r.Service.UnfollowClub)
	authed.GET("/follows/:id/status", r.Service.FollowStatus)

	authed.POST("/events", r.Service.CreateEvent)
	authed.PUT("/events/:id", r.Service.UpdateEvent)
	authed.DELETE("/events/:id", r.Service.DeleteEvent)
	authed.POST("/events/:id/cover", r.Service.UploadEventCover)
	authed.GET("/events/followed", r.Service.ListFollowedEvents)
	authed.GET("/events/mine", r.Service.ListUserEvents)
	authed.GET("/events/:id/has-ticket", r.Service.HasTicket)
	authed.GET("/events/:id/tickets", r.Service.ListEventTickets)
	authed.GET("/events/:id/scanners", r.Service.ListEventScanners)

	authed.POST("/scanners", r.Service.CreateScanner)
	authed.PUT("/scanners/:id/password", r.Service.ResetScannerPassword)
	authed.DELETE("/scanners/:id", r.Service.DeleteScanner)

	authed.POST("/tickets", r.Service.IssueTicket)
	authed.GET("/tickets", r.Service.ListMyTickets)
	authed.GET("/tickets/transferable", r.Service.ListTransferableTickets)
	authed.GET("/tickets/:id", r.Service.GetTicket)

	scan := authed.Group("")
	scan.Use(middleware.ScannerOnly())
	scan.Use(middleware.ScanRateLimit(r.Redis, r.ScanLimit, r.ScanWindow))
	scan.POST("/validate-ticket/:id", r.Service.ValidateTicket)

	authed.POST("/transfers", r.Service.CreateTransfer)
	authed.GET("/transfers/sent", r.Service.ListSentTransfers)
	authed.GET("/transfers/received", r.Service.ListReceivedTransfers)
	authed.GET("/transfers/pending/count", r.Service.CountPendingTransfers)
	authed.GET("/transfers/:id/can-accept", r.Service.CanAcceptTransfer)
	authed.POST("/transfers/:id/accept", r.Service.AcceptTransfer)
	authed.POST("/transfers/:id/decline", r.Service.DeclineTransfer)

	authed.POST("/payments/connect", r.Service.ConnectUserAccount)
	authed.GET("/payments/onboarding", r.Service.UserOnboardingLink)
	authed.GET("/payments/status", r.Service.UserAccountStatus)
	authed.POST("/payments/checkout", r.Service.CreateCheckout)
	authed.POST("/payments/transfer-checkout", r.Service.CreateTransferCheckout)

	return app
}
