package routes

import (
	"net/http"
	"time"

	"machly/handlers"
	"machly/middleware"
	"machly/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handler sets the route groups wire up.
type HandlerBundle struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Machine      *handlers.MachineHandler
	Provider     *handlers.ProviderHandler
	Booking      *handlers.BookingHandler
	Review       *handlers.ReviewHandler
	Notification *handlers.NotificationHandler
	Admin        *handlers.AdminHandler
}

// RegisterAuthRoutes registers registration, login and logout.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)
		api.POST("/logout", middleware.JWTAuthMiddleware(), hb.Auth.LogoutHandler)
	}
}

// RegisterUserRoutes registers the authenticated profile endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("/me", hb.User.MeHandler)
		api.PUT("/me", hb.User.UpdateProfileHandler)
		api.PUT("/me/password", hb.User.ChangePasswordHandler)
		api.POST("/me/avatar", hb.User.UploadAvatarHandler)
	}
}

// RegisterMachineRoutes registers the public catalogue endpoints.
func RegisterMachineRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/machines")
	{
		api.GET("", hb.Machine.SearchHandler)
		api.GET("/:id", hb.Machine.GetMachineHandler)
		api.GET("/:id/calendar", hb.Machine.CalendarHandler)
		api.GET("/:id/availability", hb.Machine.AvailabilityHandler)
		api.GET("/:id/reviews", hb.Machine.ReviewsHandler)
	}
}

// RegisterProviderRoutes registers the provider machine-management endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/provider")
	api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleProvider))
	{
		api.POST("/machines", hb.Provider.CreateMachineHandler)
		api.GET("/machines", hb.Provider.ListMachinesHandler)
		api.PUT("/machines/:id", hb.Provider.UpdateMachineHandler)
		api.DELETE("/machines/:id", hb.Provider.DeleteMachineHandler)
		api.POST("/machines/:id/photos", hb.Provider.AddPhotoHandler)
		api.POST("/machines/:id/calendar/block", hb.Provider.BlockDatesHandler)
		api.DELETE("/machines/:id/calendar/:entryId", hb.Provider.UnblockDatesHandler)
		api.GET("/machines/:id/bookings", hb.Provider.MachineBookingsHandler)
		api.GET("/bookings", hb.Provider.ProviderBookingsHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints. Status
// updates and check stages are open to both parties; the services enforce
// who may do what.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.POST("", middleware.RequireRole(models.RoleRenter), hb.Booking.CreateHandler)
		api.GET("", hb.Booking.ListHandler)
		api.GET("/:id", hb.Booking.GetHandler)
		api.PUT("/:id/status", hb.Booking.UpdateStatusHandler)
		api.POST("/:id/cancel", hb.Booking.CancelHandler)
		api.POST("/:id/checkin", hb.Booking.CheckInHandler)
		api.POST("/:id/checkout", hb.Booking.CheckOutHandler)
	}
}

// RegisterReviewRoutes registers renter review creation. Deletion is
// admin-only and registered under the admin group.
func RegisterReviewRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/reviews")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.POST("", middleware.RequireRole(models.RoleRenter), hb.Review.CreateHandler)
	}
}

// RegisterNotificationRoutes registers the notification feed.
func RegisterNotificationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/notifications")
	api.Use(middleware.JWTAuthMiddleware())
	{
		api.GET("", hb.Notification.ListHandler)
		api.PUT("/:id/read", hb.Notification.MarkReadHandler)
	}
}

// RegisterAdminRoutes registers the oversight surface.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	{
		api.GET("/stats", hb.Admin.StatsHandler)
		api.GET("/users", hb.Admin.ListUsersHandler)
		api.POST("/users", hb.Admin.CreateAdminHandler)
		api.GET("/users/:id", hb.Admin.GetUserHandler)
		api.PUT("/users/:id/verify", hb.Admin.VerifyProviderHandler)
		api.PUT("/users/:id/role", hb.Admin.SetUserRoleHandler)
		api.DELETE("/users/:id", hb.Admin.DeleteUserHandler)
		api.GET("/bookings", hb.Admin.ListBookingsHandler)
		api.POST("/bookings/:id/cancel", hb.Admin.CancelBookingHandler)
		api.GET("/machines", hb.Admin.ListMachinesHandler)
		api.PUT("/machines/:id/active", hb.Admin.SetMachineActiveHandler)
		api.DELETE("/machines/:id", hb.Admin.DeleteMachineHandler)
		api.DELETE("/reviews/:id", hb.Admin.DeleteReviewHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterMachineRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
