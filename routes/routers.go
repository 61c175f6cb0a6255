package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"staycation/config"
	"staycation/controllers"
	_ "staycation/docs"
	middlewares "staycation/middleware"
	"staycation/models"
)

// NewRouter wires the global middleware chain and the API routes.
func NewRouter(cfg *config.Config, svc *Services, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.RequestLogger(log),
		middlewares.Metrics(),
		cors.New(corsConfig(cfg)),
		middlewares.ErrorHandler(log),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 1, "mess": "ok"})
	})

	SetupRoutes(router, svc, cfg)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	configCors := cors.DefaultConfig()
	configCors.AddAllowHeaders("Authorization", middlewares.RequestIDHeader)
	configCors.AddExposeHeaders(middlewares.RequestIDHeader)
	configCors.AllowCredentials = true
	if len(cfg.Server.AllowedOrigins) > 0 {
		configCors.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		configCors.AllowOriginFunc = func(origin string) bool { return !cfg.IsProduction() }
	}
	return configCors
}

func SetupRoutes(router *gin.Engine, svc *Services, cfg *config.Config) {
	authCtrl := controllers.NewAuthController(svc.Auth, svc.Users, cfg.IsProduction())
	userCtrl := controllers.NewUserController(svc.Users)
	tenantCtrl := controllers.NewTenantController(svc.Tenants, svc.Bookings, svc.Properties)
	propertyCtrl := controllers.NewPropertyController(svc.Properties, svc.Reviews)
	roomCtrl := controllers.NewRoomController(svc.Rooms)
	ruleCtrl := controllers.NewPriceRuleController(svc.PriceRules)
	holidayCtrl := controllers.NewHolidayController(svc.Holidays)
	bookingCtrl := controllers.NewBookingController(svc.Bookings)
	reviewCtrl := controllers.NewReviewController(svc.Reviews)
	uploadCtrl := controllers.NewUploadController(svc.Storage, svc.Uploader)
	cronCtrl := controllers.NewCronController(svc.Cron)

	signedIn := middlewares.AuthMiddleware(svc.Tokens)
	tenantOnly := middlewares.AuthMiddleware(svc.Tokens, models.RoleTenant)
	adminOnly := middlewares.AuthMiddleware(svc.Tokens, models.RoleAdmin)
	catalogEditors := middlewares.AuthMiddleware(svc.Tokens, models.RoleTenant, models.RoleAdmin)
	verified := middlewares.RequireVerified()

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authCtrl.Register)
	auth.POST("/register/email", authCtrl.RegisterEmail)
	auth.POST("/verify-email", authCtrl.VerifyEmail)
	auth.POST("/resend-verification", authCtrl.ResendVerification)
	auth.POST("/login", authCtrl.Login)
	auth.POST("/logout", authCtrl.Logout)
	auth.POST("/forgot-password", authCtrl.ForgotPassword)
	auth.POST("/reset-password", authCtrl.ResetPassword)
	auth.GET("/me", signedIn, authCtrl.Me)

	api.POST("/oauth/google", authCtrl.GoogleLogin)

	user := api.Group("/user", signedIn)
	user.GET("/profile", userCtrl.GetProfile)
	user.PUT("/profile", userCtrl.UpdateProfile)
	user.PUT("/password", userCtrl.ChangePassword)
	user.POST("/avatar", userCtrl.UploadAvatar)

	tenant := api.Group("/tenant", tenantOnly)
	tenant.GET("/profile", tenantCtrl.GetProfile)
	tenant.PUT("/profile", tenantCtrl.UpdateProfile)
	tenant.GET("/properties", tenantCtrl.ListProperties)
	tenant.GET("/bookings", tenantCtrl.ListBookings)
	tenant.POST("/bookings/:id/confirm", tenantCtrl.ConfirmBooking)
	tenant.POST("/bookings/:id/reject", tenantCtrl.RejectBooking)
	tenant.POST("/bookings/:id/cancel", tenantCtrl.CancelBooking)
	tenant.GET("/calendar", tenantCtrl.Calendar)
	tenant.GET("/reports/sales", tenantCtrl.SalesReport)
	tenant.GET("/reports/occupancy", tenantCtrl.OccupancyReport)

	properties := api.Group("/properties")
	properties.GET("", propertyCtrl.Search)
	properties.GET("/categories", propertyCtrl.ListCategories)
	properties.POST("/categories", catalogEditors, propertyCtrl.CreateCategory)
	properties.GET("/amenities", propertyCtrl.ListAmenities)
	properties.POST("/amenities", catalogEditors, propertyCtrl.CreateAmenity)
	properties.GET("/:id", propertyCtrl.GetDetail)
	properties.GET("/:id/calendar", propertyCtrl.Calendar)
	properties.GET("/:id/reviews", propertyCtrl.ListReviews)
	properties.POST("", tenantOnly, propertyCtrl.Create)
	properties.PUT("/:id", tenantOnly, propertyCtrl.Update)
	properties.DELETE("/:id", tenantOnly, propertyCtrl.Delete)
	properties.POST("/:id/images", tenantOnly, propertyCtrl.AddImages)

	rules := properties.Group("/:id/price-rules", tenantOnly)
	rules.GET("", ruleCtrl.List)
	rules.POST("", ruleCtrl.Create)
	rules.PUT("/:ruleId", ruleCtrl.Update)
	rules.DELETE("/:ruleId", ruleCtrl.Delete)

	api.GET("/categories", propertyCtrl.ListCategories)
	api.GET("/amenities", propertyCtrl.ListAmenities)

	rooms := api.Group("/rooms")
	rooms.GET("/:id", roomCtrl.Get)
	rooms.GET("/:id/availability", roomCtrl.Availability)
	rooms.GET("/:id/prices", roomCtrl.Prices)
	rooms.GET("/:id/blocks", roomCtrl.ListBlocks)
	rooms.POST("", tenantOnly, roomCtrl.Create)
	rooms.PUT("/:id", tenantOnly, roomCtrl.Update)
	rooms.DELETE("/:id", tenantOnly, roomCtrl.Delete)
	rooms.POST("/:id/images", tenantOnly, roomCtrl.AddImages)
	rooms.POST("/:id/blocks", tenantOnly, roomCtrl.AddBlock)
	rooms.DELETE("/:id/blocks/:blockId", tenantOnly, roomCtrl.DeleteBlock)

	holidays := api.Group("/holidays")
	holidays.GET("", holidayCtrl.List)
	holidays.POST("", adminOnly, holidayCtrl.Create)
	holidays.DELETE("/:id", adminOnly, holidayCtrl.Delete)

	bookings := api.Group("/bookings", signedIn, verified)
	bookings.GET("/quote", bookingCtrl.Quote)
	bookings.POST("", bookingCtrl.Create)
	bookings.GET("", bookingCtrl.List)
	bookings.GET("/:id", bookingCtrl.Get)
	bookings.POST("/:id/payment-proof", bookingCtrl.UploadPaymentProof)
	bookings.POST("/:id/cancel", bookingCtrl.Cancel)

	reviews := api.Group("/reviews")
	reviews.GET("/property/:propertyId", reviewCtrl.ListForProperty)
	reviews.POST("", signedIn, verified, reviewCtrl.Create)
	reviews.POST("/:id/reply", tenantOnly, reviewCtrl.Reply)

	uploads := api.Group("/uploads")
	uploads.POST("/images", signedIn, uploadCtrl.UploadImages)
	uploads.GET("/*filepath", uploadCtrl.Serve)

	cronGroup := api.Group("/cron", middlewares.CronAuth(cfg.Cron.Secret))
	cronGroup.POST("/cancel-expired", cronCtrl.CancelExpired)
	cronGroup.POST("/reminders", cronCtrl.SendReminders)
	cronGroup.POST("/complete", cronCtrl.CompleteStays)
}
