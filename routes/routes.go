package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/phillip/lifedrop-go/config"
	controllers "github.com/phillip/lifedrop-go/controllers"
	middleware "github.com/phillip/lifedrop-go/middleware"
	models "github.com/phillip/lifedrop-go/models"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// public
	r.GET("/health", controllers.Health(cfg))
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
	r.POST("/auth/jwt", controllers.ExchangeToken(cfg))
	r.GET("/donation-requests", controllers.ListPendingRequests(cfg))
	r.GET("/search-donors", controllers.SearchDonors(cfg))
	r.GET("/blogs", controllers.ListPublishedBlogs(cfg))
	r.GET("/blogs/:id", controllers.GetBlog(cfg))
	r.POST("/contact", controllers.Contact(cfg))

	// protected
	auth := r.Group("")
	auth.Use(middleware.AuthMiddleware(cfg))

	active := middleware.RequireRole(cfg)
	admin := middleware.RequireRole(cfg, models.RoleAdmin)
	staff := middleware.RequireRole(cfg, models.RoleAdmin, models.RoleVolunteer)

	// users
	auth.POST("/users", controllers.Register(cfg))
	auth.GET("/users/me", controllers.GetMe(cfg))
	auth.GET("/users/role", controllers.GetRole(cfg))
	auth.PATCH("/users/me", active, controllers.UpdateMe(cfg))
	auth.GET("/all-users", admin, controllers.ListUsers(cfg))
	auth.PATCH("/users/:email/role", admin, controllers.UpdateUserRole(cfg))
	auth.PATCH("/users/:email/status", admin, controllers.UpdateUserStatus(cfg))
	auth.DELETE("/users/:email", admin, controllers.DeleteUser(cfg))

	// donation requests
	auth.POST("/create-request", active, controllers.CreateRequest(cfg))
	auth.GET("/my-donation-requests", controllers.ListMyRequests(cfg))
	auth.GET("/my-donation-requests/recent", controllers.RecentMyRequests(cfg))
	auth.GET("/all-donation-requests", staff, controllers.ListAllRequests(cfg))
	requests := auth.Group("/donation-requests")
	{
		requests.GET("/:id", controllers.GetRequest(cfg))
		requests.PATCH("/:id", active, controllers.UpdateRequest(cfg))
		requests.PATCH("/:id/donate", active, controllers.ClaimRequest(cfg))
		requests.PATCH("/:id/status", active, controllers.UpdateRequestStatus(cfg))
		requests.PATCH("/:id/emergency", admin, controllers.SetEmergency(cfg))
		requests.DELETE("/:id", active, controllers.DeleteRequest(cfg))
	}

	// blogs
	auth.POST("/blogs", staff, controllers.CreateBlog(cfg))
	auth.GET("/manage-blogs", staff, controllers.ListManagedBlogs(cfg))
	auth.PATCH("/blogs/:id/status", admin, controllers.UpdateBlogStatus(cfg))
	auth.PATCH("/blogs/:id/like", active, controllers.ToggleLike(cfg))
	auth.DELETE("/blogs/:id", admin, controllers.DeleteBlog(cfg))

	// volunteers
	auth.POST("/volunteer-applications", middleware.RequireRole(cfg, models.RoleDonor), controllers.ApplyVolunteer(cfg))
	auth.GET("/volunteer-applications", admin, controllers.ListVolunteerApplications(cfg))
	auth.PATCH("/volunteer-applications/:id/status", admin, controllers.ReviewVolunteerApplication(cfg))

	// funding
	auth.POST("/create-payment-intent", active, controllers.CreatePaymentIntent(cfg))
	auth.POST("/funding", active, controllers.ConfirmFunding(cfg))
	auth.GET("/funding", controllers.ListFunding(cfg))
	auth.GET("/funding/total", controllers.FundingTotal(cfg))

	// dashboards
	auth.GET("/admin-stats", staff, controllers.AdminStats(cfg))

	notifs := auth.Group("/notifications")
	{
		notifs.GET("", controllers.ListNotifications(cfg))
		notifs.PATCH("/:id/read", controllers.MarkNotificationRead(cfg))
	}

	auth.POST("/upload", active, controllers.UploadImage(cfg))
}
