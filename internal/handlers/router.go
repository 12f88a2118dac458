package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/services"
	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	authHandler       *AuthHandler
	userHandler       *UserHandler
	disciplineHandler *DisciplineHandler
	courseHandler     *CourseHandler
	reviewHandler     *ReviewHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *AuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		serviceManager:    serviceManager,
		authHandler:       NewAuthHandler(serviceManager.User(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		disciplineHandler: NewDisciplineHandler(serviceManager.Discipline(), serviceManager.Course(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), serviceManager.Review(), serviceManager.ImportExport(), logger),
		reviewHandler:     NewReviewHandler(serviceManager.Review(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:    NewAuthMiddleware(serviceManager.User()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.RequireAuth()
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		// Auth routes, signup/login/forgot/reset are public
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", hm.authHandler.Signup)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/forgot", hm.authHandler.ForgotPassword)
			auth.PATCH("/reset/:token", hm.authHandler.ResetPassword)

			auth.GET("/profile", requireAuth, hm.authHandler.GetProfile)
			auth.PATCH("/profile", requireAuth, hm.authHandler.UpdateProfile)
			auth.DELETE("/:userId", requireAuth, hm.authHandler.DeleteUser)
		}

		// Discipline routes
		disciplines := v1.Group("/disciplines", requireAuth)
		{
			disciplines.GET("", hm.disciplineHandler.ListDisciplines)
			disciplines.GET("/:slug", hm.disciplineHandler.GetDiscipline)
			disciplines.GET("/:slug/courses", hm.disciplineHandler.ListCourses)

			// Create/modify disciplines - Admins only
			disciplines.POST("", adminOnly, hm.disciplineHandler.CreateDiscipline)
			disciplines.PATCH("/:slug", adminOnly, hm.disciplineHandler.UpdateDiscipline)
			disciplines.DELETE("/:slug", adminOnly, hm.disciplineHandler.DeleteDiscipline)
			disciplines.POST("/:slug/courses", adminOnly, hm.disciplineHandler.CreateCourse)
		}

		// Course routes
		courses := v1.Group("/courses", requireAuth)
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/export", adminOnly, hm.courseHandler.ExportCourses)
			courses.POST("/import", adminOnly, hm.courseHandler.ImportCourses)
			courses.GET("/:slug", hm.courseHandler.GetCourse)
			courses.PATCH("/:slug", adminOnly, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:slug", adminOnly, hm.courseHandler.DeleteCourse)

			courses.GET("/:slug/reviews", hm.courseHandler.ListReviews)
			courses.POST("/:slug/reviews", hm.courseHandler.CreateReview)
		}

		// Review routes, ownership is checked by the service
		reviews := v1.Group("/reviews", requireAuth)
		{
			reviews.GET("/:id", hm.reviewHandler.GetReview)
			reviews.PATCH("/:id", hm.reviewHandler.UpdateReview)
			reviews.DELETE("/:id", hm.reviewHandler.DeleteReview)
		}

		// User directory
		users := v1.Group("/users", requireAuth)
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}

		// Catalog analytics - Admins only
		dashboard := v1.Group("/dashboard", requireAuth, adminOnly)
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetStats)
			dashboard.GET("/rating-distribution", hm.dashboardHandler.GetRatingDistribution)
			dashboard.GET("/top-courses", hm.dashboardHandler.GetTopCourses)
			dashboard.GET("/disciplines", hm.dashboardHandler.GetDisciplinePerformance)
		}
	}

	// Health check endpoint
	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "course-review-service",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "course-review-service",
	})
}
