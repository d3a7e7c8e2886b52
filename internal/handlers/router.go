package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authService services.AuthService
	repo        repositories.Repository

	authHandler         *AuthHandler
	userHandler         *UserHandler
	requestHandler      *RequestHandler
	reviewHandler       *ReviewHandler
	notificationHandler *NotificationHandler
	adminHandler        *AdminHandler
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	repo repositories.Repository,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authService:         serviceManager.Auth,
		repo:                repo,
		authHandler:         NewAuthHandler(serviceManager.Auth, logger),
		userHandler:         NewUserHandler(serviceManager.User, serviceManager.Availability, logger),
		requestHandler:      NewRequestHandler(serviceManager.Request, logger),
		reviewHandler:       NewReviewHandler(serviceManager.Review, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification, logger),
		adminHandler:        NewAdminHandler(serviceManager.Admin, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Public auth routes
		v1.POST("/auth/signup", hm.authHandler.SignUp)
		v1.POST("/auth/signin", hm.authHandler.SignIn)

		authed := v1.Group("")
		authed.Use(AuthMiddleware(hm.authService))

		authed.GET("/auth/session", hm.authHandler.Session)
		authed.PUT("/profile", hm.userHandler.UpdateProfile)

		tutors := authed.Group("/tutors")
		{
			tutors.GET("/search", hm.userHandler.SearchTutors)
			tutors.PUT("/availability", hm.userHandler.SetAvailability)
			tutors.GET("/:id", hm.userHandler.GetTutor)
			tutors.GET("/:id/availability", hm.userHandler.GetAvailability)
		}

		authed.GET("/students/:id", hm.userHandler.GetStudent)

		requests := authed.Group("/requests")
		{
			requests.POST("", hm.requestHandler.CreateRequest)
			requests.GET("", hm.requestHandler.ListRequests)
			requests.PUT("/:id", hm.requestHandler.UpdateRequest)
		}

		reviews := authed.Group("/reviews")
		{
			reviews.POST("", hm.reviewHandler.SubmitReview)
			reviews.GET("/tutor/:tutorId", hm.reviewHandler.TutorReviews)
			reviews.GET("/student/:studentId", hm.reviewHandler.StudentReviews)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.PUT("/read-all", hm.notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", hm.notificationHandler.MarkRead)
		}

		// Admin routes; role checks live in AdminService
		admin := authed.Group("/admin")
		{
			admin.GET("/tutors/pending", hm.adminHandler.PendingTutors)
			admin.PUT("/tutors/:id/approve", hm.adminHandler.SetTutorApproval)
			admin.GET("/reviews/pending", hm.adminHandler.PendingReviews)
			admin.GET("/reviews/approved", hm.adminHandler.ApprovedReviews)
			admin.PUT("/reviews/:id", hm.adminHandler.ModerateReview)
			admin.GET("/users", hm.adminHandler.AllUsers)
			admin.GET("/users/export", hm.adminHandler.ExportUsers)
			admin.GET("/users/:id", hm.adminHandler.UserDetail)
		}
	}
}

// HealthCheck reports service liveness and store reachability.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "tutoring-service",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tutoring-service",
	})
}
