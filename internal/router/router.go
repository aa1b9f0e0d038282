package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/handlers"
	"github.com/libreclinica/api-gateway/internal/middleware"
)

// Dependencies carries everything the route tree needs
type Dependencies struct {
	Config         *config.Config
	DB             *database.DB
	AuthHandler    *handlers.AuthHandler
	AuditHandler   *handlers.AuditHandler
	StudyHandler   *handlers.StudyHandler
	SubjectHandler *handlers.SubjectHandler
	FormHandler    *handlers.FormHandler
	RateLimiter    *middleware.RateLimiter
	Logger         *logrus.Logger
}

// SetupRouter configures all API routes
func SetupRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(deps.RateLimiter.Middleware())

	// Health check stays open; it reports database reachability.
	router.GET("/health", func(c *gin.Context) {
		if err := deps.DB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", deps.AuthHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(&deps.Config.JWT, deps.Logger))
	{
		authed.GET("/service-status", deps.AuditHandler.GetServiceStatus)

		// Audit trail and signatures
		authed.POST("/audit", deps.AuditHandler.RecordAuditEvent)
		authed.GET("/audit", deps.AuditHandler.GetAuditLogs)
		authed.POST("/signatures", deps.AuditHandler.RecordElectronicSignature)
		authed.GET("/signatures", deps.AuditHandler.GetSignatures)

		// Studies
		studies := authed.Group("/studies")
		{
			studies.GET("", deps.StudyHandler.GetStudies)
			studies.POST("", middleware.RequireAdmin(), deps.StudyHandler.CreateStudy)
			studies.GET("/:studyId/metadata", deps.StudyHandler.GetStudyMetadata)
			studies.PUT("/:studyId", middleware.RequireAdmin(), deps.StudyHandler.UpdateStudy)
			studies.DELETE("/:studyId", middleware.RequireAdmin(), deps.StudyHandler.DeleteStudy)

			// Subjects under a study
			studies.GET("/:studyId/subjects", deps.SubjectHandler.GetSubjects)
			studies.POST("/:studyId/subjects", deps.SubjectHandler.EnrollSubject)
			studies.GET("/:studyId/subjects/:subjectId", deps.SubjectHandler.GetSubject)
			studies.GET("/:studyId/subjects/:subjectId/audit", deps.AuditHandler.GetSubjectAuditTrail)
		}

		// Forms
		authed.GET("/subjects/:subjectId/forms", deps.FormHandler.GetForms)
		forms := authed.Group("/forms")
		{
			forms.GET("/:formId", deps.FormHandler.GetForm)
			forms.PUT("/:formId/status", deps.FormHandler.UpdateFormStatus)
			forms.GET("/:formId/audit", deps.AuditHandler.GetFormAuditTrail)
		}
	}

	return router
}
