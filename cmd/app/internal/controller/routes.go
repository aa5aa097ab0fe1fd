package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taicc-readiness/internal/service"
	"taicc-readiness/utilities"
)

// RouteDeps carries what the routes need. Metrics and Admin may be nil.
type RouteDeps struct {
	AssessmentService service.AssessmentService
	Tokens            *utilities.SessionTokens
	Metrics           http.Handler
	// Admin holds basic auth credentials; nil leaves /admin unregistered.
	Admin gin.Accounts
}

func RegisterRoutes(r *gin.Engine, deps RouteDeps) {
	catalogCtrl := NewCatalogController(deps.AssessmentService)
	r.GET("/health", catalogCtrl.Health)
	r.GET("/catalog", catalogCtrl.GetCatalog)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	assessmentCtrl := NewAssessmentController(deps.AssessmentService, deps.Tokens)
	sessionRoutes := r.Group("/session", RequireReady(deps.AssessmentService))
	{
		sessionRoutes.POST("/login", assessmentCtrl.Login)

		authed := sessionRoutes.Group("", utilities.AuthMiddleware(deps.Tokens))
		authed.GET("", assessmentCtrl.GetSession)
		authed.POST("/payment", assessmentCtrl.Pay)
		authed.POST("/payment/continue", assessmentCtrl.Continue)
		authed.GET("/questions", assessmentCtrl.GetQuestions)
		authed.POST("/answers", assessmentCtrl.SaveAnswers)
		authed.POST("/submit", assessmentCtrl.Submit)
		authed.GET("/report", assessmentCtrl.DownloadReport)
	}

	if len(deps.Admin) > 0 {
		adminCtrl := NewAdminController(deps.AssessmentService)
		adminRoutes := r.Group("/admin", gin.BasicAuth(deps.Admin))
		adminRoutes.GET("/results", adminCtrl.GetResults)
	}
}
