package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taicc-readiness/internal/service"
	"taicc-readiness/utilities"
)

type AssessmentController struct {
	AssessmentService service.AssessmentService
	Tokens            *utilities.SessionTokens
}

func NewAssessmentController(assessmentService service.AssessmentService, tokens *utilities.SessionTokens) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService, Tokens: tokens}
}

func sessionID(c *gin.Context) string {
	return c.GetString(utilities.SessionIDKey)
}

// Login creates a session and returns its bearer token.
func (ac *AssessmentController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: domain and tier are required"})
		return
	}
	view, err := ac.AssessmentService.Start(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := ac.Tokens.GenerateToken(view.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "session": view})
}

func (ac *AssessmentController) GetSession(c *gin.Context) {
	view, err := ac.AssessmentService.View(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ac *AssessmentController) Pay(c *gin.Context) {
	view, err := ac.AssessmentService.Pay(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ac *AssessmentController) Continue(c *gin.Context) {
	view, err := ac.AssessmentService.Continue(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ac *AssessmentController) GetQuestions(c *gin.Context) {
	view, err := ac.AssessmentService.Questions(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ac *AssessmentController) SaveAnswers(c *gin.Context) {
	var req struct {
		Answers []service.AnswerInput `json:"answers" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: answers with question ids are required"})
		return
	}
	progress, err := ac.AssessmentService.Answer(c.Request.Context(), sessionID(c), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (ac *AssessmentController) Submit(c *gin.Context) {
	results, err := ac.AssessmentService.Submit(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// DownloadReport serves the same PDF bytes that were emailed.
func (ac *AssessmentController) DownloadReport(c *gin.Context) {
	doc, err := ac.AssessmentService.Report(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}
