package handler

import (
	"net/http"
	"strconv"

	"github.com/examina/examina-backend/internal/middleware"
	"github.com/examina/examina-backend/internal/model"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/examina/examina-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentPortalHandler handles the student-facing attempt endpoints:
// lobby, registration, start, question paper, answers, submit and rank.
type StudentPortalHandler struct {
	sessionService *service.ExamSessionService
	answerService  *service.AnswerService
	scoringService *service.ScoringService
	rankingService *service.RankingService
	catalogService *service.CatalogService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	sessionService *service.ExamSessionService,
	answerService *service.AnswerService,
	scoringService *service.ScoringService,
	rankingService *service.RankingService,
	catalogService *service.CatalogService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		sessionService: sessionService,
		answerService:  answerService,
		scoringService: scoringService,
		rankingService: rankingService,
		catalogService: catalogService,
	}
}

// GetLobby godoc
// GET /api/v1/student/exams
// Lists all exams with the student's own session status overlaid.
func (h *StudentPortalHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lobby, err := h.sessionService.GetLobby(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if lobby == nil {
		lobby = []service.LobbyExam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": lobby})
}

// Register godoc
// POST /api/v1/student/exams/:exam_id/register
// Creates a REGISTERED session for the student. 409 on a duplicate.
func (h *StudentPortalHandler) Register(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.Register(c.Request.Context(), claims.StudentID, examID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// Start godoc
// POST /api/v1/student/exams/:exam_id/start
// Activates the student's session and returns the attempt view. Calling
// it again while the session is active returns the same view.
func (h *StudentPortalHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.sessionService.Start(c.Request.Context(), claims.StudentID, examID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// GetQuestions godoc
// GET /api/v1/student/exams/:exam_id/questions?page&limit
// Returns the sanitized question paper, paginated. Requires an active
// session so papers cannot be pulled without an attempt.
func (h *StudentPortalHandler) GetQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.sessionService.ActiveSession(c.Request.Context(), claims.StudentID, examID); err != nil {
		failFromService(c, err)
		return
	}

	paper, err := h.catalogService.Paper(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	page, limit := parsePagination(c, "limit")
	start := (page - 1) * limit
	if start > len(paper) {
		start = len(paper)
	}
	end := start + limit
	if end > len(paper) {
		end = len(paper)
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": paper[start:end]}, &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: len(paper),
		TotalPages: totalPages(len(paper), limit),
	})
}

// RecordAnswer godoc
// PUT /api/v1/student/sessions/:session_id/answers/:question_id
// Upserts one answer. Graded at write time for MCQ questions.
func (h *StudentPortalHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.answerService.RecordAnswer(c.Request.Context(), claims.StudentID, sessionID, questionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id":  record.SessionID,
		"question_id": record.QuestionID,
		"updated_at":  record.UpdatedAt,
	})
}

// Submit godoc
// POST /api/v1/student/sessions/:session_id/submit
// Finalizes the session. Idempotent: repeat submits return the stored
// result unchanged.
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.scoringService.Submit(c.Request.Context(), claims.StudentID, sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id":   result.ID,
		"status":       result.Status,
		"score":        result.Score,
		"percentage":   result.Percentage,
		"completed_at": result.CompletedAt,
	})
}

// GetRank godoc
// GET /api/v1/student/sessions/:session_id/rank
// Returns the session's rank and percentile within its exam cohort.
func (h *StudentPortalHandler) GetRank(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rank, err := h.rankingService.RankOf(c.Request.Context(), claims.StudentID, sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, rank)
}

// GetSummary godoc
// GET /api/v1/student/summary
// Returns the student's overall progress and latest rank.
func (h *StudentPortalHandler) GetSummary(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	summary, err := h.rankingService.Summary(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// parsePagination reads ?page and the given per-page query key, clamped
// to sane bounds.
func parsePagination(c *gin.Context, perPageKey string) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery(perPageKey, "20"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func totalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (totalItems + perPage - 1) / perPage
}
