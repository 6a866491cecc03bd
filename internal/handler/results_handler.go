package handler

import (
	"net/http"

	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResultsHandler exposes completed exam results to the admin surface.
type ResultsHandler struct {
	rankingService *service.RankingService
	catalogService *service.CatalogService
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(rankingService *service.RankingService, catalogService *service.CatalogService) *ResultsHandler {
	return &ResultsHandler{
		rankingService: rankingService,
		catalogService: catalogService,
	}
}

// GetExamResults godoc
// GET /api/v1/admin/exams/:exam_id/results?page&per_page
// Lists completed sessions of one exam, best scores first.
func (h *ResultsHandler) GetExamResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.catalogService.GetExam(c.Request.Context(), examID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	page, perPage := parsePagination(c, "per_page")

	results, total, err := h.rankingService.ExamResults(c.Request.Context(), examID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages(int(total), perPage),
	})
}
