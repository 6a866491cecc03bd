package handler

import (
	"errors"
	"net/http"

	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failFromService maps a service sentinel onto the response envelope.
// Unknown errors collapse to a 500 without leaking detail.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateRegistration):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateRegistration)
	case errors.Is(err, service.ErrNotRegistered):
		response.Fail(c, http.StatusNotFound, response.ErrNotRegistered)
	case errors.Is(err, service.ErrExamNotActive):
		response.Fail(c, http.StatusConflict, response.ErrExamNotActive)
	case errors.Is(err, service.ErrSessionClosed):
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	case errors.Is(err, service.ErrSessionNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, service.ErrSessionNotCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotCompleted)
	case errors.Is(err, service.ErrInvalidAnswer):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswer)
	case errors.Is(err, service.ErrUnknownQuestion):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownQuestion)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
