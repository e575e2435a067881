// Package handlers exposes the agency use cases over HTTP.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// Handler serves every API route on top of one Service.
type Handler struct {
	svc *usecase.Service
}

// New creates a Handler.
func New(svc *usecase.Service) *Handler {
	return &Handler{svc: svc}
}

// statusFromError maps a use case error to an HTTP status.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrMissingScopeParameter),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrUnsupportedProvider),
		errors.Is(err, apperrors.ErrNoDocuments):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNoAgencyAssociation),
		errors.Is(err, apperrors.ErrForbiddenCrossTenant):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrExternalService):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err in the response envelope. Field errors travel in data.
// Internal errors are not echoed to the client.
func fail(c *gin.Context, message string, err error) {
	status := statusFromError(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		response.Error(c, status, message, errors.New("internal server error"))
		return
	}
	if fields := apperrors.FieldErrors(err); len(fields) > 0 {
		response.Error(c, status, message, err, fields)
		return
	}
	response.Error(c, status, message, err)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, fmt.Sprintf("invalid %s", name), fmt.Errorf("%q is not a valid id", c.Param(name)))
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional positive id from the query string.
func optionalQueryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, fmt.Sprintf("invalid %s", name), fmt.Errorf("%q is not a valid id", raw))
		return nil, false
	}
	return &id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ValidationError(c, "invalid request", err)
		return false
	}
	return true
}
