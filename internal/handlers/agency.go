package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

func (h *Handler) ListAgencies(c *gin.Context) {
	agencies, err := h.svc.ListAgencies(c.Request.Context())
	if err != nil {
		fail(c, "failed to list agencies", err)
		return
	}
	response.Success(c, http.StatusOK, "agencies retrieved", agencies)
}

func (h *Handler) GetAgency(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	agency, err := h.svc.GetAgency(c.Request.Context(), id)
	if err != nil {
		fail(c, "agency not found", err)
		return
	}
	response.Success(c, http.StatusOK, "agency retrieved", agency)
}

// SetMembership adds a user to an agency or changes their role.
func (h *Handler) SetMembership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.MembershipInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.SetMembership(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to update membership", err)
		return
	}
	response.Success(c, http.StatusOK, "membership updated", m)
}
