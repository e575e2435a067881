package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges username and password for an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, "login failed", err)
		return
	}
	response.Success(c, http.StatusOK, "login successful", res)
}

// Me returns the authenticated user and their memberships.
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.svc.Me(c.Request.Context())
	if err != nil {
		fail(c, "failed to load profile", err)
		return
	}
	response.Success(c, http.StatusOK, "profile retrieved", profile)
}
