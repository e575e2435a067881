package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// VoiceWebhook receives voice provider events. The provider expects the bare
// {status, message} body rather than the API envelope.
func (h *Handler) VoiceWebhook(c *gin.Context) {
	var payload model.VoiceWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, usecase.WebhookResult{Status: usecase.WebhookError, Message: "invalid payload: " + err.Error()})
		return
	}
	res := h.svc.ProcessVoiceWebhook(c.Request.Context(), payload)
	c.JSON(res.HTTPStatus, res)
}
