package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/llm"
	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// ListPolicies accepts an optional ?business filter.
func (h *Handler) ListPolicies(c *gin.Context) {
	businessID, ok := optionalQueryID(c, "business")
	if !ok {
		return
	}
	policies, err := h.svc.ListPolicies(c.Request.Context(), businessID)
	if err != nil {
		fail(c, "failed to list policies", err)
		return
	}
	response.Success(c, http.StatusOK, "policies retrieved", policies)
}

func (h *Handler) CreatePolicy(c *gin.Context) {
	var req usecase.PolicyInput
	if !bindJSON(c, &req) {
		return
	}
	policy, err := h.svc.CreatePolicy(c.Request.Context(), req)
	if err != nil {
		fail(c, "failed to create policy", err)
		return
	}
	response.Success(c, http.StatusCreated, "policy created successfully", policy)
}

func (h *Handler) GetPolicy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	policy, err := h.svc.GetPolicy(c.Request.Context(), id)
	if err != nil {
		fail(c, "policy not found", err)
		return
	}
	response.Success(c, http.StatusOK, "policy retrieved", policy)
}

func (h *Handler) UpdatePolicy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.PolicyInput
	if !bindJSON(c, &req) {
		return
	}
	policy, err := h.svc.UpdatePolicy(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to update policy", err)
		return
	}
	response.Success(c, http.StatusOK, "policy updated", policy)
}

func (h *Handler) DeletePolicy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePolicy(c.Request.Context(), id); err != nil {
		fail(c, "failed to delete policy", err)
		return
	}
	response.NoContent(c)
}

type policyDocumentRequest struct {
	DocumentID int64 `json:"document_id"`
}

func (h *Handler) AddPolicyDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req policyDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.AddPolicyDocument(c.Request.Context(), id, req.DocumentID); err != nil {
		fail(c, "failed to add document", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) UploadPolicyDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, closeFile, ok := uploadFromForm(c)
	if !ok {
		return
	}
	defer closeFile()

	doc, err := h.svc.UploadPolicyDocument(c.Request.Context(), id, up)
	if err != nil {
		fail(c, "failed to upload document", err)
		return
	}
	response.Success(c, http.StatusCreated, "document uploaded", doc)
}

func (h *Handler) RemovePolicyDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	if err := h.svc.RemovePolicyDocument(c.Request.Context(), id, docID); err != nil {
		fail(c, "failed to remove document", err)
		return
	}
	response.NoContent(c)
}

// RenewalComparison uses ?provider (or ?ai_provider), anthropic when absent.
func (h *Handler) RenewalComparison(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	provider := c.Query("provider")
	if provider == "" {
		provider = c.DefaultQuery("ai_provider", llm.ProviderAnthropic)
	}
	res, err := h.svc.GenerateRenewalComparison(c.Request.Context(), id, provider)
	if err != nil {
		fail(c, "failed to generate renewal comparison", err)
		return
	}
	response.Success(c, http.StatusOK, "renewal comparison generated", res)
}
