package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context())
	if err != nil {
		fail(c, "failed to list documents", err)
		return
	}
	response.Success(c, http.StatusOK, "documents retrieved", docs)
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var req usecase.DocumentInput
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.svc.CreateDocument(c.Request.Context(), req)
	if err != nil {
		fail(c, "failed to create document", err)
		return
	}
	response.Success(c, http.StatusCreated, "document created successfully", doc)
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.GetDocument(c.Request.Context(), id)
	if err != nil {
		fail(c, "document not found", err)
		return
	}
	response.Success(c, http.StatusOK, "document retrieved", doc)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.DocumentInput
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.svc.UpdateDocument(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to update document", err)
		return
	}
	response.Success(c, http.StatusOK, "document updated", doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDocument(c.Request.Context(), id); err != nil {
		fail(c, "failed to delete document", err)
		return
	}
	response.NoContent(c)
}

// SetVisibility returns a handler that makes a template public or private.
func (h *Handler) SetVisibility(public bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		doc, err := h.svc.SetDocumentVisibility(c.Request.Context(), id, public)
		if err != nil {
			fail(c, "failed to change visibility", err)
			return
		}
		response.Success(c, http.StatusOK, "visibility updated", doc)
	}
}

func (h *Handler) ListDocumentBusinesses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bds, err := h.svc.ListDocumentBusinesses(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to list businesses", err)
		return
	}
	response.Success(c, http.StatusOK, "businesses retrieved", bds)
}

func (h *Handler) AddField(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.FieldInput
	if !bindJSON(c, &req) {
		return
	}
	field, err := h.svc.AddField(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to add field", err)
		return
	}
	response.Success(c, http.StatusCreated, "field created", field)
}

// ListFields accepts an optional ?document filter.
func (h *Handler) ListFields(c *gin.Context) {
	docID, ok := optionalQueryID(c, "document")
	if !ok {
		return
	}
	fields, err := h.svc.ListFields(c.Request.Context(), docID)
	if err != nil {
		fail(c, "failed to list fields", err)
		return
	}
	response.Success(c, http.StatusOK, "fields retrieved", fields)
}

func (h *Handler) GetField(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	field, err := h.svc.GetField(c.Request.Context(), id)
	if err != nil {
		fail(c, "field not found", err)
		return
	}
	response.Success(c, http.StatusOK, "field retrieved", field)
}

func (h *Handler) ListBusinessDocumentAssignments(c *gin.Context) {
	bds, err := h.svc.ListAllBusinessDocuments(c.Request.Context())
	if err != nil {
		fail(c, "failed to list business documents", err)
		return
	}
	response.Success(c, http.StatusOK, "business documents retrieved", bds)
}

func (h *Handler) GetBusinessDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bd, err := h.svc.GetBusinessDocument(c.Request.Context(), id)
	if err != nil {
		fail(c, "business document not found", err)
		return
	}
	response.Success(c, http.StatusOK, "business document retrieved", bd)
}

type statusRequest struct {
	Status model.BusinessDocumentStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateBusinessDocumentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	bd, err := h.svc.UpdateBusinessDocumentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, "failed to update status", err)
		return
	}
	response.Success(c, http.StatusOK, "status updated", bd)
}

type fieldValuesRequest struct {
	FieldValues []usecase.FieldValueInput `json:"field_values"`
}

func (h *Handler) UpdateBusinessDocumentFieldValues(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req fieldValuesRequest
	if !bindJSON(c, &req) {
		return
	}
	values, err := h.svc.UpdateBusinessDocumentFieldValues(c.Request.Context(), id, req.FieldValues)
	if err != nil {
		fail(c, "failed to update field values", err)
		return
	}
	response.Success(c, http.StatusOK, "field values updated", values)
}

// CallCustomer phones the customer to collect the missing required fields.
func (h *Handler) CallCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.CallCustomer(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to initiate call", err)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res)
}
