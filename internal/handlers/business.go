package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// ListBusinesses accepts optional ?agency_id and ?customer_id filters.
func (h *Handler) ListBusinesses(c *gin.Context) {
	agencyID, ok := optionalQueryID(c, "agency_id")
	if !ok {
		return
	}
	customerID, ok := optionalQueryID(c, "customer_id")
	if !ok {
		return
	}
	businesses, err := h.svc.ListBusinesses(c.Request.Context(), agencyID, customerID)
	if err != nil {
		fail(c, "failed to list businesses", err)
		return
	}
	response.Success(c, http.StatusOK, "businesses retrieved", businesses)
}

func (h *Handler) CreateBusiness(c *gin.Context) {
	var req usecase.BusinessInput
	if !bindJSON(c, &req) {
		return
	}
	business, err := h.svc.CreateBusiness(c.Request.Context(), req)
	if err != nil {
		fail(c, "failed to create business", err)
		return
	}
	response.Success(c, http.StatusCreated, "business created successfully", business)
}

func (h *Handler) GetBusiness(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	business, err := h.svc.GetBusiness(c.Request.Context(), id)
	if err != nil {
		fail(c, "business not found", err)
		return
	}
	response.Success(c, http.StatusOK, "business retrieved", business)
}

func (h *Handler) UpdateBusiness(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.BusinessInput
	if !bindJSON(c, &req) {
		return
	}
	business, err := h.svc.UpdateBusiness(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to update business", err)
		return
	}
	response.Success(c, http.StatusOK, "business updated", business)
}

func (h *Handler) DeleteBusiness(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBusiness(c.Request.Context(), id); err != nil {
		fail(c, "failed to delete business", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ListBusinessDocuments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docs, err := h.svc.ListBusinessDocuments(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to list documents", err)
		return
	}
	response.Success(c, http.StatusOK, "documents retrieved", docs)
}

// AssignDocument answers 201 for a new assignment and 200 when it already existed.
func (h *Handler) AssignDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !bindJSON(c, &req) {
		return
	}
	bd, created, err := h.svc.AssignDocument(c.Request.Context(), id, req.DocumentID)
	if err != nil {
		fail(c, "failed to assign document", err)
		return
	}
	assigned(c, bd, created)
}

func assigned(c *gin.Context, bd *model.BusinessDocument, created bool) {
	if created {
		response.Success(c, http.StatusCreated, "document assigned", bd)
		return
	}
	response.Success(c, http.StatusOK, "document already assigned", bd)
}

func (h *Handler) ListUploadedDocuments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docs, err := h.svc.ListUploadedDocuments(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to list uploaded documents", err)
		return
	}
	response.Success(c, http.StatusOK, "uploaded documents retrieved", docs)
}

// uploadFromForm reads the multipart "file", "name" and "description" fields.
// The caller closes the returned file.
func uploadFromForm(c *gin.Context) (usecase.Upload, func(), bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.ValidationError(c, "both file and name are required", err)
		return usecase.Upload{}, nil, false
	}
	f, err := header.Open()
	if err != nil {
		response.ValidationError(c, "unreadable file", err)
		return usecase.Upload{}, nil, false
	}
	up := usecase.Upload{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
	}
	return up, func() { _ = f.Close() }, true
}

// UploadDocument stores a PDF and fills field values from it.
func (h *Handler) UploadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	up, closeFile, ok := uploadFromForm(c)
	if !ok {
		return
	}
	defer closeFile()

	res, err := h.svc.ProcessUploadedDocument(c.Request.Context(), id, up)
	if err != nil {
		fail(c, "error processing file", err)
		return
	}
	response.Success(c, http.StatusCreated, "document processed", res)
}

func (h *Handler) DeleteUploadedDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	if err := h.svc.DeleteUploadedDocument(c.Request.Context(), id, docID); err != nil {
		fail(c, "failed to delete uploaded document", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ListUploadedDocumentFieldValues(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	values, err := h.svc.ListUploadedDocumentFieldValues(c.Request.Context(), id, docID)
	if err != nil {
		fail(c, "failed to list field values", err)
		return
	}
	response.Success(c, http.StatusOK, "field values retrieved", values)
}

type valueRequest struct {
	Value *string `json:"value"`
}

func (h *Handler) UpdateUploadedDocumentFieldValue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	fvID, ok := pathID(c, "fvId")
	if !ok {
		return
	}
	var req valueRequest
	if !bindJSON(c, &req) {
		return
	}
	fv, err := h.svc.UpdateUploadedDocumentFieldValue(c.Request.Context(), id, docID, fvID, req.Value)
	if err != nil {
		fail(c, "failed to update field value", err)
		return
	}
	response.Success(c, http.StatusOK, "field value updated", fv)
}

func (h *Handler) DeleteUploadedDocumentFieldValue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	fvID, ok := pathID(c, "fvId")
	if !ok {
		return
	}
	if err := h.svc.DeleteUploadedDocumentFieldValue(c.Request.Context(), id, docID, fvID); err != nil {
		fail(c, "failed to delete field value", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ListBusinessFieldValues(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	values, err := h.svc.ListBusinessFieldValues(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to list field values", err)
		return
	}
	response.Success(c, http.StatusOK, "field values retrieved", values)
}

type setValueRequest struct {
	Value  *string           `json:"value" binding:"required"`
	Source model.ValueSource `json:"source"`
}

// SetFieldValue writes one value addressed by the field's field id.
func (h *Handler) SetFieldValue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setValueRequest
	if !bindJSON(c, &req) {
		return
	}
	fv, err := h.svc.SetFieldValue(c.Request.Context(), id, c.Param("fieldId"), *req.Value, req.Source)
	if err != nil {
		fail(c, "failed to set field value", err)
		return
	}
	response.Success(c, http.StatusOK, "field value saved", fv)
}

func (h *Handler) MissingFields(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "documentId")
	if !ok {
		return
	}
	fields, err := h.svc.MissingFields(c.Request.Context(), id, docID)
	if err != nil {
		fail(c, "failed to compute missing fields", err)
		return
	}
	response.Success(c, http.StatusOK, "missing fields retrieved", fields)
}
