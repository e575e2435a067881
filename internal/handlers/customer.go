package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/pkg/response"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// ListCustomers lists the customers of the agency named by ?agency_id.
func (h *Handler) ListCustomers(c *gin.Context) {
	agencyID, ok := optionalQueryID(c, "agency_id")
	if !ok {
		return
	}
	customers, err := h.svc.ListCustomers(c.Request.Context(), agencyID)
	if err != nil {
		fail(c, "failed to list customers", err)
		return
	}
	response.Success(c, http.StatusOK, "customers retrieved", customers)
}

// CreateCustomer takes the agency from the body or, failing that, ?agency_id.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req usecase.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	if req.AgencyID == nil {
		agencyID, ok := optionalQueryID(c, "agency_id")
		if !ok {
			return
		}
		req.AgencyID = agencyID
	}
	customer, err := h.svc.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		fail(c, "failed to create customer", err)
		return
	}
	response.Success(c, http.StatusCreated, "customer created successfully", customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		fail(c, "customer not found", err)
		return
	}
	response.Success(c, http.StatusOK, "customer retrieved", customer)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.CustomerInput
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.svc.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to update customer", err)
		return
	}
	response.Success(c, http.StatusOK, "customer updated", customer)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(c.Request.Context(), id); err != nil {
		fail(c, "failed to delete customer", err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) ListCustomerBusinesses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	businesses, err := h.svc.ListCustomerBusinesses(c.Request.Context(), id)
	if err != nil {
		fail(c, "failed to list businesses", err)
		return
	}
	response.Success(c, http.StatusOK, "businesses retrieved", businesses)
}

func (h *Handler) AddCustomerBusiness(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req usecase.BusinessInput
	if !bindJSON(c, &req) {
		return
	}
	business, err := h.svc.AddCustomerBusiness(c.Request.Context(), id, req)
	if err != nil {
		fail(c, "failed to create business", err)
		return
	}
	response.Success(c, http.StatusCreated, "business created successfully", business)
}

type assignRequest struct {
	BusinessID int64 `json:"business_id"`
	DocumentID int64 `json:"document_id"`
}

// AssignCustomerDocument assigns a template to one of the customer's businesses.
func (h *Handler) AssignCustomerDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !bindJSON(c, &req) {
		return
	}
	bd, created, err := h.svc.AssignCustomerDocument(c.Request.Context(), id, req.BusinessID, req.DocumentID)
	if err != nil {
		fail(c, "failed to assign document", err)
		return
	}
	assigned(c, bd, created)
}
