package app

import (
	"github.com/gin-gonic/gin"

	"gitlab.com/timkado/api/agency-core/internal/handlers"
	"gitlab.com/timkado/api/agency-core/internal/middleware"
)

// SetupRouter registers the API routes on r.
func SetupRouter(r *gin.Engine, h *handlers.Handler, verifier middleware.TokenVerifier) {
	api := r.Group("/api/v1")

	// ==================== Public Routes ====================
	api.POST("/auth/login", h.Login)
	api.POST("/webhooks/voice", h.VoiceWebhook)

	protected := api.Group("")
	protected.Use(middleware.Auth(verifier))

	protected.GET("/auth/me", h.Me)

	// ==================== Agencies ====================
	agencies := protected.Group("/agencies")
	{
		agencies.GET("", h.ListAgencies)
		agencies.GET("/:id", h.GetAgency)
		agencies.PUT("/:id/members", h.SetMembership)
	}

	// ==================== Customers ====================
	customers := protected.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
		customers.GET("/:id/businesses", h.ListCustomerBusinesses)
		customers.POST("/:id/businesses", h.AddCustomerBusiness)
		customers.POST("/:id/business-documents", h.AssignCustomerDocument)
	}

	// ==================== Businesses ====================
	businesses := protected.Group("/businesses")
	{
		businesses.GET("", h.ListBusinesses)
		businesses.POST("", h.CreateBusiness)
		businesses.GET("/:id", h.GetBusiness)
		businesses.PUT("/:id", h.UpdateBusiness)
		businesses.DELETE("/:id", h.DeleteBusiness)

		businesses.GET("/:id/documents", h.ListBusinessDocuments)
		businesses.POST("/:id/documents", h.AssignDocument)
		businesses.GET("/:id/documents/:documentId/missing-fields", h.MissingFields)

		businesses.GET("/:id/uploaded-documents", h.ListUploadedDocuments)
		businesses.POST("/:id/uploaded-documents", h.UploadDocument)
		businesses.DELETE("/:id/uploaded-documents/:docId", h.DeleteUploadedDocument)
		businesses.GET("/:id/uploaded-documents/:docId/field-values", h.ListUploadedDocumentFieldValues)
		businesses.PUT("/:id/uploaded-documents/:docId/field-values/:fvId", h.UpdateUploadedDocumentFieldValue)
		businesses.DELETE("/:id/uploaded-documents/:docId/field-values/:fvId", h.DeleteUploadedDocumentFieldValue)

		businesses.GET("/:id/field-values", h.ListBusinessFieldValues)
		businesses.PUT("/:id/field-values/:fieldId", h.SetFieldValue)
	}

	// ==================== Document Templates ====================
	documents := protected.Group("/documents")
	{
		documents.GET("", h.ListDocuments)
		documents.POST("", h.CreateDocument)
		documents.GET("/:id", h.GetDocument)
		documents.PUT("/:id", h.UpdateDocument)
		documents.DELETE("/:id", h.DeleteDocument)
		documents.POST("/:id/make-public", h.SetVisibility(true))
		documents.POST("/:id/make-private", h.SetVisibility(false))
		documents.GET("/:id/businesses", h.ListDocumentBusinesses)
		documents.POST("/:id/fields", h.AddField)
	}

	protected.GET("/fields", h.ListFields)
	protected.GET("/fields/:id", h.GetField)

	// ==================== Business Documents ====================
	businessDocuments := protected.Group("/business-documents")
	{
		businessDocuments.GET("", h.ListBusinessDocumentAssignments)
		businessDocuments.GET("/:id", h.GetBusinessDocument)
		businessDocuments.POST("/:id/status", h.UpdateBusinessDocumentStatus)
		businessDocuments.POST("/:id/field-values", h.UpdateBusinessDocumentFieldValues)
		businessDocuments.POST("/:id/call", h.CallCustomer)
	}

	// ==================== Policies ====================
	policies := protected.Group("/policies")
	{
		policies.GET("", h.ListPolicies)
		policies.POST("", h.CreatePolicy)
		policies.GET("/:id", h.GetPolicy)
		policies.PUT("/:id", h.UpdatePolicy)
		policies.DELETE("/:id", h.DeletePolicy)
		policies.POST("/:id/documents", h.AddPolicyDocument)
		policies.POST("/:id/documents/upload", h.UploadPolicyDocument)
		policies.DELETE("/:id/documents/:docId", h.RemovePolicyDocument)
		policies.POST("/:id/renewal-comparison", h.RenewalComparison)
	}
}
