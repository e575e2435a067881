package storage

import (
	"context"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// UserRepo stores principals.
type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByID(ctx context.Context, id int64) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// AgencyRepo stores agencies and memberships.
type AgencyRepo interface {
	CreateAgency(ctx context.Context, agency *model.Agency) error
	FindAgency(ctx context.Context, scope access.Scope, id int64) (*model.Agency, error)
	FindAgencyByName(ctx context.Context, name string) (*model.Agency, error)
	ListAgencies(ctx context.Context, scope access.Scope) ([]model.Agency, error)
	ListMemberships(ctx context.Context, userID int64) ([]model.AgencyUser, error)
	ListAgencyMembers(ctx context.Context, agencyID int64) ([]model.AgencyUser, error)
	UpsertMembership(ctx context.Context, membership model.AgencyUser) (*model.AgencyUser, error)
}

// CustomerRepo stores customers.
type CustomerRepo interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) error
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
	DeleteCustomer(ctx context.Context, id int64) ([]string, error)
	FindCustomer(ctx context.Context, scope access.Scope, id int64) (*model.Customer, error)
	ListCustomers(ctx context.Context, scope access.Scope) ([]model.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error)
}

// BusinessRepo stores businesses.
type BusinessRepo interface {
	CreateBusiness(ctx context.Context, business *model.Business) error
	UpdateBusiness(ctx context.Context, business *model.Business) error
	DeleteBusiness(ctx context.Context, id int64) ([]string, error)
	FindBusiness(ctx context.Context, scope access.Scope, id int64) (*model.Business, error)
	ListBusinesses(ctx context.Context, scope access.Scope, customerID *int64) ([]model.Business, error)
	ListBusinessesByCustomer(ctx context.Context, customerID int64) ([]model.Business, error)
	FindBusinessWithOwner(ctx context.Context, id int64) (*model.Business, error)
}

// DocumentRepo stores templates and their fields.
type DocumentRepo interface {
	CreateDocument(ctx context.Context, doc *model.Document) error
	UpdateDocument(ctx context.Context, doc *model.Document) error
	DeleteDocument(ctx context.Context, id int64) error
	FindDocument(ctx context.Context, scope access.Scope, id int64) (*model.Document, error)
	FindDocumentByName(ctx context.Context, name string) (*model.Document, error)
	ListDocuments(ctx context.Context, scope access.Scope) ([]model.Document, error)
	CreateField(ctx context.Context, field *model.Field) error
	FindField(ctx context.Context, scope access.Scope, id int64) (*model.Field, error)
	FindFieldByFieldID(ctx context.Context, fieldID string) (*model.Field, error)
	ListFields(ctx context.Context, scope access.Scope, documentID *int64) ([]model.Field, error)
	ListFieldsByDocument(ctx context.Context, documentID int64) ([]model.Field, error)
}

// FieldValueFilter narrows a field value listing.
type FieldValueFilter struct {
	BusinessID *int64
	Source     model.ValueSource
	SourceID   *int64
}

// FieldValueRepo stores the per-business value of each field.
type FieldValueRepo interface {
	UpsertFieldValue(ctx context.Context, fv model.FieldValue) (*model.FieldValue, error)
	UpsertFieldValues(ctx context.Context, values []model.FieldValue) ([]model.FieldValue, error)
	UpdateFieldValue(ctx context.Context, fv *model.FieldValue) error
	DeleteFieldValue(ctx context.Context, id int64) error
	FindFieldValue(ctx context.Context, scope access.Scope, id int64) (*model.FieldValue, error)
	ListFieldValues(ctx context.Context, scope access.Scope, filter FieldValueFilter) ([]model.FieldValue, error)
	MissingRequiredFields(ctx context.Context, documentID, businessID int64) ([]model.Field, error)
}

// BusinessDocumentFilter narrows a business document listing.
type BusinessDocumentFilter struct {
	BusinessID *int64
	DocumentID *int64
}

// BusinessDocumentRepo stores template assignments.
type BusinessDocumentRepo interface {
	CreateBusinessDocument(ctx context.Context, bd *model.BusinessDocument) error
	FindBusinessDocument(ctx context.Context, scope access.Scope, id int64) (*model.BusinessDocument, error)
	ListBusinessDocuments(ctx context.Context, scope access.Scope, filter BusinessDocumentFilter) ([]model.BusinessDocument, error)
	UpdateBusinessDocumentStatus(ctx context.Context, id int64, status model.BusinessDocumentStatus) error
}

// UploadedDocumentRepo stores uploaded files metadata.
type UploadedDocumentRepo interface {
	CreateUploadedDocument(ctx context.Context, doc *model.UploadedBusinessDocument) error
	FindUploadedDocument(ctx context.Context, scope access.Scope, id int64) (*model.UploadedBusinessDocument, error)
	FindUploadedDocumentByID(ctx context.Context, id int64) (*model.UploadedBusinessDocument, error)
	ListUploadedDocuments(ctx context.Context, scope access.Scope, businessID *int64) ([]model.UploadedBusinessDocument, error)
	DeleteUploadedDocument(ctx context.Context, id int64) (string, error)
}

// PolicyFilter narrows a policy listing.
type PolicyFilter struct {
	BusinessID *int64
}

// PolicyRepo stores policies and their document associations.
type PolicyRepo interface {
	CreatePolicy(ctx context.Context, policy *model.Policy) error
	UpdatePolicy(ctx context.Context, policy *model.Policy) error
	DeletePolicy(ctx context.Context, id int64) error
	FindPolicy(ctx context.Context, scope access.Scope, id int64) (*model.Policy, error)
	ListPolicies(ctx context.Context, scope access.Scope, filter PolicyFilter) ([]model.Policy, error)
	AttachPolicyDocument(ctx context.Context, policyID, uploadedDocumentID int64) error
	DetachPolicyDocument(ctx context.Context, policyID, uploadedDocumentID int64) (bool, error)
}

// CallRecordRepo stores outbound voice calls.
type CallRecordRepo interface {
	CreateCallRecord(ctx context.Context, call *model.CallRecord) error
	FindCallRecordByProviderID(ctx context.Context, providerCallID string) (*model.CallRecord, error)
	UpdateCallRecord(ctx context.Context, call *model.CallRecord) error
}

// Repository combines every repository of the service.
type Repository interface {
	UserRepo
	AgencyRepo
	CustomerRepo
	BusinessRepo
	DocumentRepo
	FieldValueRepo
	BusinessDocumentRepo
	UploadedDocumentRepo
	PolicyRepo
	CallRecordRepo
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var _ Repository = (*PostgresRepo)(nil)
