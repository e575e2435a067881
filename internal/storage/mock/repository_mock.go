package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
)

// RepositoryMock mocks the combined storage.Repository interface
type RepositoryMock struct {
	mock.Mock
}

var _ storage.Repository = (*RepositoryMock)(nil)

// CreateUser mocks the CreateUser method
func (m *RepositoryMock) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindUserByID mocks the FindUserByID method
func (m *RepositoryMock) FindUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// FindUserByUsername mocks the FindUserByUsername method
func (m *RepositoryMock) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// CreateAgency mocks the CreateAgency method
func (m *RepositoryMock) CreateAgency(ctx context.Context, agency *model.Agency) error {
	args := m.Called(ctx, agency)
	return args.Error(0)
}

// FindAgency mocks the FindAgency method
func (m *RepositoryMock) FindAgency(ctx context.Context, scope access.Scope, id int64) (*model.Agency, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

// FindAgencyByName mocks the FindAgencyByName method
func (m *RepositoryMock) FindAgencyByName(ctx context.Context, name string) (*model.Agency, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Agency), args.Error(1)
}

// ListAgencies mocks the ListAgencies method
func (m *RepositoryMock) ListAgencies(ctx context.Context, scope access.Scope) ([]model.Agency, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Agency), args.Error(1)
}

// ListMemberships mocks the ListMemberships method
func (m *RepositoryMock) ListMemberships(ctx context.Context, userID int64) ([]model.AgencyUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgencyUser), args.Error(1)
}

// ListAgencyMembers mocks the ListAgencyMembers method
func (m *RepositoryMock) ListAgencyMembers(ctx context.Context, agencyID int64) ([]model.AgencyUser, error) {
	args := m.Called(ctx, agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgencyUser), args.Error(1)
}

// UpsertMembership mocks the UpsertMembership method
func (m *RepositoryMock) UpsertMembership(ctx context.Context, membership model.AgencyUser) (*model.AgencyUser, error) {
	args := m.Called(ctx, membership)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgencyUser), args.Error(1)
}

// CreateCustomer mocks the CreateCustomer method
func (m *RepositoryMock) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// UpdateCustomer mocks the UpdateCustomer method
func (m *RepositoryMock) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// DeleteCustomer mocks the DeleteCustomer method
func (m *RepositoryMock) DeleteCustomer(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// FindCustomer mocks the FindCustomer method
func (m *RepositoryMock) FindCustomer(ctx context.Context, scope access.Scope, id int64) (*model.Customer, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

// ListCustomers mocks the ListCustomers method
func (m *RepositoryMock) ListCustomers(ctx context.Context, scope access.Scope) ([]model.Customer, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Customer), args.Error(1)
}

// FindCustomerByPhone mocks the FindCustomerByPhone method
func (m *RepositoryMock) FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

// CreateBusiness mocks the CreateBusiness method
func (m *RepositoryMock) CreateBusiness(ctx context.Context, business *model.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

// UpdateBusiness mocks the UpdateBusiness method
func (m *RepositoryMock) UpdateBusiness(ctx context.Context, business *model.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

// DeleteBusiness mocks the DeleteBusiness method
func (m *RepositoryMock) DeleteBusiness(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// FindBusiness mocks the FindBusiness method
func (m *RepositoryMock) FindBusiness(ctx context.Context, scope access.Scope, id int64) (*model.Business, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

// ListBusinesses mocks the ListBusinesses method
func (m *RepositoryMock) ListBusinesses(ctx context.Context, scope access.Scope, customerID *int64) ([]model.Business, error) {
	args := m.Called(ctx, scope, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Business), args.Error(1)
}

// ListBusinessesByCustomer mocks the ListBusinessesByCustomer method
func (m *RepositoryMock) ListBusinessesByCustomer(ctx context.Context, customerID int64) ([]model.Business, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Business), args.Error(1)
}

// FindBusinessWithOwner mocks the FindBusinessWithOwner method
func (m *RepositoryMock) FindBusinessWithOwner(ctx context.Context, id int64) (*model.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

// CreateDocument mocks the CreateDocument method
func (m *RepositoryMock) CreateDocument(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// UpdateDocument mocks the UpdateDocument method
func (m *RepositoryMock) UpdateDocument(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// DeleteDocument mocks the DeleteDocument method
func (m *RepositoryMock) DeleteDocument(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindDocument mocks the FindDocument method
func (m *RepositoryMock) FindDocument(ctx context.Context, scope access.Scope, id int64) (*model.Document, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

// FindDocumentByName mocks the FindDocumentByName method
func (m *RepositoryMock) FindDocumentByName(ctx context.Context, name string) (*model.Document, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

// ListDocuments mocks the ListDocuments method
func (m *RepositoryMock) ListDocuments(ctx context.Context, scope access.Scope) ([]model.Document, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

// CreateField mocks the CreateField method
func (m *RepositoryMock) CreateField(ctx context.Context, field *model.Field) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}

// FindField mocks the FindField method
func (m *RepositoryMock) FindField(ctx context.Context, scope access.Scope, id int64) (*model.Field, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

// FindFieldByFieldID mocks the FindFieldByFieldID method
func (m *RepositoryMock) FindFieldByFieldID(ctx context.Context, fieldID string) (*model.Field, error) {
	args := m.Called(ctx, fieldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Field), args.Error(1)
}

// ListFields mocks the ListFields method
func (m *RepositoryMock) ListFields(ctx context.Context, scope access.Scope, documentID *int64) ([]model.Field, error) {
	args := m.Called(ctx, scope, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Field), args.Error(1)
}

// ListFieldsByDocument mocks the ListFieldsByDocument method
func (m *RepositoryMock) ListFieldsByDocument(ctx context.Context, documentID int64) ([]model.Field, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Field), args.Error(1)
}

// UpsertFieldValue mocks the UpsertFieldValue method
func (m *RepositoryMock) UpsertFieldValue(ctx context.Context, fv model.FieldValue) (*model.FieldValue, error) {
	args := m.Called(ctx, fv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FieldValue), args.Error(1)
}

// UpsertFieldValues mocks the UpsertFieldValues method
func (m *RepositoryMock) UpsertFieldValues(ctx context.Context, values []model.FieldValue) ([]model.FieldValue, error) {
	args := m.Called(ctx, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FieldValue), args.Error(1)
}

// UpdateFieldValue mocks the UpdateFieldValue method
func (m *RepositoryMock) UpdateFieldValue(ctx context.Context, fv *model.FieldValue) error {
	args := m.Called(ctx, fv)
	return args.Error(0)
}

// DeleteFieldValue mocks the DeleteFieldValue method
func (m *RepositoryMock) DeleteFieldValue(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindFieldValue mocks the FindFieldValue method
func (m *RepositoryMock) FindFieldValue(ctx context.Context, scope access.Scope, id int64) (*model.FieldValue, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FieldValue), args.Error(1)
}

// ListFieldValues mocks the ListFieldValues method
func (m *RepositoryMock) ListFieldValues(ctx context.Context, scope access.Scope, filter storage.FieldValueFilter) ([]model.FieldValue, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FieldValue), args.Error(1)
}

// MissingRequiredFields mocks the MissingRequiredFields method
func (m *RepositoryMock) MissingRequiredFields(ctx context.Context, documentID int64, businessID int64) ([]model.Field, error) {
	args := m.Called(ctx, documentID, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Field), args.Error(1)
}

// CreateBusinessDocument mocks the CreateBusinessDocument method
func (m *RepositoryMock) CreateBusinessDocument(ctx context.Context, bd *model.BusinessDocument) error {
	args := m.Called(ctx, bd)
	return args.Error(0)
}

// FindBusinessDocument mocks the FindBusinessDocument method
func (m *RepositoryMock) FindBusinessDocument(ctx context.Context, scope access.Scope, id int64) (*model.BusinessDocument, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BusinessDocument), args.Error(1)
}

// ListBusinessDocuments mocks the ListBusinessDocuments method
func (m *RepositoryMock) ListBusinessDocuments(ctx context.Context, scope access.Scope, filter storage.BusinessDocumentFilter) ([]model.BusinessDocument, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusinessDocument), args.Error(1)
}

// UpdateBusinessDocumentStatus mocks the UpdateBusinessDocumentStatus method
func (m *RepositoryMock) UpdateBusinessDocumentStatus(ctx context.Context, id int64, status model.BusinessDocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// CreateUploadedDocument mocks the CreateUploadedDocument method
func (m *RepositoryMock) CreateUploadedDocument(ctx context.Context, doc *model.UploadedBusinessDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// FindUploadedDocument mocks the FindUploadedDocument method
func (m *RepositoryMock) FindUploadedDocument(ctx context.Context, scope access.Scope, id int64) (*model.UploadedBusinessDocument, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadedBusinessDocument), args.Error(1)
}

// FindUploadedDocumentByID mocks the FindUploadedDocumentByID method
func (m *RepositoryMock) FindUploadedDocumentByID(ctx context.Context, id int64) (*model.UploadedBusinessDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadedBusinessDocument), args.Error(1)
}

// ListUploadedDocuments mocks the ListUploadedDocuments method
func (m *RepositoryMock) ListUploadedDocuments(ctx context.Context, scope access.Scope, businessID *int64) ([]model.UploadedBusinessDocument, error) {
	args := m.Called(ctx, scope, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadedBusinessDocument), args.Error(1)
}

// DeleteUploadedDocument mocks the DeleteUploadedDocument method
func (m *RepositoryMock) DeleteUploadedDocument(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// CreatePolicy mocks the CreatePolicy method
func (m *RepositoryMock) CreatePolicy(ctx context.Context, policy *model.Policy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

// UpdatePolicy mocks the UpdatePolicy method
func (m *RepositoryMock) UpdatePolicy(ctx context.Context, policy *model.Policy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

// DeletePolicy mocks the DeletePolicy method
func (m *RepositoryMock) DeletePolicy(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FindPolicy mocks the FindPolicy method
func (m *RepositoryMock) FindPolicy(ctx context.Context, scope access.Scope, id int64) (*model.Policy, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

// ListPolicies mocks the ListPolicies method
func (m *RepositoryMock) ListPolicies(ctx context.Context, scope access.Scope, filter storage.PolicyFilter) ([]model.Policy, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Policy), args.Error(1)
}

// AttachPolicyDocument mocks the AttachPolicyDocument method
func (m *RepositoryMock) AttachPolicyDocument(ctx context.Context, policyID int64, uploadedDocumentID int64) error {
	args := m.Called(ctx, policyID, uploadedDocumentID)
	return args.Error(0)
}

// DetachPolicyDocument mocks the DetachPolicyDocument method
func (m *RepositoryMock) DetachPolicyDocument(ctx context.Context, policyID int64, uploadedDocumentID int64) (bool, error) {
	args := m.Called(ctx, policyID, uploadedDocumentID)
	return args.Bool(0), args.Error(1)
}

// CreateCallRecord mocks the CreateCallRecord method
func (m *RepositoryMock) CreateCallRecord(ctx context.Context, call *model.CallRecord) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

// FindCallRecordByProviderID mocks the FindCallRecordByProviderID method
func (m *RepositoryMock) FindCallRecordByProviderID(ctx context.Context, providerCallID string) (*model.CallRecord, error) {
	args := m.Called(ctx, providerCallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallRecord), args.Error(1)
}

// UpdateCallRecord mocks the UpdateCallRecord method
func (m *RepositoryMock) UpdateCallRecord(ctx context.Context, call *model.CallRecord) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

// Ping mocks the Ping method
func (m *RepositoryMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks the Close method
func (m *RepositoryMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
