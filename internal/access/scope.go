// Package access describes what a principal may see and change. Scopes are
// plain values; storage turns them into SQL when a query runs.
package access

import (
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

// Entity names the table a scope filters.
type Entity string

const (
	EntityAgency           Entity = "agency"
	EntityCustomer         Entity = "customer"
	EntityBusiness         Entity = "business"
	EntityDocument         Entity = "document"
	EntityField            Entity = "field"
	EntityPolicy           Entity = "policy"
	EntityBusinessDocument Entity = "business_document"
	EntityUploadedDocument Entity = "uploaded_document"
	EntityFieldValue       Entity = "field_value"
)

// Scope is the visibility filter of one principal over one entity.
type Scope struct {
	Entity   Entity
	UserID   int64
	AgencyID *int64
}

// WithAgency narrows the scope to one agency. A nil id leaves it unchanged.
func (s Scope) WithAgency(agencyID *int64) Scope {
	if agencyID != nil {
		id := *agencyID
		s.AgencyID = &id
	}
	return s
}

// CustomerScope requires an explicit agency filter.
func CustomerScope(p tenant.Principal, agencyID *int64) (Scope, error) {
	if agencyID == nil {
		return Scope{}, apperrors.ErrMissingScopeParameter
	}
	return Scope{Entity: EntityCustomer, UserID: p.UserID}.WithAgency(agencyID), nil
}

// CustomerLookupScope scopes a single customer lookup by id, where no agency filter is required.
func CustomerLookupScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityCustomer, UserID: p.UserID}
}

func BusinessScope(p tenant.Principal, agencyID *int64) Scope {
	return Scope{Entity: EntityBusiness, UserID: p.UserID}.WithAgency(agencyID)
}

// DocumentScope covers templates the principal owns plus public ones.
func DocumentScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityDocument, UserID: p.UserID}
}

// FieldScope covers fields of documents visible through DocumentScope.
func FieldScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityField, UserID: p.UserID}
}

func PolicyScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityPolicy, UserID: p.UserID}
}

func BusinessDocumentScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityBusinessDocument, UserID: p.UserID}
}

func UploadedDocumentScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityUploadedDocument, UserID: p.UserID}
}

func FieldValueScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityFieldValue, UserID: p.UserID}
}

// AgencyScope covers active agencies the principal belongs to.
func AgencyScope(p tenant.Principal) Scope {
	return Scope{Entity: EntityAgency, UserID: p.UserID}
}
