package storage

import (
	"fmt"

	"gorm.io/gorm"

	"gitlab.com/timkado/api/agency-core/internal/access"
)

// agencyIDs selects the agencies visible to s, narrowed by s.AgencyID.
func agencyIDs(db *gorm.DB, s access.Scope) *gorm.DB {
	q := db.Session(&gorm.Session{NewDB: true}).Table("agency_users").Select("agency_id").Where("user_id = ?", s.UserID)
	if s.AgencyID != nil {
		q = q.Where("agency_id = ?", *s.AgencyID)
	}
	return q
}

// customerIDs selects the customers visible to s.
func customerIDs(db *gorm.DB, s access.Scope) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Table("customers").Select("id").
		Where("agency_id IN (?)", agencyIDs(db, s))
}

// businessIDs selects the businesses visible to s.
func businessIDs(db *gorm.DB, s access.Scope) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Table("businesses").Select("id").
		Where("customer_id IN (?)", customerIDs(db, s))
}

// documentIDs selects templates owned by the principal or public.
func documentIDs(db *gorm.DB, s access.Scope) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Table("documents").Select("id").
		Where("(agency_owner_id = ? OR is_public = ?)", s.UserID, true)
}

// applyScope adds the visibility filter of s to a query on s.Entity's table.
func applyScope(db *gorm.DB, s access.Scope) *gorm.DB {
	switch s.Entity {
	case access.EntityAgency:
		return db.Where("agencies.is_active = ? AND agencies.id IN (?)", true, agencyIDs(db, s))
	case access.EntityCustomer:
		return db.Where("customers.agency_id IN (?)", agencyIDs(db, s))
	case access.EntityBusiness:
		return db.Where("businesses.customer_id IN (?)", customerIDs(db, s))
	case access.EntityDocument:
		return db.Where("(documents.agency_owner_id = ? OR documents.is_public = ?)", s.UserID, true)
	case access.EntityField:
		return db.Where("fields.document_id IN (?)", documentIDs(db, s))
	case access.EntityPolicy:
		return db.Where("policies.business_id IN (?)", businessIDs(db, s))
	case access.EntityBusinessDocument:
		return db.Where("business_documents.business_id IN (?)", businessIDs(db, s))
	case access.EntityUploadedDocument:
		return db.Where("uploaded_business_documents.business_id IN (?)", businessIDs(db, s))
	case access.EntityFieldValue:
		return db.Where("field_values.business_id IN (?)", businessIDs(db, s))
	default:
		// An unknown entity must never widen visibility.
		_ = db.AddError(fmt.Errorf("unsupported scope entity %q", s.Entity))
		return db.Where("1 = 0")
	}
}
