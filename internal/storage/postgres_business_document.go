package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateBusinessDocument assigns a template to a business. Assigning twice maps to ErrDuplicate.
func (r *PostgresRepo) CreateBusinessDocument(ctx context.Context, bd *model.BusinessDocument) error {
	return r.withTransaction(ctx, "create_business_document", "business_document", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(bd).Error)
	})
}

// FindBusinessDocument returns an assignment visible through scope, with the
// business, its customer and the template fields loaded.
func (r *PostgresRepo) FindBusinessDocument(ctx context.Context, scope access.Scope, id int64) (*model.BusinessDocument, error) {
	var bd model.BusinessDocument
	err := r.withRead(ctx, "find_business_document", "business_document", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.BusinessDocument{}), scope).
			Preload("Business.Customer").
			Preload("Document.Fields", preloadFieldsByName).
			Where("business_documents.id = ?", id).First(&bd).Error, "business document", id)
	})
	if err != nil {
		return nil, err
	}
	return &bd, nil
}

// ListBusinessDocuments lists assignments visible through scope.
func (r *PostgresRepo) ListBusinessDocuments(ctx context.Context, scope access.Scope, filter BusinessDocumentFilter) ([]model.BusinessDocument, error) {
	var bds []model.BusinessDocument
	err := r.withRead(ctx, "list_business_documents", "business_document", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.BusinessDocument{}), scope).Preload("Document")
		if filter.BusinessID != nil {
			q = q.Where("business_documents.business_id = ?", *filter.BusinessID)
		}
		if filter.DocumentID != nil {
			q = q.Where("business_documents.document_id = ?", *filter.DocumentID)
		}
		return checkConstraintViolation(q.Order("business_documents.id ASC").Find(&bds).Error)
	})
	return bds, err
}

// UpdateBusinessDocumentStatus sets the status of an assignment.
func (r *PostgresRepo) UpdateBusinessDocumentStatus(ctx context.Context, id int64, status model.BusinessDocumentStatus) error {
	return r.withTransaction(ctx, "update_business_document_status", "business_document", func(tx *gorm.DB) error {
		res := tx.Model(&model.BusinessDocument{ID: id}).Update("status", status)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("business document", id)
		}
		return nil
	})
}
