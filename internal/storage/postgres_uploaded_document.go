package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateUploadedDocument records a stored upload.
func (r *PostgresRepo) CreateUploadedDocument(ctx context.Context, doc *model.UploadedBusinessDocument) error {
	return r.withTransaction(ctx, "create_uploaded_document", "uploaded_document", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(doc).Error)
	})
}

// FindUploadedDocument returns an upload visible through scope.
func (r *PostgresRepo) FindUploadedDocument(ctx context.Context, scope access.Scope, id int64) (*model.UploadedBusinessDocument, error) {
	var doc model.UploadedBusinessDocument
	err := r.withRead(ctx, "find_uploaded_document", "uploaded_document", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.UploadedBusinessDocument{}), scope).
			Where("uploaded_business_documents.id = ?", id).First(&doc).Error, "uploaded document", id)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindUploadedDocumentByID returns an upload regardless of scope. Queue
// consumers without a principal use it.
func (r *PostgresRepo) FindUploadedDocumentByID(ctx context.Context, id int64) (*model.UploadedBusinessDocument, error) {
	var doc model.UploadedBusinessDocument
	err := r.withRead(ctx, "find_uploaded_document_by_id", "uploaded_document", func(db *gorm.DB) error {
		return findErr(db.First(&doc, id).Error, "uploaded document", id)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListUploadedDocuments lists uploads visible through scope, newest first.
func (r *PostgresRepo) ListUploadedDocuments(ctx context.Context, scope access.Scope, businessID *int64) ([]model.UploadedBusinessDocument, error) {
	var docs []model.UploadedBusinessDocument
	err := r.withRead(ctx, "list_uploaded_documents", "uploaded_document", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.UploadedBusinessDocument{}), scope)
		if businessID != nil {
			q = q.Where("uploaded_business_documents.business_id = ?", *businessID)
		}
		return checkConstraintViolation(q.Order("uploaded_business_documents.created_at DESC").
			Order("uploaded_business_documents.id DESC").Find(&docs).Error)
	})
	return docs, err
}

// DeleteUploadedDocument removes an upload and its policy associations. It
// returns the stored file path.
func (r *PostgresRepo) DeleteUploadedDocument(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.withTransaction(ctx, "delete_uploaded_document", "uploaded_document", func(tx *gorm.DB) error {
		var doc model.UploadedBusinessDocument
		if err := tx.First(&doc, id).Error; err != nil {
			return findErr(err, "uploaded document", id)
		}
		if err := tx.Exec("DELETE FROM policy_documents WHERE uploaded_business_document_id = ?", id).Error; err != nil {
			return checkConstraintViolation(err)
		}
		if err := tx.Delete(&doc).Error; err != nil {
			return checkConstraintViolation(err)
		}
		path = doc.FilePath
		return nil
	})
	return path, err
}
