package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateDocument inserts a template together with any fields it carries.
func (r *PostgresRepo) CreateDocument(ctx context.Context, doc *model.Document) error {
	return r.withTransaction(ctx, "create_document", "document", func(tx *gorm.DB) error {
		fields := doc.Fields
		doc.Fields = nil
		if err := tx.Omit(clause.Associations).Create(doc).Error; err != nil {
			doc.Fields = fields
			return checkConstraintViolation(err)
		}
		for i := range fields {
			fields[i].DocumentID = doc.ID
			if err := tx.Omit(clause.Associations).Create(&fields[i]).Error; err != nil {
				doc.Fields = fields
				return checkConstraintViolation(err)
			}
		}
		doc.Fields = fields
		return nil
	})
}

// UpdateDocument overwrites the editable columns of a template.
func (r *PostgresRepo) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return r.withTransaction(ctx, "update_document", "document", func(tx *gorm.DB) error {
		res := tx.Model(doc).Select(model.DocumentUpdateColumns()).Updates(doc)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("document", doc.ID)
		}
		return nil
	})
}

// DeleteDocument removes a template, its fields, their values and its assignments.
func (r *PostgresRepo) DeleteDocument(ctx context.Context, id int64) error {
	return r.withTransaction(ctx, "delete_document", "document", func(tx *gorm.DB) error {
		var fieldIDs, bdIDs []int64
		if err := tx.Model(&model.Field{}).Where("document_id = ?", id).Pluck("id", &fieldIDs).Error; err != nil {
			return checkConstraintViolation(err)
		}
		if err := tx.Model(&model.BusinessDocument{}).Where("document_id = ?", id).Pluck("id", &bdIDs).Error; err != nil {
			return checkConstraintViolation(err)
		}

		steps := []func() error{
			func() error { return tx.Where("field_id IN ?", nonEmpty(fieldIDs)).Delete(&model.FieldValue{}).Error },
			func() error { return tx.Where("document_id = ?", id).Delete(&model.Field{}).Error },
			func() error {
				return tx.Model(&model.CallRecord{}).Where("business_document_id IN ?", nonEmpty(bdIDs)).Update("business_document_id", nil).Error
			},
			func() error { return tx.Where("document_id = ?", id).Delete(&model.BusinessDocument{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return checkConstraintViolation(err)
			}
		}
		res := tx.Delete(&model.Document{}, id)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("document", id)
		}
		return nil
	})
}

func preloadFieldsByName(db *gorm.DB) *gorm.DB {
	return db.Order("fields.name ASC").Order("fields.id ASC")
}

// FindDocument returns a template visible through scope with its fields by name.
func (r *PostgresRepo) FindDocument(ctx context.Context, scope access.Scope, id int64) (*model.Document, error) {
	var doc model.Document
	err := r.withRead(ctx, "find_document", "document", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Document{}), scope).
			Preload("Fields", preloadFieldsByName).
			Where("documents.id = ?", id).First(&doc).Error, "document", id)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDocumentByName returns the first template with the given name, unscoped.
func (r *PostgresRepo) FindDocumentByName(ctx context.Context, name string) (*model.Document, error) {
	var doc model.Document
	err := r.withRead(ctx, "find_document_by_name", "document", func(db *gorm.DB) error {
		return findErr(db.Preload("Fields", preloadFieldsByName).Where("name = ?", name).Order("id ASC").First(&doc).Error, "document", name)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments lists templates visible through scope, by name.
func (r *PostgresRepo) ListDocuments(ctx context.Context, scope access.Scope) ([]model.Document, error) {
	var docs []model.Document
	err := r.withRead(ctx, "list_documents", "document", func(db *gorm.DB) error {
		return checkConstraintViolation(applyScope(db.Model(&model.Document{}), scope).
			Preload("Fields", preloadFieldsByName).
			Order("documents.name ASC").Order("documents.id ASC").Find(&docs).Error)
	})
	return docs, err
}

// CreateField inserts a validated field. A taken field_id maps to ErrDuplicate.
func (r *PostgresRepo) CreateField(ctx context.Context, field *model.Field) error {
	return r.withTransaction(ctx, "create_field", "field", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(field).Error)
	})
}

// FindField returns a field of a template visible through scope.
func (r *PostgresRepo) FindField(ctx context.Context, scope access.Scope, id int64) (*model.Field, error) {
	var field model.Field
	err := r.withRead(ctx, "find_field", "field", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Field{}), scope).Where("fields.id = ?", id).First(&field).Error, "field", id)
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// FindFieldByFieldID resolves a normalized field identifier, unscoped.
func (r *PostgresRepo) FindFieldByFieldID(ctx context.Context, fieldID string) (*model.Field, error) {
	var field model.Field
	err := r.withRead(ctx, "find_field_by_field_id", "field", func(db *gorm.DB) error {
		return findErr(db.Where("field_id = ?", model.NormalizeFieldID(fieldID)).First(&field).Error, "field", fieldID)
	})
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// ListFields lists fields visible through scope, optionally of one template.
func (r *PostgresRepo) ListFields(ctx context.Context, scope access.Scope, documentID *int64) ([]model.Field, error) {
	var fields []model.Field
	err := r.withRead(ctx, "list_fields", "field", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.Field{}), scope)
		if documentID != nil {
			q = q.Where("fields.document_id = ?", *documentID)
		}
		return checkConstraintViolation(preloadFieldsByName(q).Find(&fields).Error)
	})
	return fields, err
}

// ListFieldsByDocument lists the fields of a template by name, unscoped.
func (r *PostgresRepo) ListFieldsByDocument(ctx context.Context, documentID int64) ([]model.Field, error) {
	var fields []model.Field
	err := r.withRead(ctx, "list_fields_by_document", "field", func(db *gorm.DB) error {
		return checkConstraintViolation(preloadFieldsByName(db.Where("document_id = ?", documentID)).Find(&fields).Error)
	})
	return fields, err
}
