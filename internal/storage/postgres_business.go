package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateBusiness inserts a validated business.
func (r *PostgresRepo) CreateBusiness(ctx context.Context, business *model.Business) error {
	return r.withTransaction(ctx, "create_business", "business", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(business).Error)
	})
}

// UpdateBusiness overwrites the editable columns of a business.
func (r *PostgresRepo) UpdateBusiness(ctx context.Context, business *model.Business) error {
	return r.withTransaction(ctx, "update_business", "business", func(tx *gorm.DB) error {
		res := tx.Model(business).Select(model.BusinessUpdateColumns()).Updates(business)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("business", business.ID)
		}
		return nil
	})
}

// DeleteBusiness removes a business and everything under it. It returns the
// stored file paths of removed uploads.
func (r *PostgresRepo) DeleteBusiness(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.withTransaction(ctx, "delete_business", "business", func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Business{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return checkConstraintViolation(err)
		}
		if count == 0 {
			return notFound("business", id)
		}
		var err error
		paths, err = deleteBusinessesTx(tx, []int64{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// deleteBusinessesTx removes businesses with their policies, field values,
// uploads and template assignments.
func deleteBusinessesTx(tx *gorm.DB, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var policyIDs []int64
	if err := tx.Model(&model.Policy{}).Where("business_id IN ?", ids).Pluck("id", &policyIDs).Error; err != nil {
		return nil, checkConstraintViolation(err)
	}
	var uploads []model.UploadedBusinessDocument
	if err := tx.Where("business_id IN ?", ids).Find(&uploads).Error; err != nil {
		return nil, checkConstraintViolation(err)
	}
	uploadIDs := make([]int64, 0, len(uploads))
	paths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		uploadIDs = append(uploadIDs, u.ID)
		paths = append(paths, u.FilePath)
	}
	var bdIDs []int64
	if err := tx.Model(&model.BusinessDocument{}).Where("business_id IN ?", ids).Pluck("id", &bdIDs).Error; err != nil {
		return nil, checkConstraintViolation(err)
	}

	steps := []func() error{
		func() error {
			return tx.Exec("DELETE FROM policy_documents WHERE policy_id IN ? OR uploaded_business_document_id IN ?", nonEmpty(policyIDs), nonEmpty(uploadIDs)).Error
		},
		func() error { return tx.Where("business_id IN ?", ids).Delete(&model.Policy{}).Error },
		func() error { return tx.Where("business_id IN ?", ids).Delete(&model.UploadedBusinessDocument{}).Error },
		func() error { return tx.Where("business_id IN ?", ids).Delete(&model.FieldValue{}).Error },
		func() error {
			return tx.Model(&model.CallRecord{}).Where("business_document_id IN ?", nonEmpty(bdIDs)).Update("business_document_id", nil).Error
		},
		func() error { return tx.Where("business_id IN ?", ids).Delete(&model.BusinessDocument{}).Error },
		func() error { return tx.Where("id IN ?", ids).Delete(&model.Business{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, checkConstraintViolation(err)
		}
	}
	return paths, nil
}

// nonEmpty keeps IN clauses valid for empty id lists.
func nonEmpty(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{0}
	}
	return ids
}

// FindBusiness returns a business visible through scope, with its customer.
func (r *PostgresRepo) FindBusiness(ctx context.Context, scope access.Scope, id int64) (*model.Business, error) {
	var business model.Business
	err := r.withRead(ctx, "find_business", "business", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Business{}), scope).
			Preload("Customer").
			Where("businesses.id = ?", id).First(&business).Error, "business", id)
	})
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// FindBusinessWithOwner returns a business with its customer and agency, unscoped.
func (r *PostgresRepo) FindBusinessWithOwner(ctx context.Context, id int64) (*model.Business, error) {
	var business model.Business
	err := r.withRead(ctx, "find_business_owner", "business", func(db *gorm.DB) error {
		return findErr(db.Preload("Customer.Agency").First(&business, id).Error, "business", id)
	})
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// ListBusinesses lists businesses visible through scope, newest first.
func (r *PostgresRepo) ListBusinesses(ctx context.Context, scope access.Scope, customerID *int64) ([]model.Business, error) {
	var businesses []model.Business
	err := r.withRead(ctx, "list_businesses", "business", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.Business{}), scope)
		if customerID != nil {
			q = q.Where("businesses.customer_id = ?", *customerID)
		}
		return checkConstraintViolation(q.Order("businesses.created_at DESC").Order("businesses.id DESC").Find(&businesses).Error)
	})
	return businesses, err
}

// ListBusinessesByCustomer lists every business of a customer, unscoped.
func (r *PostgresRepo) ListBusinessesByCustomer(ctx context.Context, customerID int64) ([]model.Business, error) {
	var businesses []model.Business
	err := r.withRead(ctx, "list_businesses_by_customer", "business", func(db *gorm.DB) error {
		return checkConstraintViolation(db.Where("customer_id = ?", customerID).Order("id ASC").Find(&businesses).Error)
	})
	return businesses, err
}
