package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreatePolicy inserts a validated policy.
func (r *PostgresRepo) CreatePolicy(ctx context.Context, policy *model.Policy) error {
	return r.withTransaction(ctx, "create_policy", "policy", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(policy).Error)
	})
}

// UpdatePolicy overwrites the editable columns of a policy.
func (r *PostgresRepo) UpdatePolicy(ctx context.Context, policy *model.Policy) error {
	return r.withTransaction(ctx, "update_policy", "policy", func(tx *gorm.DB) error {
		res := tx.Model(policy).Select(model.PolicyUpdateColumns()).Updates(policy)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("policy", policy.ID)
		}
		return nil
	})
}

// DeletePolicy removes a policy and its document associations. The documents stay.
func (r *PostgresRepo) DeletePolicy(ctx context.Context, id int64) error {
	return r.withTransaction(ctx, "delete_policy", "policy", func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM policy_documents WHERE policy_id = ?", id).Error; err != nil {
			return checkConstraintViolation(err)
		}
		res := tx.Delete(&model.Policy{}, id)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("policy", id)
		}
		return nil
	})
}

// FindPolicy returns a policy visible through scope, with its documents and business.
func (r *PostgresRepo) FindPolicy(ctx context.Context, scope access.Scope, id int64) (*model.Policy, error) {
	var policy model.Policy
	err := r.withRead(ctx, "find_policy", "policy", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Policy{}), scope).
			Preload("Documents", func(db *gorm.DB) *gorm.DB {
				return db.Order("uploaded_business_documents.id ASC")
			}).
			Preload("Business").
			Where("policies.id = ?", id).First(&policy).Error, "policy", id)
	})
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListPolicies lists policies visible through scope, newest effective date first.
func (r *PostgresRepo) ListPolicies(ctx context.Context, scope access.Scope, filter PolicyFilter) ([]model.Policy, error) {
	var policies []model.Policy
	err := r.withRead(ctx, "list_policies", "policy", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.Policy{}), scope).Preload("Documents")
		if filter.BusinessID != nil {
			q = q.Where("policies.business_id = ?", *filter.BusinessID)
		}
		return checkConstraintViolation(q.Order("policies.effective_date DESC").
			Order("policies.policy_type ASC").Order("policies.id ASC").Find(&policies).Error)
	})
	return policies, err
}

// AttachPolicyDocument associates an upload with a policy. Attaching twice is a no-op.
func (r *PostgresRepo) AttachPolicyDocument(ctx context.Context, policyID, uploadedDocumentID int64) error {
	return r.withTransaction(ctx, "attach_policy_document", "policy", func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("policy_documents").
			Where("policy_id = ? AND uploaded_business_document_id = ?", policyID, uploadedDocumentID).
			Count(&count).Error; err != nil {
			return checkConstraintViolation(err)
		}
		if count > 0 {
			return nil
		}
		return checkConstraintViolation(tx.Exec(
			"INSERT INTO policy_documents (policy_id, uploaded_business_document_id) VALUES (?, ?)",
			policyID, uploadedDocumentID).Error)
	})
}

// DetachPolicyDocument removes an association. It reports whether one existed.
func (r *PostgresRepo) DetachPolicyDocument(ctx context.Context, policyID, uploadedDocumentID int64) (bool, error) {
	var removed bool
	err := r.withTransaction(ctx, "detach_policy_document", "policy", func(tx *gorm.DB) error {
		res := tx.Exec("DELETE FROM policy_documents WHERE policy_id = ? AND uploaded_business_document_id = ?",
			policyID, uploadedDocumentID)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}
