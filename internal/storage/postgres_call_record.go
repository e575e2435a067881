package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateCallRecord stores a placed call.
func (r *PostgresRepo) CreateCallRecord(ctx context.Context, call *model.CallRecord) error {
	return r.withTransaction(ctx, "create_call_record", "call_record", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(call).Error)
	})
}

// FindCallRecordByProviderID returns the record of a provider call id.
func (r *PostgresRepo) FindCallRecordByProviderID(ctx context.Context, providerCallID string) (*model.CallRecord, error) {
	var call model.CallRecord
	err := r.withRead(ctx, "find_call_record", "call_record", func(db *gorm.DB) error {
		return findErr(db.Where("provider_call_id = ?", providerCallID).First(&call).Error, "call record", providerCallID)
	})
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// UpdateCallRecord saves status and structured data of a call.
func (r *PostgresRepo) UpdateCallRecord(ctx context.Context, call *model.CallRecord) error {
	return r.withTransaction(ctx, "update_call_record", "call_record", func(tx *gorm.DB) error {
		res := tx.Model(call).Select("status", "structured_data", "updated_at").Updates(call)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("call record", call.ID)
		}
		return nil
	})
}
