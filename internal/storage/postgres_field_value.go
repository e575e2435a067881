package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

const fieldValueInsertSavepoint = "field_value_insert"

// upsertFieldValueRow updates the row of (field, business) or inserts one.
// Losing an insert race to a concurrent writer turns into an update of the
// winner's row. Inside a transaction the insert runs under a savepoint so the
// failed statement does not abort the whole unit.
func upsertFieldValueRow(ctx context.Context, db *gorm.DB, fv model.FieldValue, inTx bool) (*model.FieldValue, error) {
	update := func(existing *model.FieldValue) error {
		existing.Value = fv.Value
		existing.Source = fv.Source
		existing.SourceID = fv.SourceID
		return db.Model(existing).Select(model.FieldValueUpdateColumns()).Updates(existing).Error
	}

	find := func() (*model.FieldValue, error) {
		var existing model.FieldValue
		err := db.Where("field_id = ? AND business_id = ?", fv.FieldID, fv.BusinessID).First(&existing).Error
		if err != nil {
			return nil, err
		}
		return &existing, nil
	}

	existing, err := find()
	if err == nil {
		return existing, update(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if inTx {
		if err := db.SavePoint(fieldValueInsertSavepoint).Error; err != nil {
			return nil, err
		}
	}
	row := fv
	row.ID = 0
	createErr := db.Omit(clause.Associations).Create(&row).Error
	if createErr == nil {
		return &row, nil
	}
	if !errors.Is(checkConstraintViolation(createErr), apperrors.ErrDuplicate) {
		return nil, createErr
	}
	if inTx {
		if err := db.RollbackTo(fieldValueInsertSavepoint).Error; err != nil {
			return nil, err
		}
	}

	logger.FromContext(ctx).Debug("Field value insert lost a race, updating instead",
		zap.Int64("field_id", fv.FieldID), zap.Int64("business_id", fv.BusinessID))
	existing, err = find()
	if err != nil {
		return nil, err
	}
	return existing, update(existing)
}

// UpsertFieldValue writes the value of (field, business): the existing row is
// updated, otherwise a row is inserted.
func (r *PostgresRepo) UpsertFieldValue(ctx context.Context, fv model.FieldValue) (*model.FieldValue, error) {
	startTime := utils.Now()
	db := r.db.WithContext(ctx)

	var saved *model.FieldValue
	err := retryableOperation(ctx, newRetryPolicy(ctx, commitRetryMaxElapsedTime), "upsert_field_value", func() error {
		var opErr error
		saved, opErr = upsertFieldValueRow(ctx, db, fv, false)
		return opErr
	})
	observer.ObserveDbOperationDuration("upsert", "field_value", time.Since(startTime), err)
	if err != nil {
		return nil, checkConstraintViolation(err)
	}
	return saved, nil
}

// UpsertFieldValues writes several values in one transaction. Either every
// value is written or none is.
func (r *PostgresRepo) UpsertFieldValues(ctx context.Context, values []model.FieldValue) ([]model.FieldValue, error) {
	var saved []model.FieldValue
	err := r.withTransaction(ctx, "upsert_field_values", "field_value", func(tx *gorm.DB) error {
		saved = make([]model.FieldValue, 0, len(values))
		for _, fv := range values {
			row, err := upsertFieldValueRow(ctx, tx, fv, true)
			if err != nil {
				return checkConstraintViolation(err)
			}
			saved = append(saved, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateFieldValue overwrites value and source of an existing row.
func (r *PostgresRepo) UpdateFieldValue(ctx context.Context, fv *model.FieldValue) error {
	return r.withTransaction(ctx, "update_field_value", "field_value", func(tx *gorm.DB) error {
		res := tx.Model(fv).Select(model.FieldValueUpdateColumns()).Updates(fv)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("field value", fv.ID)
		}
		return nil
	})
}

// DeleteFieldValue removes one value row.
func (r *PostgresRepo) DeleteFieldValue(ctx context.Context, id int64) error {
	return r.withTransaction(ctx, "delete_field_value", "field_value", func(tx *gorm.DB) error {
		res := tx.Delete(&model.FieldValue{}, id)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("field value", id)
		}
		return nil
	})
}

// FindFieldValue returns a value visible through scope, with its field.
func (r *PostgresRepo) FindFieldValue(ctx context.Context, scope access.Scope, id int64) (*model.FieldValue, error) {
	var fv model.FieldValue
	err := r.withRead(ctx, "find_field_value", "field_value", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.FieldValue{}), scope).
			Preload("Field").
			Where("field_values.id = ?", id).First(&fv).Error, "field value", id)
	})
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

// ListFieldValues lists values visible through scope.
func (r *PostgresRepo) ListFieldValues(ctx context.Context, scope access.Scope, filter FieldValueFilter) ([]model.FieldValue, error) {
	var values []model.FieldValue
	err := r.withRead(ctx, "list_field_values", "field_value", func(db *gorm.DB) error {
		q := applyScope(db.Model(&model.FieldValue{}), scope).Preload("Field")
		if filter.BusinessID != nil {
			q = q.Where("field_values.business_id = ?", *filter.BusinessID)
		}
		if filter.Source != "" {
			q = q.Where("field_values.source = ?", filter.Source)
		}
		if filter.SourceID != nil {
			q = q.Where("field_values.source_id = ?", *filter.SourceID)
		}
		return checkConstraintViolation(q.Order("field_values.id ASC").Find(&values).Error)
	})
	return values, err
}

// MissingRequiredFields returns the required fields of a template that have no
// value row for the business, by name. Presence counts, not content.
func (r *PostgresRepo) MissingRequiredFields(ctx context.Context, documentID, businessID int64) ([]model.Field, error) {
	var fields []model.Field
	err := r.withRead(ctx, "missing_required_fields", "field", func(db *gorm.DB) error {
		filled := db.Session(&gorm.Session{NewDB: true}).Model(&model.FieldValue{}).
			Select("field_id").Where("business_id = ?", businessID)
		err := db.Where("document_id = ? AND is_required = ?", documentID, true).
			Where("id NOT IN (?)", filled).
			Order("name ASC").Order("id ASC").
			Find(&fields).Error
		if err != nil {
			return fmt.Errorf("%w: failed to compute missing fields: %w", apperrors.ErrDatabase, err)
		}
		return nil
	})
	return fields, err
}
