package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateAgency inserts an agency.
func (r *PostgresRepo) CreateAgency(ctx context.Context, agency *model.Agency) error {
	return r.withTransaction(ctx, "create_agency", "agency", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(agency).Error)
	})
}

// FindAgency returns an agency visible through scope.
func (r *PostgresRepo) FindAgency(ctx context.Context, scope access.Scope, id int64) (*model.Agency, error) {
	var agency model.Agency
	err := r.withRead(ctx, "find_agency", "agency", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Agency{}), scope).Where("agencies.id = ?", id).First(&agency).Error, "agency", id)
	})
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

// FindAgencyByName returns the first agency with the given name.
func (r *PostgresRepo) FindAgencyByName(ctx context.Context, name string) (*model.Agency, error) {
	var agency model.Agency
	err := r.withRead(ctx, "find_agency_by_name", "agency", func(db *gorm.DB) error {
		return findErr(db.Where("name = ?", name).Order("id ASC").First(&agency).Error, "agency", name)
	})
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

// ListAgencies lists active agencies visible through scope, by name.
func (r *PostgresRepo) ListAgencies(ctx context.Context, scope access.Scope) ([]model.Agency, error) {
	var agencies []model.Agency
	err := r.withRead(ctx, "list_agencies", "agency", func(db *gorm.DB) error {
		return checkConstraintViolation(applyScope(db.Model(&model.Agency{}), scope).Order("agencies.name ASC").Find(&agencies).Error)
	})
	return agencies, err
}

// ListMemberships returns every agency membership of a user.
func (r *PostgresRepo) ListMemberships(ctx context.Context, userID int64) ([]model.AgencyUser, error) {
	var memberships []model.AgencyUser
	err := r.withRead(ctx, "list_memberships", "agency_user", func(db *gorm.DB) error {
		return checkConstraintViolation(db.Where("user_id = ?", userID).Order("agency_id ASC").Find(&memberships).Error)
	})
	return memberships, err
}

// ListAgencyMembers returns the members of an agency, primary first.
func (r *PostgresRepo) ListAgencyMembers(ctx context.Context, agencyID int64) ([]model.AgencyUser, error) {
	var members []model.AgencyUser
	err := r.withRead(ctx, "list_agency_members", "agency_user", func(db *gorm.DB) error {
		return checkConstraintViolation(db.Preload("User").
			Where("agency_id = ?", agencyID).
			Order("is_primary DESC").Order("id ASC").
			Find(&members).Error)
	})
	return members, err
}

// UpsertMembership creates or updates the (user, agency) membership. Setting a
// primary member demotes the current primary in the same transaction, with the
// agency row locked so concurrent promotions serialize.
func (r *PostgresRepo) UpsertMembership(ctx context.Context, membership model.AgencyUser) (*model.AgencyUser, error) {
	var saved model.AgencyUser
	err := r.withTransaction(ctx, "upsert_membership", "agency_user", func(tx *gorm.DB) error {
		var agency model.Agency
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agency, membership.AgencyID).Error; err != nil {
			return findErr(err, "agency", membership.AgencyID)
		}

		if membership.IsPrimary {
			if err := tx.Model(&model.AgencyUser{}).
				Where("agency_id = ? AND user_id <> ? AND is_primary = ?", membership.AgencyID, membership.UserID, true).
				Update("is_primary", false).Error; err != nil {
				return checkConstraintViolation(err)
			}
		}

		var existing model.AgencyUser
		err := tx.Where("agency_id = ? AND user_id = ?", membership.AgencyID, membership.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = membership
			saved.ID = 0
			return checkConstraintViolation(tx.Omit(clause.Associations).Create(&saved).Error)
		case err != nil:
			return fmt.Errorf("%w: failed to lock membership: %w", apperrors.ErrDatabase, err)
		}

		existing.Role = membership.Role
		existing.IsPrimary = membership.IsPrimary
		if err := tx.Model(&existing).Select("role", "is_primary", "updated_at").Updates(&existing).Error; err != nil {
			return checkConstraintViolation(err)
		}
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
