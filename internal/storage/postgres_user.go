package storage

import (
	"context"

	"gorm.io/gorm"

	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateUser inserts a user. A taken username maps to ErrDuplicate.
func (r *PostgresRepo) CreateUser(ctx context.Context, user *model.User) error {
	return r.withTransaction(ctx, "create_user", "user", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Create(user).Error)
	})
}

// FindUserByID returns a user by primary key.
func (r *PostgresRepo) FindUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.withRead(ctx, "find_user", "user", func(db *gorm.DB) error {
		return findErr(db.First(&user, id).Error, "user", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByUsername returns the user with the given username.
func (r *PostgresRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.withRead(ctx, "find_user_by_username", "user", func(db *gorm.DB) error {
		return findErr(db.Where("username = ?", username).First(&user).Error, "user", username)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
