package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// CreateCustomer inserts a validated customer.
func (r *PostgresRepo) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	return r.withTransaction(ctx, "create_customer", "customer", func(tx *gorm.DB) error {
		return checkConstraintViolation(tx.Omit(clause.Associations).Create(customer).Error)
	})
}

// UpdateCustomer overwrites the editable columns of a customer.
func (r *PostgresRepo) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	return r.withTransaction(ctx, "update_customer", "customer", func(tx *gorm.DB) error {
		res := tx.Model(customer).Select(model.CustomerUpdateColumns()).Updates(customer)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("customer", customer.ID)
		}
		return nil
	})
}

// DeleteCustomer removes a customer with its businesses and everything under
// them. It returns the stored file paths of removed uploads.
func (r *PostgresRepo) DeleteCustomer(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.withTransaction(ctx, "delete_customer", "customer", func(tx *gorm.DB) error {
		var businessIDs []int64
		if err := tx.Model(&model.Business{}).Where("customer_id = ?", id).Pluck("id", &businessIDs).Error; err != nil {
			return checkConstraintViolation(err)
		}
		var err error
		if paths, err = deleteBusinessesTx(tx, businessIDs); err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&model.CallRecord{}).Error; err != nil {
			return checkConstraintViolation(err)
		}
		res := tx.Delete(&model.Customer{}, id)
		if res.Error != nil {
			return checkConstraintViolation(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("customer", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// FindCustomer returns a customer visible through scope.
func (r *PostgresRepo) FindCustomer(ctx context.Context, scope access.Scope, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.withRead(ctx, "find_customer", "customer", func(db *gorm.DB) error {
		return findErr(applyScope(db.Model(&model.Customer{}), scope).
			Preload("Agency").
			Where("customers.id = ?", id).First(&customer).Error, "customer", id)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers lists customers visible through scope.
func (r *PostgresRepo) ListCustomers(ctx context.Context, scope access.Scope) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.withRead(ctx, "list_customers", "customer", func(db *gorm.DB) error {
		return checkConstraintViolation(applyScope(db.Model(&model.Customer{}), scope).
			Order("customers.last_name ASC").Order("customers.first_name ASC").Order("customers.id ASC").
			Find(&customers).Error)
	})
	return customers, err
}

// FindCustomerByPhone returns the oldest customer with a normalized phone number.
// It is not scoped: callers are provider webhooks without a principal.
func (r *PostgresRepo) FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var customer model.Customer
	err := r.withRead(ctx, "find_customer_by_phone", "customer", func(db *gorm.DB) error {
		return findErr(db.Where("phone_number = ?", phone).Order("id ASC").First(&customer).Error, "customer with phone", phone)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
