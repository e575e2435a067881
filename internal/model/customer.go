package model

import (
	"strings"
	"time"

	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/validator"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// Customer is a client of an agency.
type Customer struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AgencyID    int64     `json:"agency_id" gorm:"not null;index" validate:"required"`
	CreatedByID *int64    `json:"created_by_id,omitempty" gorm:"index"`
	FirstName   string    `json:"first_name" gorm:"type:text;not null" validate:"required,max=100"`
	LastName    string    `json:"last_name" gorm:"type:text;not null" validate:"required,max=100"`
	Email       string    `json:"email" gorm:"type:text" validate:"omitempty,email"`
	PhoneNumber string    `json:"phone_number" gorm:"type:text;not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Agency     *Agency    `json:"agency,omitempty" gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE"`
	CreatedBy  *User      `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	Businesses []Business `json:"businesses,omitempty" gorm:"foreignKey:CustomerID"`
}

// TableName specifies the table name for the Customer model, respecting the Namer.
func (Customer) TableName(namer schema.Namer) string {
	return namer.TableName("customers")
}

// FullName returns "first last".
func (c Customer) FullName() string {
	return utils.FullName(c.FirstName, c.LastName)
}

// CustomerUpdateColumns lists the columns an update may overwrite.
func CustomerUpdateColumns() []string {
	return []string{"first_name", "last_name", "email", "phone_number"}
}

// ValidateCustomer checks a customer and returns it with its phone number normalized.
func ValidateCustomer(c Customer) (Customer, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	if err := validator.Validate(c); err != nil {
		return c, err
	}
	phone, err := utils.NormalizePhone(c.PhoneNumber)
	if err != nil {
		return c, err
	}
	c.PhoneNumber = phone
	return c, nil
}
