package model

import (
	"strings"
	"time"

	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/validator"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// Business is a customer's business, the unit field values and policies hang off.
type Business struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID  int64     `json:"customer_id" gorm:"not null;index" validate:"required"`
	Name        string    `json:"name" gorm:"type:text;not null" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:text"`
	Address     string    `json:"address" gorm:"type:text"`
	PhoneNumber string    `json:"phone_number" gorm:"type:text"`
	Email       string    `json:"email" gorm:"type:text" validate:"omitempty,email"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Business model, respecting the Namer.
func (Business) TableName(namer schema.Namer) string {
	return namer.TableName("businesses")
}

// BusinessUpdateColumns lists the columns an update may overwrite.
func BusinessUpdateColumns() []string {
	return []string{"name", "description", "address", "phone_number", "email"}
}

// ValidateBusiness checks a business and normalizes its optional phone number.
func ValidateBusiness(b Business) (Business, error) {
	b.Name = strings.TrimSpace(b.Name)
	if err := validator.Validate(b); err != nil {
		return b, err
	}
	phone, err := utils.NormalizeOptionalPhone(b.PhoneNumber)
	if err != nil {
		return b, err
	}
	b.PhoneNumber = phone
	return b, nil
}
