package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/validator"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// PolicyType is the line of insurance of a policy.
type PolicyType string

const (
	PolicyGeneralLiability      PolicyType = "general_liability"
	PolicyCommercialProperty    PolicyType = "commercial_property"
	PolicyWorkersComp           PolicyType = "workers_comp"
	PolicyCommercialAuto        PolicyType = "commercial_auto"
	PolicyProfessionalLiability PolicyType = "professional_liability"
	PolicyBusinessInterruption  PolicyType = "business_interruption"
)

// PolicyTypes lists all known policy types.
func PolicyTypes() []PolicyType {
	return []PolicyType{
		PolicyGeneralLiability, PolicyCommercialProperty, PolicyWorkersComp,
		PolicyCommercialAuto, PolicyProfessionalLiability, PolicyBusinessInterruption,
	}
}

// Valid reports whether t is a known policy type.
func (t PolicyType) Valid() bool {
	for _, known := range PolicyTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Policy is an insurance policy held by a business.
type Policy struct {
	ID             int64               `json:"id" gorm:"primaryKey;autoIncrement"`
	BusinessID     int64               `json:"business" gorm:"not null;index" validate:"required"`
	PolicyNumber   string              `json:"policy_number" gorm:"type:text"`
	Carrier        string              `json:"carrier" gorm:"type:text"`
	AnnualPremium  decimal.NullDecimal `json:"annual_premium" gorm:"type:numeric(12,2)"`
	EffectiveDate  *time.Time          `json:"effective_date" gorm:"type:date"`
	ExpirationDate *time.Time          `json:"expiration_date" gorm:"type:date"`
	PolicyType     PolicyType          `json:"policy_type" gorm:"type:text;not null"`
	CreatedAt      time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time           `json:"updated_at" gorm:"autoUpdateTime"`

	Business  *Business                  `json:"-" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
	Documents []UploadedBusinessDocument `json:"documents,omitempty" gorm:"many2many:policy_documents;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Policy model, respecting the Namer.
func (Policy) TableName(namer schema.Namer) string {
	return namer.TableName("policies")
}

// IsActive reports whether today falls within the policy period. Both dates must be set.
func (p Policy) IsActive(today time.Time) bool {
	if p.EffectiveDate == nil || p.ExpirationDate == nil {
		return false
	}
	day := utils.TruncateDay(today)
	return !day.Before(utils.TruncateDay(*p.EffectiveDate)) && !day.After(utils.TruncateDay(*p.ExpirationDate))
}

// MarshalJSON adds the read-only is_active flag, evaluated for today.
func (p Policy) MarshalJSON() ([]byte, error) {
	type policyJSON Policy
	return json.Marshal(struct {
		policyJSON
		IsActive bool `json:"is_active"`
	}{policyJSON: policyJSON(p), IsActive: p.IsActive(utils.Today())})
}

// PolicyUpdateColumns lists the columns an update may overwrite.
func PolicyUpdateColumns() []string {
	return []string{"policy_number", "carrier", "annual_premium", "effective_date", "expiration_date", "policy_type"}
}

// ValidatePolicy checks premium, type and dates of a policy.
func ValidatePolicy(p Policy) (Policy, error) {
	p.PolicyNumber = strings.TrimSpace(p.PolicyNumber)
	p.Carrier = strings.TrimSpace(p.Carrier)

	var errs apperrors.ValidationErrors
	if err := validator.Validate(p); err != nil {
		fields := apperrors.FieldErrors(err)
		if fields == nil {
			return p, err
		}
		errs = append(errs, fields...)
	}
	if !p.PolicyType.Valid() {
		errs = append(errs, apperrors.NewValidation("policy_type", "invalid_choice",
			"\""+string(p.PolicyType)+"\" is not a valid choice."))
	}
	if p.AnnualPremium.Valid && p.AnnualPremium.Decimal.IsNegative() {
		errs = append(errs, apperrors.NewValidation("annual_premium", "min_value",
			"Ensure this value is greater than or equal to 0."))
	}
	if p.EffectiveDate != nil && p.ExpirationDate != nil && p.ExpirationDate.Before(*p.EffectiveDate) {
		errs = append(errs, apperrors.NewValidation("expiration_date", "date_order",
			"Expiration date must be on or after the effective date."))
	}
	return p, errs.OrNil()
}
