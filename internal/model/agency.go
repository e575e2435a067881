package model

import (
	"time"

	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/validator"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// AgencyRole is the role a user holds inside an agency.
type AgencyRole string

const (
	RoleOwner AgencyRole = "owner"
	RoleAdmin AgencyRole = "admin"
	RoleAgent AgencyRole = "agent"
	RoleStaff AgencyRole = "staff"
)

// Valid reports whether r is a known role.
func (r AgencyRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleAgent, RoleStaff:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may change memberships.
func (r AgencyRole) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Agency is the tenancy root.
type Agency struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:text;not null;index" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:text"`
	Address     string    `json:"address" gorm:"type:text"`
	PhoneNumber string    `json:"phone_number" gorm:"type:text"`
	Email       string    `json:"email" gorm:"type:text" validate:"omitempty,email"`
	Website     string    `json:"website" gorm:"type:text" validate:"omitempty,url"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Members []AgencyUser `json:"members,omitempty" gorm:"foreignKey:AgencyID"`
}

// TableName specifies the table name for the Agency model, respecting the Namer.
func (Agency) TableName(namer schema.Namer) string {
	return namer.TableName("agencies")
}

// AgencyUser is a user's membership in an agency. At most one membership per
// agency is primary.
type AgencyUser struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64      `json:"user_id" gorm:"not null;uniqueIndex:idx_agency_user"`
	AgencyID  int64      `json:"agency_id" gorm:"not null;uniqueIndex:idx_agency_user;uniqueIndex:idx_agency_primary,where:is_primary = true"`
	Role      AgencyRole `json:"role" gorm:"type:text;not null;default:staff"`
	IsPrimary bool       `json:"is_primary" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Agency *Agency `json:"-" gorm:"foreignKey:AgencyID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the AgencyUser model, respecting the Namer.
func (AgencyUser) TableName(namer schema.Namer) string {
	return namer.TableName("agency_users")
}

// ValidateAgency checks an agency and returns it with its phone number normalized.
func ValidateAgency(a Agency) (Agency, error) {
	if err := validator.Validate(a); err != nil {
		return a, err
	}
	phone, err := utils.NormalizeOptionalPhone(a.PhoneNumber)
	if err != nil {
		return a, err
	}
	a.PhoneNumber = phone
	return a, nil
}

// ValidateMembership defaults and checks the role of a membership.
func ValidateMembership(m AgencyUser) (AgencyUser, error) {
	if m.Role == "" {
		m.Role = RoleStaff
	}
	if !m.Role.Valid() {
		return m, invalidChoice("role", string(m.Role))
	}
	return m, nil
}
