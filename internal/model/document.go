package model

import (
	"strings"
	"time"

	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/validator"
)

// FieldType is the value type of a template field.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean:
		return true
	}
	return false
}

// Document is a template of fields, e.g. an ACORD form.
type Document struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string    `json:"name" gorm:"type:text;not null;index" validate:"required,max=255"`
	Description   string    `json:"description" gorm:"type:text"`
	AgencyOwnerID *int64    `json:"agency_owner_id,omitempty" gorm:"index"`
	IsPublic      bool      `json:"is_public" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	AgencyOwner *User   `json:"-" gorm:"foreignKey:AgencyOwnerID;constraint:OnDelete:SET NULL"`
	Fields      []Field `json:"fields,omitempty" gorm:"foreignKey:DocumentID"`
}

// TableName specifies the table name for the Document model, respecting the Namer.
func (Document) TableName(namer schema.Namer) string {
	return namer.TableName("documents")
}

// IsTemplate reports whether the document defines at least one field. Fields must be preloaded.
func (d Document) IsTemplate() bool {
	return len(d.Fields) > 0
}

// OwnedBy reports whether userID owns the document.
func (d Document) OwnedBy(userID int64) bool {
	return d.AgencyOwnerID != nil && *d.AgencyOwnerID == userID
}

// DocumentUpdateColumns lists the columns an update may overwrite.
func DocumentUpdateColumns() []string {
	return []string{"name", "description", "is_public"}
}

// Field is one question of a template.
type Field struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID  int64     `json:"document_id" gorm:"not null;index"`
	FieldID     string    `json:"field_id" gorm:"column:field_id;type:text;not null;uniqueIndex" validate:"required,max=100"`
	Name        string    `json:"name" gorm:"type:text;not null" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:text"`
	FieldType   FieldType `json:"field_type" gorm:"type:text;not null;default:text"`
	IsRequired  bool      `json:"is_required" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Document *Document `json:"-" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Field model, respecting the Namer.
func (Field) TableName(namer schema.Namer) string {
	return namer.TableName("fields")
}

// NormalizeFieldID lowercases an identifier and replaces spaces with underscores.
func NormalizeFieldID(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), " ", "_")
}

// ValidateDocument checks a document template header.
func ValidateDocument(d Document) (Document, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := validator.Validate(d); err != nil {
		return d, err
	}
	return d, nil
}

// ValidateField normalizes the field identifier and checks the type.
func ValidateField(f Field) (Field, error) {
	f.FieldID = NormalizeFieldID(f.FieldID)
	if f.FieldType == "" {
		f.FieldType = FieldTypeText
	}
	if err := validator.Validate(f); err != nil {
		return f, err
	}
	if !f.FieldType.Valid() {
		return f, invalidChoice("field_type", string(f.FieldType))
	}
	return f, nil
}
