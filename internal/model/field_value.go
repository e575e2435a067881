package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/schema"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// ValueSource records where a field value came from.
type ValueSource string

const (
	SourceManual   ValueSource = "manual"
	SourceDocument ValueSource = "document"
	SourcePhone    ValueSource = "phone"
	SourceEmail    ValueSource = "email"
)

// Valid reports whether s is a known source.
func (s ValueSource) Valid() bool {
	switch s {
	case SourceManual, SourceDocument, SourcePhone, SourceEmail:
		return true
	}
	return false
}

// FieldValue is the single current value of a field for a business.
type FieldValue struct {
	ID         int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	FieldID    int64       `json:"field" gorm:"column:field_id;not null;uniqueIndex:idx_field_business"`
	BusinessID int64       `json:"business" gorm:"not null;uniqueIndex:idx_field_business;index"`
	Value      string      `json:"value" gorm:"type:text"`
	Source     ValueSource `json:"source" gorm:"type:text;not null;default:manual"`
	SourceID   *int64      `json:"source_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `json:"updated_at" gorm:"autoUpdateTime"`

	Field    *Field    `json:"field_detail,omitempty" gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE"`
	Business *Business `json:"-" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the FieldValue model, respecting the Namer.
func (FieldValue) TableName(namer schema.Namer) string {
	return namer.TableName("field_values")
}

// FieldValueUpdateColumns lists the columns an upsert overwrites on an existing row.
func FieldValueUpdateColumns() []string {
	return []string{"value", "source", "source_id", "updated_at"}
}

// ValidateFieldValue checks value against the field's type and requiredness.
// It returns the value to persist: text is kept as given, typed values are
// stored trimmed.
func ValidateFieldValue(field Field, value string) (string, error) {
	if value == "" {
		if field.IsRequired {
			return value, apperrors.NewValidation(field.FieldID, "required",
				fmt.Sprintf("%s is required", field.Name))
		}
		return value, nil
	}

	trimmed := strings.TrimSpace(value)
	switch field.FieldType {
	case FieldTypeNumber:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return value, apperrors.NewValidation(field.FieldID, "number",
				fmt.Sprintf("%s must be a number", field.Name))
		}
	case FieldTypeBoolean:
		switch strings.ToLower(trimmed) {
		case "true", "false", "1", "0":
		default:
			return value, apperrors.NewValidation(field.FieldID, "boolean",
				fmt.Sprintf("%s must be a boolean value", field.Name))
		}
	case FieldTypeDate:
		if _, err := utils.ParseDate(trimmed); err != nil {
			return value, apperrors.NewValidation(field.FieldID, "date",
				fmt.Sprintf("%s must be a valid date in YYYY-MM-DD format", field.Name))
		}
	default:
		return value, nil
	}
	return trimmed, nil
}

// NormalizeSource applies the default source and clears source_id for manual entries.
func NormalizeSource(source ValueSource, sourceID *int64) (ValueSource, *int64, error) {
	if source == "" {
		source = SourceManual
	}
	if !source.Valid() {
		return source, sourceID, invalidChoice("source", string(source))
	}
	if source == SourceManual {
		sourceID = nil
	}
	return source, sourceID, nil
}

func invalidChoice(field, value string) error {
	return apperrors.NewValidation(field, "invalid_choice",
		fmt.Sprintf("%q is not a valid choice.", value))
}
