package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// CallRecord tracks an outbound voice call placed to collect missing fields.
type CallRecord struct {
	ID                 int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProviderCallID     string         `json:"call_id" gorm:"type:text;uniqueIndex;not null"`
	CustomerID         int64          `json:"customer" gorm:"not null;index"`
	BusinessDocumentID *int64         `json:"business_document,omitempty" gorm:"index"`
	Status             string         `json:"status" gorm:"type:text"`
	StructuredData     datatypes.JSON `json:"structured_data,omitempty"`
	CreatedAt          time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	Customer *Customer `json:"-" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the CallRecord model, respecting the Namer.
func (CallRecord) TableName(namer schema.Namer) string {
	return namer.TableName("call_records")
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Agency{}, &AgencyUser{}, &Customer{}, &Business{},
		&Document{}, &Field{}, &FieldValue{}, &BusinessDocument{},
		&UploadedBusinessDocument{}, &Policy{}, &CallRecord{},
	}
}
