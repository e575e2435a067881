package model

import (
	"fmt"
	"time"

	"gorm.io/gorm/schema"
)

// BusinessDocumentStatus tracks progress of filling a template for a business.
type BusinessDocumentStatus string

const (
	StatusPending    BusinessDocumentStatus = "pending"
	StatusInProgress BusinessDocumentStatus = "in_progress"
	StatusCompleted  BusinessDocumentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s BusinessDocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// BusinessDocument links a business to a template it has to fill.
type BusinessDocument struct {
	ID         int64                  `json:"id" gorm:"primaryKey;autoIncrement"`
	BusinessID int64                  `json:"business" gorm:"not null;uniqueIndex:idx_business_document"`
	DocumentID int64                  `json:"document" gorm:"not null;uniqueIndex:idx_business_document;index"`
	Status     BusinessDocumentStatus `json:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt  time.Time              `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time              `json:"updated_at" gorm:"autoUpdateTime"`

	Business *Business `json:"business_detail,omitempty" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
	Document *Document `json:"document_detail,omitempty" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the BusinessDocument model, respecting the Namer.
func (BusinessDocument) TableName(namer schema.Namer) string {
	return namer.TableName("business_documents")
}

// ValidateBusinessDocument defaults and checks the status.
func ValidateBusinessDocument(bd BusinessDocument) (BusinessDocument, error) {
	if bd.Status == "" {
		bd.Status = StatusPending
	}
	if !bd.Status.Valid() {
		return bd, invalidChoice("status", string(bd.Status))
	}
	return bd, nil
}

// UploadedBusinessDocument is a file uploaded for a business.
type UploadedBusinessDocument struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BusinessID  int64     `json:"business" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	FilePath    string    `json:"file" gorm:"type:text;not null"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type" gorm:"type:text"`
	CreatedAt   time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Business *Business `json:"-" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the UploadedBusinessDocument model, respecting the Namer.
func (UploadedBusinessDocument) TableName(namer schema.Namer) string {
	return namer.TableName("uploaded_business_documents")
}

// UploadPath is the storage path of an uploaded file, relative to the media root.
func UploadPath(businessID int64, filename string) string {
	return fmt.Sprintf("uploaded_documents/business_%d/%s", businessID, filename)
}
