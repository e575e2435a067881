package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// Upload is a file received for a business.
type Upload struct {
	Name        string
	Description string
	Filename    string
	ContentType string
	Body        io.Reader
}

// storeUpload saves the file under the business directory and records it.
// The file is removed again when the record cannot be written.
func (s *Service) storeUpload(ctx context.Context, businessID int64, up Upload) (*model.UploadedBusinessDocument, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", apperrors.ErrBadRequest)
	}
	if up.Body == nil {
		return nil, fmt.Errorf("%w: file is required", apperrors.ErrBadRequest)
	}
	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = strings.TrimSpace(up.Filename)
	}
	if name == "" {
		return nil, apperrors.NewValidation("name", "required", "This field is required.")
	}

	filename := utils.SanitizeFilename(up.Filename)
	stored, size, err := s.files.Save(ctx, model.UploadPath(businessID, filename), up.Body)
	if err != nil {
		return nil, err
	}

	doc := &model.UploadedBusinessDocument{
		BusinessID:  businessID,
		Name:        name,
		Description: up.Description,
		FilePath:    stored,
		FileSize:    size,
		ContentType: up.ContentType,
	}
	if err := s.repo.CreateUploadedDocument(ctx, doc); err != nil {
		s.deleteFiles(ctx, []string{stored})
		return nil, err
	}
	logger.FromContext(ctx).Info("Document uploaded",
		zap.Int64("business_id", businessID),
		zap.Int64("uploaded_document_id", doc.ID),
		zap.String("path", stored),
		zap.String("size", utils.ByteCountSI(size)),
	)
	return doc, nil
}

// discardUpload removes an upload record and its file, logging failures.
func (s *Service) discardUpload(ctx context.Context, doc *model.UploadedBusinessDocument) {
	path, err := s.repo.DeleteUploadedDocument(ctx, doc.ID)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to discard uploaded document",
			zap.Int64("uploaded_document_id", doc.ID), zap.Error(err))
		path = doc.FilePath
	}
	s.deleteFiles(ctx, []string{path})
}
