package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// DocumentInput is the writable part of a template.
type DocumentInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsPublic    bool         `json:"is_public"`
	Fields      []FieldInput `json:"fields,omitempty"`
}

// FieldInput defines one field of a template.
type FieldInput struct {
	FieldID     string          `json:"field_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	FieldType   model.FieldType `json:"field_type"`
	IsRequired  bool            `json:"is_required"`
}

func (in FieldInput) toModel(documentID int64) (model.Field, error) {
	return model.ValidateField(model.Field{
		DocumentID:  documentID,
		FieldID:     in.FieldID,
		Name:        in.Name,
		Description: in.Description,
		FieldType:   in.FieldType,
		IsRequired:  in.IsRequired,
	})
}

// ListDocuments lists templates the principal owns plus public ones.
func (s *Service) ListDocuments(ctx context.Context) ([]model.Document, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDocuments(ctx, access.DocumentScope(p))
}

// GetDocument returns a visible template with its fields.
func (s *Service) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindDocument(ctx, access.DocumentScope(p), id)
}

// CreateDocument creates a template owned by the principal, with optional fields.
func (s *Service) CreateDocument(ctx context.Context, in DocumentInput) (*model.Document, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}

	owner := p.UserID
	doc, err := model.ValidateDocument(model.Document{
		Name:          in.Name,
		Description:   in.Description,
		IsPublic:      in.IsPublic,
		AgencyOwnerID: &owner,
	})
	if err != nil {
		return nil, err
	}

	var errs apperrors.ValidationErrors
	for _, fin := range in.Fields {
		field, err := fin.toModel(0)
		if err != nil {
			if fields := apperrors.FieldErrors(err); fields != nil {
				errs = append(errs, fields...)
				continue
			}
			return nil, err
		}
		doc.Fields = append(doc.Fields, field)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateDocument(ctx, &doc); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Document created",
		zap.Int64("document_id", doc.ID),
		zap.Int("fields", len(doc.Fields)),
	)
	return &doc, nil
}

// ownedDocument loads a visible template and requires the principal to own it.
func (s *Service) ownedDocument(ctx context.Context, id int64) (*model.Document, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.FindDocument(ctx, access.DocumentScope(p), id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireDocumentOwner(p, *doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument overwrites name, description and visibility of an owned template.
func (s *Service) UpdateDocument(ctx context.Context, id int64, in DocumentInput) (*model.Document, error) {
	doc, err := s.ownedDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *doc
	updated.Name = in.Name
	updated.Description = in.Description
	updated.IsPublic = in.IsPublic
	updated, err = model.ValidateDocument(updated)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDocument(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDocument removes an owned template with its fields, values and assignments.
func (s *Service) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := s.ownedDocument(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteDocument(ctx, id)
}

// SetDocumentVisibility makes an owned template public or private.
func (s *Service) SetDocumentVisibility(ctx context.Context, id int64, public bool) (*model.Document, error) {
	doc, err := s.ownedDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.IsPublic = public
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddField appends a field to an owned template.
func (s *Service) AddField(ctx context.Context, documentID int64, in FieldInput) (*model.Field, error) {
	if _, err := s.ownedDocument(ctx, documentID); err != nil {
		return nil, err
	}
	field, err := in.toModel(documentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateField(ctx, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// ListDocumentBusinesses lists the visible assignments of a template.
func (s *Service) ListDocumentBusinesses(ctx context.Context, documentID int64) ([]model.BusinessDocument, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindDocument(ctx, access.DocumentScope(p), documentID); err != nil {
		return nil, err
	}
	return s.repo.ListBusinessDocuments(ctx, access.BusinessDocumentScope(p), storage.BusinessDocumentFilter{DocumentID: &documentID})
}

// ListFields lists fields of visible templates, optionally of one template.
func (s *Service) ListFields(ctx context.Context, documentID *int64) ([]model.Field, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFields(ctx, access.FieldScope(p), documentID)
}

// GetField returns a field of a visible template.
func (s *Service) GetField(ctx context.Context, id int64) (*model.Field, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindField(ctx, access.FieldScope(p), id)
}

// ListAllBusinessDocuments lists every visible assignment.
func (s *Service) ListAllBusinessDocuments(ctx context.Context) ([]model.BusinessDocument, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBusinessDocuments(ctx, access.BusinessDocumentScope(p), storage.BusinessDocumentFilter{})
}

// GetBusinessDocument returns a visible assignment with its business and template.
func (s *Service) GetBusinessDocument(ctx context.Context, id int64) (*model.BusinessDocument, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindBusinessDocument(ctx, access.BusinessDocumentScope(p), id)
}

// UpdateBusinessDocumentStatus moves an assignment to a new status.
func (s *Service) UpdateBusinessDocumentStatus(ctx context.Context, id int64, status model.BusinessDocumentStatus) (*model.BusinessDocument, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", apperrors.ErrBadRequest, status)
	}
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}
	bd, err := s.repo.FindBusinessDocument(ctx, access.BusinessDocumentScope(p), id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBusinessDocumentStatus(ctx, id, status); err != nil {
		return nil, err
	}
	bd.Status = status
	return bd, nil
}
