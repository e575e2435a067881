// Package seed loads reference data: the ACORD 125 template and a sample agency.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

//go:embed acord125.yaml
var acord125YAML []byte

// TemplateSpec is a template definition as stored in a seed file.
type TemplateSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Public      bool        `yaml:"public"`
	Fields      []FieldSpec `yaml:"fields"`
}

type FieldSpec struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Type        model.FieldType `yaml:"type"`
	Required    bool            `yaml:"required"`
}

// TemplateResult reports what a template seed run changed.
type TemplateResult struct {
	Document       *model.Document
	DocumentCreate bool
	FieldsCreated  int
	FieldsSkipped  int
}

// ParseTemplate decodes a template definition.
func ParseTemplate(data []byte) (*TemplateSpec, error) {
	var spec TemplateSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if spec.Name == "" {
		return nil, errors.New("template name is required")
	}
	return &spec, nil
}

// ACORD125 returns the embedded ACORD 125 template definition.
func ACORD125() (*TemplateSpec, error) {
	return ParseTemplate(acord125YAML)
}

// Template gets or creates the document named by spec and each of its fields.
// Running it again changes nothing.
func Template(ctx context.Context, repo storage.Repository, spec *TemplateSpec) (*TemplateResult, error) {
	log := logger.FromContext(ctx).With(zap.String("template", spec.Name))
	res := &TemplateResult{}

	doc, err := repo.FindDocumentByName(ctx, spec.Name)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		validated, verr := model.ValidateDocument(model.Document{
			Name:        spec.Name,
			Description: spec.Description,
			IsPublic:    spec.Public,
		})
		if verr != nil {
			return nil, verr
		}
		if err := repo.CreateDocument(ctx, &validated); err != nil {
			return nil, err
		}
		doc = &validated
		res.DocumentCreate = true
		log.Info("Created template", zap.Int64("document_id", doc.ID))
	default:
		return nil, err
	}
	res.Document = doc

	for _, fs := range spec.Fields {
		existing, err := repo.FindFieldByFieldID(ctx, model.NormalizeFieldID(fs.ID))
		if err == nil {
			if existing.DocumentID != doc.ID {
				log.Warn("Field id already used by another template", zap.String("field_id", existing.FieldID), zap.Int64("document_id", existing.DocumentID))
			}
			res.FieldsSkipped++
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		field, err := model.ValidateField(model.Field{
			DocumentID:  doc.ID,
			FieldID:     fs.ID,
			Name:        fs.Name,
			Description: fs.Description,
			FieldType:   fs.Type,
			IsRequired:  fs.Required,
		})
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fs.ID, err)
		}
		if err := repo.CreateField(ctx, &field); err != nil {
			return nil, err
		}
		res.FieldsCreated++
	}

	log.Info("Template seeded", zap.Int("fields_created", res.FieldsCreated), zap.Int("fields_skipped", res.FieldsSkipped))
	return res, nil
}
