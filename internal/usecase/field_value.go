package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// UpsertFieldValueInput is one value to reconcile into the store.
type UpsertFieldValueInput struct {
	Field      model.Field
	BusinessID int64
	Value      string
	Source     model.ValueSource
	SourceID   *int64
}

// FieldError is a value of a batch that could not be written.
type FieldError struct {
	FieldID string `json:"field_id"`
	Message string `json:"message"`
}

// BatchResult summarizes a batch upsert.
type BatchResult struct {
	Updated []model.FieldValue `json:"updated"`
	Skipped []string           `json:"skipped,omitempty"`
	Errors  []FieldError       `json:"errors,omitempty"`
}

// FieldValueInput is one entry of a business document value update.
type FieldValueInput struct {
	FieldID int64             `json:"field_id"`
	Value   interface{}       `json:"value"`
	Source  model.ValueSource `json:"source"`
}

// Upsert validates a value and writes it as the single current value of
// (field, business). The last writer wins for value and source.
func (s *Service) Upsert(ctx context.Context, in UpsertFieldValueInput) (*model.FieldValue, error) {
	source, sourceID, err := model.NormalizeSource(in.Source, in.SourceID)
	if err != nil {
		return nil, err
	}
	value, err := model.ValidateFieldValue(in.Field, in.Value)
	if err != nil {
		observer.IncFieldValueUpsert(string(source), err)
		return nil, err
	}

	saved, err := s.repo.UpsertFieldValue(ctx, model.FieldValue{
		FieldID:    in.Field.ID,
		BusinessID: in.BusinessID,
		Value:      value,
		Source:     source,
		SourceID:   sourceID,
	})
	observer.IncFieldValueUpsert(string(source), err)
	if err != nil {
		return nil, err
	}
	field := in.Field
	saved.Field = &field
	return saved, nil
}

// UpsertBatch writes values keyed by field id into one business. Keys are
// processed in sorted order and each pair independently: unknown field ids are
// skipped, nil values ignored and rejected values collected without stopping
// the batch. Any other failure stops the batch and is returned with the
// values written so far.
func (s *Service) UpsertBatch(ctx context.Context, businessID int64, values map[string]interface{}, source model.ValueSource, sourceID *int64) (BatchResult, error) {
	return s.upsertBatch(ctx, businessID, values, source, sourceID, false)
}

func (s *Service) upsertBatch(ctx context.Context, businessID int64, values map[string]interface{}, source model.ValueSource, sourceID *int64, canonicalDates bool) (BatchResult, error) {
	log := logger.FromContext(ctx).With(zap.Int64("business_id", businessID), zap.String("source", string(source)))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := BatchResult{Updated: []model.FieldValue{}}
	for _, key := range keys {
		raw := values[key]
		if raw == nil {
			continue
		}
		fieldID := model.NormalizeFieldID(key)

		field, err := s.repo.FindFieldByFieldID(ctx, fieldID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Debug("Skipping unknown field", zap.String("field_id", fieldID))
				result.Skipped = append(result.Skipped, fieldID)
				continue
			}
			log.Error("Field value batch aborted", zap.String("field_id", fieldID), zap.Error(err))
			return result, err
		}

		value := utils.Stringify(raw)
		if canonicalDates && field.FieldType == model.FieldTypeDate {
			value = utils.CanonicalDate(value)
		}

		saved, err := s.Upsert(ctx, UpsertFieldValueInput{
			Field:      *field,
			BusinessID: businessID,
			Value:      value,
			Source:     source,
			SourceID:   sourceID,
		})
		if err != nil {
			if !errors.Is(err, apperrors.ErrValidation) {
				log.Error("Field value batch aborted", zap.String("field_id", fieldID), zap.Error(err))
				return result, err
			}
			log.Warn("Field value rejected", zap.String("field_id", fieldID), zap.Error(err))
			result.Errors = append(result.Errors, FieldError{FieldID: fieldID, Message: fieldErrorMessage(err)})
			continue
		}
		result.Updated = append(result.Updated, *saved)
	}

	log.Info("Field value batch applied",
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func fieldErrorMessage(err error) string {
	if fields := apperrors.FieldErrors(err); len(fields) > 0 {
		return fields[0].Message
	}
	return err.Error()
}

// ListBusinessFieldValues lists every value of a visible business.
func (s *Service) ListBusinessFieldValues(ctx context.Context, businessID int64) ([]model.FieldValue, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), businessID); err != nil {
		return nil, err
	}
	return s.repo.ListFieldValues(ctx, access.FieldValueScope(p), storage.FieldValueFilter{BusinessID: &businessID})
}

// SetFieldValue writes one value of a business, addressing the field by its field id.
func (s *Service) SetFieldValue(ctx context.Context, businessID int64, fieldID, value string, source model.ValueSource) (*model.FieldValue, error) {
	_, p, err := s.businessForWrite(ctx, businessID)
	if err != nil {
		return nil, err
	}
	field, err := s.repo.FindFieldByFieldID(ctx, model.NormalizeFieldID(fieldID))
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindField(ctx, access.FieldScope(p), field.ID); err != nil {
		return nil, err
	}
	return s.Upsert(ctx, UpsertFieldValueInput{
		Field:      *field,
		BusinessID: businessID,
		Value:      value,
		Source:     source,
	})
}

// UpdateBusinessDocumentFieldValues writes values for the template of an
// assignment. Entries without a field id or value are ignored. Every entry
// must validate before anything is written, and the values are written in
// one transaction.
func (s *Service) UpdateBusinessDocumentFieldValues(ctx context.Context, businessDocumentID int64, inputs []FieldValueInput) ([]model.FieldValue, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}
	bd, err := s.repo.FindBusinessDocument(ctx, access.BusinessDocumentScope(p), businessDocumentID)
	if err != nil {
		return nil, err
	}
	if bd.Business != nil && bd.Business.Customer != nil {
		if _, err := s.authz.RequireMembership(ctx, p, bd.Business.Customer.AgencyID); err != nil {
			return nil, err
		}
	}

	templateFields := make(map[int64]model.Field)
	if bd.Document != nil {
		for _, f := range bd.Document.Fields {
			templateFields[f.ID] = f
		}
	}

	var (
		pending []model.FieldValue
		fields  []model.Field
		errs    apperrors.ValidationErrors
	)
	for _, in := range inputs {
		if in.FieldID == 0 || in.Value == nil {
			continue
		}
		field, ok := templateFields[in.FieldID]
		if !ok {
			return nil, fmt.Errorf("%w: field %d is not part of document %d", apperrors.ErrNotFound, in.FieldID, bd.DocumentID)
		}
		source, _, err := model.NormalizeSource(in.Source, nil)
		if err != nil {
			errs = append(errs, apperrors.FieldErrors(err)...)
			continue
		}
		value, err := model.ValidateFieldValue(field, utils.Stringify(in.Value))
		if err != nil {
			errs = append(errs, apperrors.FieldErrors(err)...)
			continue
		}
		pending = append(pending, model.FieldValue{
			FieldID:    field.ID,
			BusinessID: bd.BusinessID,
			Value:      value,
			Source:     source,
		})
		fields = append(fields, field)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []model.FieldValue{}, nil
	}

	saved, err := s.repo.UpsertFieldValues(ctx, pending)
	for _, fv := range pending {
		observer.IncFieldValueUpsert(string(fv.Source), err)
	}
	if err != nil {
		return nil, err
	}
	for i := range saved {
		field := fields[i]
		saved[i].Field = &field
	}
	return saved, nil
}
