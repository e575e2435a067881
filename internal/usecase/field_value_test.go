package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

func valuesByField(t *testing.T, e *env, businessID int64) map[int64]model.FieldValue {
	t.Helper()
	values, err := e.svc.ListBusinessFieldValues(e.as(e.alice), businessID)
	require.NoError(t, err)
	out := make(map[int64]model.FieldValue, len(values))
	for _, v := range values {
		out[v.FieldID] = v
	}
	return out
}

func TestUpsertBatch(t *testing.T) {
	e := newEnv(t)
	doc := e.template(t,
		field("annual_revenue", model.FieldTypeNumber, false),
		field("crime", model.FieldTypeBoolean, false),
		field("effective_date", model.FieldTypeDate, false),
		field("applicant_name", model.FieldTypeText, true),
	)
	revenue, crime := doc.Fields[0], doc.Fields[1]

	res, err := e.svc.UpsertBatch(context.Background(), e.businessA.ID, map[string]interface{}{
		"annual_revenue": 120000,
		"Crime":          true,
		"effective_date": "not a date",
		"applicant_name": nil,
		"unknown_key":    "x",
	}, model.SourcePhone, nil)
	require.NoError(t, err)

	require.Len(t, res.Updated, 2)
	assert.Equal(t, []string{"unknown_key"}, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "effective_date", res.Errors[0].FieldID)

	values := valuesByField(t, e, e.businessA.ID)
	require.Len(t, values, 2)
	assert.Equal(t, "120000", values[revenue.ID].Value)
	assert.Equal(t, "true", values[crime.ID].Value)
	assert.Equal(t, model.SourcePhone, values[crime.ID].Source)

	res, err = e.svc.UpsertBatch(context.Background(), e.businessA.ID, map[string]interface{}{"crime": false}, model.SourceManual, nil)
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)

	values = valuesByField(t, e, e.businessA.ID)
	assert.Len(t, values, 2)
	assert.Equal(t, "false", values[crime.ID].Value)
	assert.Equal(t, model.SourceManual, values[crime.ID].Source)
}

func TestSetFieldValue_InvalidNumberWritesNothing(t *testing.T) {
	e := newEnv(t)
	e.template(t, field("annual_revenue", model.FieldTypeNumber, false))
	ctx := e.as(e.alice)

	_, err := e.svc.SetFieldValue(ctx, e.businessA.ID, "annual_revenue", "abc", model.SourceManual)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, valuesByField(t, e, e.businessA.ID))

	fv, err := e.svc.SetFieldValue(ctx, e.businessA.ID, "Annual Revenue", "2500.50", "")
	require.NoError(t, err)
	assert.Equal(t, "2500.50", fv.Value)
	assert.Equal(t, model.SourceManual, fv.Source)

	_, err = e.svc.SetFieldValue(e.as(e.bob), e.businessA.ID, "annual_revenue", "1", model.SourceManual)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateBusinessDocumentFieldValues(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	doc := e.template(t,
		field("annual_revenue", model.FieldTypeNumber, false),
		field("applicant_name", model.FieldTypeText, true),
	)
	other := e.template(t, field("unrelated", model.FieldTypeText, false))
	bd, _, err := e.svc.AssignDocument(ctx, e.businessA.ID, doc.ID)
	require.NoError(t, err)
	revenue, name := doc.Fields[0], doc.Fields[1]

	t.Run("one invalid value blocks the whole update", func(t *testing.T) {
		_, err := e.svc.UpdateBusinessDocumentFieldValues(ctx, bd.ID, []FieldValueInput{
			{FieldID: name.ID, Value: "Acme Laundry"},
			{FieldID: revenue.ID, Value: "lots"},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Empty(t, valuesByField(t, e, e.businessA.ID))
	})

	t.Run("one invalid source blocks the whole update", func(t *testing.T) {
		_, err := e.svc.UpdateBusinessDocumentFieldValues(ctx, bd.ID, []FieldValueInput{
			{FieldID: name.ID, Value: "Acme Laundry", Source: model.SourceManual},
			{FieldID: revenue.ID, Value: 100, Source: "bogus"},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		fields := apperrors.FieldErrors(err)
		require.Len(t, fields, 1)
		assert.Equal(t, "source", fields[0].Field)
		assert.Empty(t, valuesByField(t, e, e.businessA.ID))
	})

	t.Run("field outside the template", func(t *testing.T) {
		_, err := e.svc.UpdateBusinessDocumentFieldValues(ctx, bd.ID, []FieldValueInput{
			{FieldID: other.Fields[0].ID, Value: "x"},
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("writes valid values", func(t *testing.T) {
		updated, err := e.svc.UpdateBusinessDocumentFieldValues(ctx, bd.ID, []FieldValueInput{
			{FieldID: name.ID, Value: "Acme Laundry"},
			{FieldID: revenue.ID, Value: 9000.5, Source: model.SourceEmail},
			{FieldID: 0, Value: "ignored"},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)

		values := valuesByField(t, e, e.businessA.ID)
		assert.Equal(t, "Acme Laundry", values[name.ID].Value)
		assert.Equal(t, "9000.5", values[revenue.ID].Value)
		assert.Equal(t, model.SourceEmail, values[revenue.ID].Source)
	})

	t.Run("rewrites existing values in place", func(t *testing.T) {
		updated, err := e.svc.UpdateBusinessDocumentFieldValues(ctx, bd.ID, []FieldValueInput{
			{FieldID: revenue.ID, Value: " 12 "},
		})
		require.NoError(t, err)
		require.Len(t, updated, 1)
		require.NotNil(t, updated[0].Field)
		assert.Equal(t, revenue.ID, updated[0].Field.ID)

		values := valuesByField(t, e, e.businessA.ID)
		assert.Len(t, values, 2)
		assert.Equal(t, "12", values[revenue.ID].Value)
		assert.Equal(t, model.SourceManual, values[revenue.ID].Source)
	})
}

func TestMissingFields(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	doc := e.template(t,
		field("applicant_name", model.FieldTypeText, true),
		field("annual_revenue", model.FieldTypeNumber, true),
		field("notes", model.FieldTypeText, false),
	)

	missing, err := e.svc.MissingFields(ctx, e.businessA.ID, doc.ID)
	require.NoError(t, err)
	assert.Len(t, missing, 2)

	_, err = e.svc.SetFieldValue(ctx, e.businessA.ID, "applicant_name", "Acme", model.SourceManual)
	require.NoError(t, err)

	missing, err = e.svc.MissingFields(ctx, e.businessA.ID, doc.ID)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "annual_revenue", missing[0].FieldID)

	_, err = e.svc.MissingFields(e.as(e.bob), e.businessA.ID, doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
