package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

func TestCallCustomer(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	doc := e.template(t,
		field("applicant_name", model.FieldTypeText, true),
		field("business_type", model.FieldTypeText, true),
		field("notes", model.FieldTypeText, false),
	)
	bd, _, err := e.svc.AssignDocument(ctx, e.businessA.ID, doc.ID)
	require.NoError(t, err)
	_, err = e.svc.SetFieldValue(ctx, e.businessA.ID, "applicant_name", "Acme", model.SourceManual)
	require.NoError(t, err)

	res, err := e.svc.CallCustomer(ctx, bd.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	require.NotNil(t, res.Details)
	assert.Equal(t, customerPhone, res.Details.CustomerPhone)
	assert.Equal(t, "call-123", res.Details.CallID)
	require.Len(t, res.Details.MissingFields, 1)
	assert.Equal(t, "business_type", res.Details.MissingFields[0].FieldID)

	require.Len(t, e.caller.requests, 1)
	req := e.caller.requests[0]
	assert.Equal(t, e.businessA.Name, req.BusinessName)
	assert.Equal(t, []string{"business_type"}, req.Schema.Required)
	assert.NotEmpty(t, req.Schema.Properties["business_type"].Enum)

	call, err := e.repo.FindCallRecordByProviderID(context.Background(), "call-123")
	require.NoError(t, err)
	require.NotNil(t, call.BusinessDocumentID)
	assert.Equal(t, bd.ID, *call.BusinessDocumentID)
}

func TestCallCustomer_Failures(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	doc := e.template(t, field("applicant_name", model.FieldTypeText, true))
	bd, _, err := e.svc.AssignDocument(ctx, e.businessA.ID, doc.ID)
	require.NoError(t, err)

	_, err = e.svc.CallCustomer(e.as(e.bob), bd.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	e.caller.resp, e.caller.err = nil, errors.New("connection reset")
	_, err = e.svc.CallCustomer(ctx, bd.ID)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)

	_, err = e.repo.FindCallRecordByProviderID(context.Background(), "call-123")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
