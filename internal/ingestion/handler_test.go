package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

type mockIntakeService struct {
	mock.Mock
}

func (m *mockIntakeService) ProcessCallReport(ctx context.Context, payload model.CallReportPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockIntakeService) ProcessDocumentExtracted(ctx context.Context, payload model.DocumentExtractedPayload) (*usecase.BatchResult, error) {
	args := m.Called(ctx, payload)
	result, _ := args.Get(0).(*usecase.BatchResult)
	return result, args.Error(1)
}

func TestIntakeHandler_CallReport(t *testing.T) {
	ctx := testContext(t)
	svc := new(mockIntakeService)
	h := NewIntakeHandler(svc)

	raw := []byte(`{"message":{"type":"end-of-call-report","call":{"id":"call-9","customer":{"number":"+14155552671"}},"analysis":{"structuredData":{"crime":"none"}}}}`)
	svc.On("ProcessCallReport", mock.MatchedBy(func(ctx context.Context) bool {
		id, err := tenant.FromRequestIDContext(ctx)
		return err == nil && id != ""
	}), mock.MatchedBy(func(p model.CallReportPayload) bool {
		return p.Message.Call.ID == "call-9" &&
			p.Message.Call.Customer.Number == "+14155552671" &&
			p.Message.Analysis.StructuredData["crime"] == "none"
	})).Return(nil)

	err := h.HandleEvent(ctx, model.V1CallReport, &model.MessageMetadata{MessageSubject: string(model.V1CallReport)}, raw)
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestIntakeHandler_DocumentExtracted(t *testing.T) {
	ctx := testContext(t)
	svc := new(mockIntakeService)
	h := NewIntakeHandler(svc)

	raw := []byte(`{"business_id":3,"uploaded_document_id":8,"values":{"business_name":"Acme"}}`)
	svc.On("ProcessDocumentExtracted", mock.Anything, mock.MatchedBy(func(p model.DocumentExtractedPayload) bool {
		return p.BusinessID == 3 && p.UploadedDocumentID == 8 && p.Values["business_name"] == "Acme"
	})).Return(&usecase.BatchResult{Skipped: []string{"unknown"}}, nil)

	err := h.HandleEvent(ctx, model.V1DocumentExtracted, &model.MessageMetadata{}, raw)
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestIntakeHandler_Errors(t *testing.T) {
	ctx := testContext(t)

	t.Run("malformed payload is fatal", func(t *testing.T) {
		svc := new(mockIntakeService)
		err := NewIntakeHandler(svc).HandleEvent(ctx, model.V1DocumentExtracted, &model.MessageMetadata{}, []byte(`{not json`))
		require.Error(t, err)
		assert.True(t, apperrors.IsFatal(err))
		svc.AssertNotCalled(t, "ProcessDocumentExtracted", mock.Anything, mock.Anything)
	})

	t.Run("unknown event is fatal", func(t *testing.T) {
		err := NewIntakeHandler(new(mockIntakeService)).HandleEvent(ctx, "", &model.MessageMetadata{MessageSubject: "v1.nope"}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsFatal(err))
	})

	t.Run("service error is returned unchanged", func(t *testing.T) {
		svc := new(mockIntakeService)
		retry := apperrors.NewRetryable(apperrors.ErrDatabase, "db down")
		svc.On("ProcessCallReport", mock.Anything, mock.Anything).Return(retry)

		err := NewIntakeHandler(svc).HandleEvent(ctx, model.V1CallReport, &model.MessageMetadata{}, []byte(`{}`))
		assert.Same(t, retry, err)
	})
}

func TestIntakeHandler_Register(t *testing.T) {
	router := NewRouter()
	NewIntakeHandler(new(mockIntakeService)).Register(router)

	assert.Contains(t, router.handlers, model.V1CallReport)
	assert.Contains(t, router.handlers, model.V1DocumentExtracted)
	assert.NotNil(t, router.defaultHandler)
}
