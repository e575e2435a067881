package usecase

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	repomock "gitlab.com/timkado/api/agency-core/internal/storage/mock"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

type stubIssuer struct{}

func (stubIssuer) Issue(int64, string, bool) (string, time.Time, error) {
	return "token", time.Now().Add(time.Hour), nil
}

func newMockService(t *testing.T) (*Service, *repomock.RepositoryMock) {
	logger.Log = zaptest.NewLogger(t)
	repo := new(repomock.RepositoryMock)
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return NewService(Dependencies{Repo: repo, Tokens: stubIssuer{}}), repo
}

func dbDown() error {
	return fmt.Errorf("%w: connection refused", apperrors.ErrDatabase)
}

func TestProcessDocumentExtracted_ErrorClassification(t *testing.T) {
	payload := model.DocumentExtractedPayload{BusinessID: 3, UploadedDocumentID: 9, Values: map[string]interface{}{"crime": true}}

	t.Run("storage failure is retryable", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).Return(nil, dbDown())

		_, err := svc.ProcessDocumentExtracted(context.Background(), payload)
		assert.True(t, apperrors.IsRetryable(err), "got %v", err)
	})

	t.Run("unknown upload is fatal", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).
			Return(nil, fmt.Errorf("%w: uploaded document 9", apperrors.ErrNotFound))

		_, err := svc.ProcessDocumentExtracted(context.Background(), payload)
		assert.True(t, apperrors.IsFatal(err), "got %v", err)
	})

	t.Run("upload of another business is fatal", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).
			Return(&model.UploadedBusinessDocument{ID: 9, BusinessID: 4}, nil)

		_, err := svc.ProcessDocumentExtracted(context.Background(), payload)
		assert.True(t, apperrors.IsFatal(err), "got %v", err)
	})

	t.Run("invalid payload never reaches storage", func(t *testing.T) {
		svc, _ := newMockService(t)
		_, err := svc.ProcessDocumentExtracted(context.Background(), model.DocumentExtractedPayload{})
		assert.True(t, apperrors.IsFatal(err), "got %v", err)
	})

	t.Run("failed value write is retryable", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).
			Return(&model.UploadedBusinessDocument{ID: 9, BusinessID: 3}, nil)
		repo.On("FindFieldByFieldID", mock.Anything, "crime").Return(crimeField(), nil)
		repo.On("UpsertFieldValue", mock.Anything, mock.Anything).Return(nil, dbDown())

		res, err := svc.ProcessDocumentExtracted(context.Background(), payload)
		assert.Nil(t, res)
		assert.True(t, apperrors.IsRetryable(err), "got %v", err)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})

	t.Run("failed field lookup is retryable", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).
			Return(&model.UploadedBusinessDocument{ID: 9, BusinessID: 3}, nil)
		repo.On("FindFieldByFieldID", mock.Anything, "crime").Return(nil, dbDown())

		_, err := svc.ProcessDocumentExtracted(context.Background(), payload)
		assert.True(t, apperrors.IsRetryable(err), "got %v", err)
	})

	t.Run("rejected values are collected", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.On("FindUploadedDocumentByID", mock.Anything, int64(9)).
			Return(&model.UploadedBusinessDocument{ID: 9, BusinessID: 3}, nil)
		repo.On("FindFieldByFieldID", mock.Anything, "crime").Return(crimeField(), nil)

		res, err := svc.ProcessDocumentExtracted(context.Background(), model.DocumentExtractedPayload{
			BusinessID: 3, UploadedDocumentID: 9, Values: map[string]interface{}{"crime": "maybe"},
		})
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "crime", res.Errors[0].FieldID)
		assert.Empty(t, res.Updated)
		repo.AssertNotCalled(t, "UpsertFieldValue", mock.Anything, mock.Anything)
	})
}

func crimeField() *model.Field {
	return &model.Field{ID: 1, FieldID: "crime", Name: "Crime", FieldType: model.FieldTypeBoolean}
}

func callReport(data map[string]interface{}) model.CallReportPayload {
	var p model.CallReportPayload
	p.Message.Type = model.EndOfCallReport
	p.Message.Call.ID = "call-1"
	p.Message.Call.Customer.Number = "+14155552671"
	p.Message.Analysis.StructuredData = data
	return p
}

func newCallReportMock(t *testing.T) (*Service, *repomock.RepositoryMock) {
	svc, repo := newMockService(t)
	repo.On("FindCustomerByPhone", mock.Anything, "+14155552671").Return(&model.Customer{ID: 1}, nil)
	repo.On("FindCallRecordByProviderID", mock.Anything, "call-1").
		Return(nil, fmt.Errorf("%w: call", apperrors.ErrNotFound))
	repo.On("CreateCallRecord", mock.Anything, mock.Anything).Return(nil)
	repo.On("ListBusinessesByCustomer", mock.Anything, int64(1)).
		Return([]model.Business{{ID: 3}, {ID: 4}}, nil)
	repo.On("FindFieldByFieldID", mock.Anything, "crime").Return(crimeField(), nil)
	return svc, repo
}

func TestProcessCallReport_ValueWrites(t *testing.T) {
	t.Run("failed value write is retryable", func(t *testing.T) {
		svc, repo := newCallReportMock(t)
		repo.On("UpsertFieldValue", mock.Anything, mock.Anything).Return(nil, dbDown())

		res := svc.ProcessVoiceWebhook(context.Background(), callReport(map[string]interface{}{"crime": true}).ToWebhook())
		assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus)
		assert.Equal(t, WebhookError, res.Status)

		err := svc.ProcessCallReport(context.Background(), callReport(map[string]interface{}{"crime": true}))
		assert.True(t, apperrors.IsRetryable(err), "got %v", err)
	})

	t.Run("rejected values are reported per business", func(t *testing.T) {
		svc, repo := newCallReportMock(t)

		res := svc.ProcessVoiceWebhook(context.Background(), callReport(map[string]interface{}{"crime": "maybe"}).ToWebhook())
		assert.Equal(t, http.StatusOK, res.HTTPStatus)
		assert.Equal(t, WebhookSuccess, res.Status)
		require.Len(t, res.Rejected, 2)
		assert.Equal(t, "crime", res.Rejected[0].FieldID)
		repo.AssertNotCalled(t, "UpsertFieldValue", mock.Anything, mock.Anything)

		assert.NoError(t, svc.ProcessCallReport(context.Background(), callReport(map[string]interface{}{"crime": "maybe"})))
	})
}
