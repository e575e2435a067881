package usecase

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

func endOfCall(number string, data map[string]interface{}) model.VoiceWebhookPayload {
	var p model.VoiceWebhookPayload
	p.Message.Type = model.EndOfCallReport
	p.Message.Call.ID = "call-123"
	p.Message.Call.Customer.Number = number
	p.Message.Analysis.StructuredData = data
	return p
}

func fileExists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestProcessVoiceWebhook_UpdatesEveryBusiness(t *testing.T) {
	e := newEnv(t)
	doc := e.template(t, field("crime", model.FieldTypeBoolean, false))
	crime := doc.Fields[0]

	second := model.NewBusiness(&model.Business{CustomerID: e.customerA.ID})
	require.NoError(t, e.repo.CreateBusiness(context.Background(), second))

	res := e.svc.ProcessVoiceWebhook(context.Background(), endOfCall("(415) 555-2671", map[string]interface{}{
		"crime":   true,
		"unknown": "ignored",
	}))
	assert.Equal(t, WebhookSuccess, res.Status)
	assert.Equal(t, "Field values updated successfully", res.Message)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)

	call, err := e.repo.FindCallRecordByProviderID(context.Background(), "call-123")
	require.NoError(t, err)
	assert.Equal(t, e.customerA.ID, call.CustomerID)
	assert.Contains(t, string(call.StructuredData), `"crime":true`)

	for _, businessID := range []int64{e.businessA.ID, second.ID} {
		v, ok := valuesByField(t, e, businessID)[crime.ID]
		require.True(t, ok, "business %d", businessID)
		assert.Equal(t, "true", v.Value)
		assert.Equal(t, model.SourcePhone, v.Source)
		require.NotNil(t, v.SourceID)
		assert.Equal(t, call.ID, *v.SourceID)
	}
	assert.Empty(t, valuesByField(t, e, e.businessB.ID))
}

func TestProcessVoiceWebhook_Outcomes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("other event types are acknowledged", func(t *testing.T) {
		p := endOfCall(customerPhone, map[string]interface{}{"crime": true})
		p.Message.Type = "status-update"
		res := e.svc.ProcessVoiceWebhook(ctx, p)
		assert.Equal(t, WebhookResult{Status: WebhookSuccess, Message: "Event processed", HTTPStatus: http.StatusOK}, res)
	})

	t.Run("unknown customer", func(t *testing.T) {
		res := e.svc.ProcessVoiceWebhook(ctx, endOfCall("+442071838750", map[string]interface{}{"crime": true}))
		assert.Equal(t, WebhookError, res.Status)
		assert.Equal(t, "Customer not found", res.Message)
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
	})

	t.Run("unusable number", func(t *testing.T) {
		res := e.svc.ProcessVoiceWebhook(ctx, endOfCall("", nil))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
	})

	t.Run("no structured data", func(t *testing.T) {
		res := e.svc.ProcessVoiceWebhook(ctx, endOfCall(customerPhone, nil))
		assert.Equal(t, WebhookSuccess, res.Status)
		assert.Equal(t, "No structured data found", res.Message)
	})
}

func TestProcessUploadedDocument(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	doc := e.template(t,
		field("policy_number", model.FieldTypeText, false),
		field("proposed_effective_date", model.FieldTypeDate, false),
	)
	number, effective := doc.Fields[0], doc.Fields[1]

	res, err := e.svc.ProcessUploadedDocument(ctx, e.businessA.ID, Upload{
		Name:        "ACORD 125",
		Filename:    "acord 125.pdf",
		ContentType: "application/pdf",
		Body:        bytes.NewReader([]byte("%PDF-1.4 test")),
	})
	require.NoError(t, err)
	assert.Equal(t, "ACORD 125", res.Document.Name)
	assert.True(t, strings.HasPrefix(res.Document.FilePath, "uploaded_documents/business_"))
	require.Len(t, res.Values.Updated, 2)
	assert.NotEmpty(t, res.Values.Skipped)

	values := valuesByField(t, e, e.businessA.ID)
	assert.Equal(t, "BIP-4W906929-24-42", values[number.ID].Value)
	assert.Equal(t, "2024-09-01", values[effective.ID].Value)
	assert.Equal(t, model.SourceDocument, values[effective.ID].Source)
	require.NotNil(t, values[effective.ID].SourceID)
	assert.Equal(t, res.Document.ID, *values[effective.ID].SourceID)
	assert.True(t, fileExists(t, e.fs, res.Document.FilePath))

	extracted, err := e.svc.ListUploadedDocumentFieldValues(ctx, e.businessA.ID, res.Document.ID)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)
}

func TestProcessUploadedDocument_RejectedFileIsRemoved(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)

	_, err := e.svc.ProcessUploadedDocument(ctx, e.businessA.ID, Upload{
		Name:        "Notes",
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("hello"),
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	uploads, err := e.svc.ListUploadedDocuments(ctx, e.businessA.ID)
	require.NoError(t, err)
	assert.Empty(t, uploads)
	assert.False(t, fileExists(t, e.fs, model.UploadPath(e.businessA.ID, "notes.txt")))
}

func TestProcessUploadedDocument_OtherAgency(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.ProcessUploadedDocument(e.as(e.bob), e.businessA.ID, Upload{
		Name:     "ACORD 125",
		Filename: "acord.pdf",
		Body:     bytes.NewReader([]byte("%PDF-1.4")),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, fileExists(t, e.fs, model.UploadPath(e.businessA.ID, "acord.pdf")))
}

func TestProcessDocumentExtracted(t *testing.T) {
	e := newEnv(t)
	doc := e.template(t, field("proposed_effective_date", model.FieldTypeDate, false))

	upload := &model.UploadedBusinessDocument{BusinessID: e.businessA.ID, Name: "scan", FilePath: "uploaded_documents/scan.pdf"}
	require.NoError(t, e.repo.CreateUploadedDocument(context.Background(), upload))

	res, err := e.svc.ProcessDocumentExtracted(context.Background(), model.DocumentExtractedPayload{
		BusinessID:         e.businessA.ID,
		UploadedDocumentID: upload.ID,
		Values:             map[string]interface{}{"proposed_effective_date": "09/01/2024"},
	})
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, "2024-09-01", valuesByField(t, e, e.businessA.ID)[doc.Fields[0].ID].Value)

	_, err = e.svc.ProcessDocumentExtracted(context.Background(), model.DocumentExtractedPayload{
		BusinessID:         e.businessB.ID,
		UploadedDocumentID: upload.ID,
		Values:             map[string]interface{}{"proposed_effective_date": "09/01/2024"},
	})
	assert.True(t, apperrors.IsFatal(err))

	_, err = e.svc.ProcessDocumentExtracted(context.Background(), model.DocumentExtractedPayload{
		BusinessID:         e.businessA.ID,
		UploadedDocumentID: upload.ID + 100,
		Values:             map[string]interface{}{"x": "y"},
	})
	assert.True(t, apperrors.IsFatal(err))
}

func TestProcessCallReport(t *testing.T) {
	e := newEnv(t)
	e.template(t, field("crime", model.FieldTypeBoolean, false))

	var p model.CallReportPayload
	p.Message.Type = model.EndOfCallReport
	p.Message.Call.ID = "call-9"
	p.Message.Call.Customer.Number = customerPhone
	p.Message.Analysis.StructuredData = map[string]interface{}{"crime": false}
	require.NoError(t, e.svc.ProcessCallReport(context.Background(), p))

	p.Message.Call.Customer.Number = "+442071838750"
	assert.True(t, apperrors.IsFatal(e.svc.ProcessCallReport(context.Background(), p)))
}
