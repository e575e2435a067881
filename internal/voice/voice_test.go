package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

func sampleFields() []model.Field {
	return []model.Field{
		{FieldID: "applicant_name", Name: "Applicant Name", Description: "Legal name", FieldType: model.FieldTypeText},
		{FieldID: "years_in_business", Name: "Years In Business", Description: "How long", FieldType: model.FieldTypeNumber},
		{FieldID: "has_employees", Name: "Has Employees", Description: "Any staff", FieldType: model.FieldTypeBoolean},
		{FieldID: "date", Name: "Date", Description: "Today", FieldType: model.FieldTypeDate},
		{FieldID: "business_type", Name: "Business Type", Description: "Entity kind", FieldType: model.FieldTypeText},
	}
}

func TestBuildSchema(t *testing.T) {
	s := BuildSchema(sampleFields())

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"applicant_name", "years_in_business", "has_employees", "date", "business_type"}, s.Required)
	assert.Equal(t, "string", s.Properties["applicant_name"].Type)
	assert.Equal(t, "number", s.Properties["years_in_business"].Type)
	assert.Equal(t, "boolean", s.Properties["has_employees"].Type)
	assert.Equal(t, "string", s.Properties["date"].Type)
	assert.Equal(t, "Legal name", s.Properties["applicant_name"].Description)
	assert.Equal(t, []string{"Corporation", "Individual", "Partnership"}, s.Properties["business_type"].Enum)
	assert.Nil(t, s.Properties["date"].Enum)
}

func TestBuildSchema_Empty(t *testing.T) {
	s := BuildSchema(nil)
	assert.Empty(t, s.Properties)
	assert.Empty(t, s.Required)
}

func TestMissingFieldsText(t *testing.T) {
	text := MissingFieldsText(sampleFields()[:2])
	assert.Equal(t, "- Applicant Name (Legal name)\n- Years In Business (How long)", text)
}

func TestClient_InitiateCall(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"call-123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient(config.VoiceConfig{APIKey: "key", BaseURL: srv.URL, AssistantID: "asst", PhoneNumberID: "pn"})
	resp, err := c.InitiateCall(context.Background(), CallRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+14155552671",
		BusinessName:  "Laundry Genius",
		MissingFields: "- Date (Today)",
		Schema:        BuildSchema(sampleFields()),
	})
	require.NoError(t, err)
	assert.Equal(t, "call-123", resp.CallID)
	assert.Equal(t, StatusQueued, resp.Status)

	assert.Equal(t, "asst", payload["assistantId"])
	assert.Equal(t, "pn", payload["phoneNumberId"])
	customer := payload["customer"].(map[string]any)
	assert.Equal(t, "+14155552671", customer["number"])
	overrides := payload["assistantOverrides"].(map[string]any)
	vars := overrides["variableValues"].(map[string]any)
	assert.Equal(t, "Laundry Genius", vars["businessName"])
	assert.Equal(t, "- Date (Today)", vars["missingFields"])
	plan := overrides["analysisPlan"].(map[string]any)["structuredDataPlan"].(map[string]any)
	assert.Equal(t, true, plan["enabled"])
}

func TestClient_InitiateCall_NotQueued(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "ok but not created", status: http.StatusOK, body: `{"id":"c","status":"queued"}`},
		{name: "created but ended", status: http.StatusCreated, body: `{"id":"c","status":"ended"}`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message":"bad number"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(config.VoiceConfig{APIKey: "key", BaseURL: srv.URL})
			_, err := c.InitiateCall(context.Background(), CallRequest{})
			assert.ErrorIs(t, err, apperrors.ErrExternalService)
		})
	}
}

func TestClient_MissingKey(t *testing.T) {
	_, err := NewClient(config.VoiceConfig{}).InitiateCall(context.Background(), CallRequest{})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}
