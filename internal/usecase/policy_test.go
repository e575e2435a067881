package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

func strPtr(s string) *string { return &s }

func (e *env) policy(t *testing.T, ctx context.Context) *model.Policy {
	t.Helper()
	p, err := e.svc.CreatePolicy(ctx, PolicyInput{
		BusinessID:     e.businessA.ID,
		PolicyNumber:   "BIP-4W906929-24-42",
		Carrier:        "Fidelity and Guaranty",
		AnnualPremium:  decimal.NewNullDecimal(decimal.RequireFromString("3932.00")),
		EffectiveDate:  strPtr("2024-09-01"),
		ExpirationDate: strPtr("2025-09-01"),
		PolicyType:     model.PolicyGeneralLiability,
	})
	require.NoError(t, err)
	return p
}

func TestCreatePolicy_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)

	_, err := e.svc.CreatePolicy(ctx, PolicyInput{
		BusinessID:     e.businessA.ID,
		PolicyNumber:   "P-1",
		Carrier:        "Carrier",
		EffectiveDate:  strPtr("2025-01-01"),
		ExpirationDate: strPtr("2024-01-01"),
		PolicyType:     "space_travel",
	})
	require.Error(t, err)
	assert.Len(t, apperrors.FieldErrors(err), 2)

	_, err = e.svc.CreatePolicy(e.as(e.bob), PolicyInput{BusinessID: e.businessA.ID, PolicyNumber: "P-2", Carrier: "C", PolicyType: model.PolicyWorkersComp})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPolicyDocuments(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	policy := e.policy(t, ctx)

	doc, err := e.svc.UploadPolicyDocument(ctx, policy.ID, Upload{
		Name:        "Current policy",
		Filename:    "current.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("premium 3,812"),
	})
	require.NoError(t, err)

	got, err := e.svc.GetPolicy(ctx, policy.ID)
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, doc.ID, got.Documents[0].ID)

	other := &model.UploadedBusinessDocument{BusinessID: e.businessB.ID, Name: "foreign", FilePath: "x.pdf"}
	require.NoError(t, e.repo.CreateUploadedDocument(context.Background(), other))
	assert.ErrorIs(t, e.svc.AddPolicyDocument(ctx, policy.ID, other.ID), apperrors.ErrNotFound)

	require.NoError(t, e.svc.RemovePolicyDocument(ctx, policy.ID, doc.ID))
	assert.ErrorIs(t, e.svc.RemovePolicyDocument(ctx, policy.ID, doc.ID), apperrors.ErrNotFound)

	uploads, err := e.svc.ListUploadedDocuments(ctx, e.businessA.ID)
	require.NoError(t, err)
	assert.Len(t, uploads, 1)
}

func TestGenerateRenewalComparison(t *testing.T) {
	e := newEnv(t)
	ctx := e.as(e.alice)
	policy := e.policy(t, ctx)

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := e.svc.GenerateRenewalComparison(ctx, policy.ID, "gemini")
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
	})

	t.Run("no documents never calls the provider", func(t *testing.T) {
		_, err := e.svc.GenerateRenewalComparison(ctx, policy.ID, "anthropic")
		assert.ErrorIs(t, err, apperrors.ErrNoDocuments)
		assert.Zero(t, e.provider.calls)
	})

	_, err := e.svc.UploadPolicyDocument(ctx, policy.ID, Upload{
		Name:        "current policy",
		Filename:    "current.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("premium 3,812"),
	})
	require.NoError(t, err)

	t.Run("unconfigured provider", func(t *testing.T) {
		_, err := e.svc.GenerateRenewalComparison(ctx, policy.ID, "openai")
		assert.ErrorIs(t, err, apperrors.ErrExternalService)
	})

	t.Run("success", func(t *testing.T) {
		res, err := e.svc.GenerateRenewalComparison(ctx, policy.ID, " Anthropic ")
		require.NoError(t, err)
		assert.Equal(t, "success", res.Status)
		assert.Equal(t, "anthropic", res.Provider)
		assert.Equal(t, "Dear client", res.Comparison.Email)
		assert.Equal(t, "Premium rises 4%", res.Comparison.Attachment)
		assert.Equal(t, []string{"current policy"}, res.Documents)
		assert.Equal(t, e.businessA.Name, res.Context.BusinessName)
		assert.Equal(t, e.agencyA.Name, res.Context.AgencyName)
		assert.Contains(t, e.provider.user, "premium 3,812")
		assert.Equal(t, 1, e.provider.calls)
	})

	t.Run("provider failure", func(t *testing.T) {
		e.provider.err = errors.New("rate limited")
		defer func() { e.provider.err = nil }()
		_, err := e.svc.GenerateRenewalComparison(ctx, policy.ID, "anthropic")
		assert.ErrorIs(t, err, apperrors.ErrExternalService)
	})

	t.Run("other agency", func(t *testing.T) {
		_, err := e.svc.GenerateRenewalComparison(e.as(e.bob), policy.ID, "anthropic")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
