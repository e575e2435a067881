package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/storage/storagetest"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

func newRepo(t *testing.T) *storage.PostgresRepo {
	t.Helper()
	logger.Log = zaptest.NewLogger(t)
	repo, err := storage.NewRepoFromDB(context.Background(), storagetest.OpenSQLite(t), true)
	require.NoError(t, err)
	return repo
}

func TestACORD125(t *testing.T) {
	spec, err := ACORD125()
	require.NoError(t, err)

	assert.Equal(t, "ACORD 125 - Commercial Insurance Application", spec.Name)
	assert.Len(t, spec.Fields, 47)

	seen := map[string]bool{}
	for _, f := range spec.Fields {
		assert.False(t, seen[f.ID], "duplicate field %s", f.ID)
		seen[f.ID] = true
		assert.True(t, f.Type.Valid(), "field %s has type %q", f.ID, f.Type)
	}
	assert.True(t, seen["applicant_name"])
	assert.True(t, seen["years_in_business"])
}

func TestParseTemplate_Errors(t *testing.T) {
	_, err := ParseTemplate([]byte("name: [unterminated"))
	assert.Error(t, err)

	_, err = ParseTemplate([]byte("description: nameless"))
	assert.EqualError(t, err, "template name is required")
}

func TestTemplate_Idempotent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	spec, err := ACORD125()
	require.NoError(t, err)

	first, err := Template(ctx, repo, spec)
	require.NoError(t, err)
	assert.True(t, first.DocumentCreate)
	assert.Equal(t, 47, first.FieldsCreated)

	second, err := Template(ctx, repo, spec)
	require.NoError(t, err)
	assert.False(t, second.DocumentCreate)
	assert.Zero(t, second.FieldsCreated)
	assert.Equal(t, 47, second.FieldsSkipped)
	assert.Equal(t, first.Document.ID, second.Document.ID)

	fields, err := repo.ListFieldsByDocument(ctx, first.Document.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 47)
}

func TestTemplate_InvalidField(t *testing.T) {
	repo := newRepo(t)
	spec := &TemplateSpec{
		Name:   "Broken",
		Fields: []FieldSpec{{ID: "x", Name: "X", Type: model.FieldType("currency")}},
	}
	_, err := Template(context.Background(), repo, spec)
	assert.ErrorContains(t, err, `field "x"`)
}

func TestSample(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	res, err := Sample(ctx, repo, SampleOptions{Customers: 3})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, DefaultSampleUsername, res.User.Username)
	assert.Equal(t, 3, res.Customers)
	assert.Equal(t, 3, res.Businesses)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte(DefaultSamplePassword)))

	members, err := repo.ListMemberships(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, res.Agency.ID, members[0].AgencyID)
	assert.True(t, members[0].IsPrimary)

	again, err := Sample(ctx, repo, SampleOptions{Customers: 3})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.User.ID, again.User.ID)
}
