package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalRoundTrip(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{UserID: 42, Username: "agent"})

	p, err := PrincipalFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "agent", MustPrincipalFromContext(ctx).Username)
}

func TestPrincipalFromContext_Missing(t *testing.T) {
	_, err := PrincipalFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoPrincipalInContext)

	_, err = PrincipalFromContext(WithPrincipal(context.Background(), Principal{}))
	assert.ErrorIs(t, err, ErrNoPrincipalInContext)

	assert.Panics(t, func() { MustPrincipalFromContext(context.Background()) })
}

func TestRequestID(t *testing.T) {
	_, err := FromRequestIDContext(context.Background())
	assert.ErrorIs(t, err, ErrNoRequestIDInContext)

	id, err := FromRequestIDContext(WithRequestID(context.Background(), "req-1"))
	require.NoError(t, err)
	assert.Equal(t, "req-1", id)
}
