package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

func TestFromContext_AddsRequestAndUser(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = tenant.WithRequestID(ctx, "req-1")
	ctx = tenant.WithPrincipal(ctx, tenant.Principal{UserID: 7, Username: "agent"})

	FromContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(7), fields["user_id"])
}

func TestFromContext_NilGlobalIsSafe(t *testing.T) {
	saved := Log
	Log = nil
	t.Cleanup(func() { Log = saved })

	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info("dropped")
		FromContextOr(context.Background(), nil).Info("dropped")
	})
}

func TestInitialize(t *testing.T) {
	saved := Log
	t.Cleanup(func() { Log = saved })

	require.NoError(t, Initialize("not-a-level"))
	require.NotNil(t, Log)
	assert.True(t, Log.Core().Enabled(zap.InfoLevel))
	assert.False(t, Log.Core().Enabled(zap.DebugLevel))
}
