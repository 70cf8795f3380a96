package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	sm := NewServiceManager(nil, newMockRepository(), testLogger(), validator.New(), events.NewMockEventPublisher())

	// Getters panic before Initialize
	assert.Panics(t, func() { sm.Session() })

	require.NoError(t, sm.Initialize(context.Background()))
	// Initialize is idempotent
	require.NoError(t, sm.Initialize(context.Background()))

	assert.NotNil(t, sm.Session())
	assert.NotNil(t, sm.Auth())
	assert.NotNil(t, sm.Test())
	assert.NotNil(t, sm.Like())
	assert.NotNil(t, sm.Grading())
	assert.NotNil(t, sm.User())
	assert.NotNil(t, sm.Category())
	assert.NotNil(t, sm.Export())

	require.NoError(t, sm.HealthCheck(context.Background()))

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.Error(t, sm.HealthCheck(context.Background()))
}
