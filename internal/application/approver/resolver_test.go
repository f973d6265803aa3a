package approver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

type mockDirectory struct {
	users map[string]*entity.User
}

func (m *mockDirectory) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", port.ErrUserNotFound, id)
	}
	return user, nil
}

func strPtr(s string) *string { return &s }

func newTestResolver(users map[string]*entity.User) *Resolver {
	return NewResolver(&mockDirectory{users: users}, zap.NewNop())
}

// worker -> foreman -> manager
func hierarchyUsers() map[string]*entity.User {
	return map[string]*entity.User{
		"worker":  {ID: "worker", Name: "Worker", SupervisorID: strPtr("foreman")},
		"foreman": {ID: "foreman", Name: "Foreman", SupervisorID: strPtr("manager")},
		"manager": {ID: "manager", Name: "Manager"},
	}
}

func TestResolver_Chain(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	chain, err := resolver.Chain(context.Background(), "worker")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "foreman", chain[0].ID)
	assert.Equal(t, "manager", chain[1].ID)

	chain, err = resolver.Chain(context.Background(), "manager")
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestResolver_Chain_UnknownCreator(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	_, err := resolver.Chain(context.Background(), "ghost")
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestResolver_Chain_CircularSupervision(t *testing.T) {
	resolver := newTestResolver(map[string]*entity.User{
		"a": {ID: "a", SupervisorID: strPtr("b")},
		"b": {ID: "b", SupervisorID: strPtr("a")},
	})

	_, err := resolver.Chain(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular")
}

func TestResolver_Resolve(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	approver, err := resolver.Resolve(context.Background(), "worker")
	require.NoError(t, err)
	assert.Equal(t, "foreman", approver.ID)
}

func TestResolver_Resolve_NoSupervisor(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	_, err := resolver.Resolve(context.Background(), "manager")
	assert.True(t, errors.Is(err, workflow.ErrNoApproverAvailable))
}

func TestResolver_IsFinal(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	final, err := resolver.IsFinal(context.Background(), "worker", "manager")
	require.NoError(t, err)
	assert.True(t, final)

	final, err = resolver.IsFinal(context.Background(), "worker", "foreman")
	require.NoError(t, err)
	assert.False(t, final)
}

func TestResolver_Level(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	level, err := resolver.Level(context.Background(), "worker", "foreman")
	require.NoError(t, err)
	assert.Equal(t, 1, level)

	level, err = resolver.Level(context.Background(), "worker", "manager")
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	// Users outside the chain sit at level 0
	level, err = resolver.Level(context.Background(), "worker", "worker")
	require.NoError(t, err)
	assert.Equal(t, 0, level)
}

func TestResolver_NextAfter(t *testing.T) {
	resolver := newTestResolver(hierarchyUsers())

	next, err := resolver.NextAfter(context.Background(), "worker", "foreman")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "manager", next.ID)

	next, err = resolver.NextAfter(context.Background(), "worker", "manager")
	require.NoError(t, err)
	assert.Nil(t, next)
}
