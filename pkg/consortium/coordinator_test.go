package consortium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/logging"
)

func staticMembers(members ...string) Membership {
	return MembershipFunc(func(context.Context, string) ([]string, error) {
		return members, nil
	})
}

func TestPropagateInvokesMembersInOrder(t *testing.T) {
	coordinator := NewCoordinator(staticMembers("t1", "t2", "t3"))

	var visited []string
	err := coordinator.Propagate(context.Background(), "central", RecordTypeArchive, OperationDelete,
		func(ctx context.Context, tenant string) error {
			visited = append(visited, tenant)
			assert.Equal(t, tenant, logging.Tenant(ctx), "each replay runs under its member's context")
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, visited)
}

func TestPropagateRejectsUnsupportedOperations(t *testing.T) {
	contacted := false
	coordinator := NewCoordinator(staticMembers("t1"))

	for _, op := range []Operation{OperationCreate, OperationUpdate} {
		err := coordinator.Propagate(context.Background(), "central", RecordTypeArchive, op,
			func(context.Context, string) error {
				contacted = true
				return nil
			})
		require.Error(t, err)
		assert.True(t, errors.IsUnsupportedOperation(err))
	}
	assert.False(t, contacted, "the support matrix is checked before any member is contacted")
}

func TestPropagateStopsWhenContextCanceled(t *testing.T) {
	coordinator := NewCoordinator(staticMembers("t1", "t2", "t3"))

	ctx, cancel := context.WithCancel(context.Background())
	var visited []string
	err := coordinator.Propagate(ctx, "central", RecordTypeAuthority, OperationDelete,
		func(_ context.Context, tenant string) error {
			visited = append(visited, tenant)
			if tenant == "t1" {
				cancel()
			}
			return nil
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCanceled)
	assert.Equal(t, []string{"t1"}, visited, "remaining members are not contacted after cancellation")
}

func TestPropagateAuthoritySupportsAllOperations(t *testing.T) {
	coordinator := NewCoordinator(staticMembers("t1"))

	for _, op := range []Operation{OperationCreate, OperationUpdate, OperationDelete} {
		err := coordinator.Propagate(context.Background(), "central", RecordTypeAuthority, op,
			func(context.Context, string) error { return nil })
		assert.NoError(t, err)
	}
}

func TestPropagateOutsideConsortium(t *testing.T) {
	coordinator := NewCoordinator(staticMembers())

	err := coordinator.Propagate(context.Background(), "solo", RecordTypeAuthority, OperationDelete,
		func(context.Context, string) error {
			t.Fatal("no member should be contacted")
			return nil
		})
	assert.NoError(t, err, "a tenant outside any consortium has nothing to replay")
}

func TestPropagateAggregatesFailures(t *testing.T) {
	coordinator := NewCoordinator(staticMembers("t1", "t2", "t3"))

	err := coordinator.Propagate(context.Background(), "central", RecordTypeAuthority, OperationDelete,
		func(_ context.Context, tenant string) error {
			if tenant == "t2" {
				return errors.New("member unavailable")
			}
			return nil
		})

	require.Error(t, err)
	var propagationErr *errors.PropagationError
	require.ErrorAs(t, err, &propagationErr)
	assert.Equal(t, []string{"t1", "t3"}, propagationErr.Succeeded,
		"one member's failure does not block the rest")
	require.Len(t, propagationErr.Failures, 1)
	assert.Equal(t, "t2", propagationErr.Failures[0].Tenant)
}

func TestPropagateFailFastStopsAtFirstFailure(t *testing.T) {
	coordinator := NewCoordinator(staticMembers("t1", "t2", "t3"))
	coordinator.FailFast = true

	var visited []string
	err := coordinator.Propagate(context.Background(), "central", RecordTypeAuthority, OperationDelete,
		func(_ context.Context, tenant string) error {
			visited = append(visited, tenant)
			if tenant == "t2" {
				return errors.New("member unavailable")
			}
			return nil
		})

	require.Error(t, err)
	assert.Equal(t, []string{"t1", "t2"}, visited, "t3 is never contacted under fail-fast")
}

func TestPropagateMembershipLookupFailure(t *testing.T) {
	coordinator := NewCoordinator(MembershipFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("consortia service down")
	}))

	err := coordinator.Propagate(context.Background(), "central", RecordTypeAuthority, OperationDelete,
		func(context.Context, string) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsIntegration(err))
}
