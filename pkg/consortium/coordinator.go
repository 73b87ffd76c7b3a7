// Package consortium replays a qualifying single-tenant mutation across
// every member tenant of a consortium, sequentially in member-list order,
// aggregating per-tenant failures.
package consortium

import (
	"context"
	"fmt"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/logging"
)

// RecordType classifies the record a propagation concerns.
type RecordType string

// Propagated record types.
const (
	RecordTypeAuthority RecordType = "authority"
	RecordTypeArchive   RecordType = "archive"
)

// Operation is the mutation being replayed.
type Operation string

// Propagated operations.
const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// supported is the closed record-type/operation support matrix. Archive
// records only ever propagate deletes.
var supported = map[RecordType]map[Operation]bool{
	RecordTypeAuthority: {
		OperationCreate: true,
		OperationUpdate: true,
		OperationDelete: true,
	},
	RecordTypeArchive: {
		OperationDelete: true,
	},
}

// Membership is the read collaborator mapping a tenant to its consortium's
// member tenant list. An empty list means the tenant is not in a consortium.
type Membership interface {
	Members(ctx context.Context, tenant string) ([]string, error)
}

// MembershipFunc adapts a function to the Membership interface.
type MembershipFunc func(ctx context.Context, tenant string) ([]string, error)

// Members implements Membership.
func (f MembershipFunc) Members(ctx context.Context, tenant string) ([]string, error) {
	return f(ctx, tenant)
}

// ReplayFunc executes the mutation for one member tenant. The context is
// already scoped to that tenant.
type ReplayFunc func(ctx context.Context, tenant string) error

// Coordinator fans a mutation out across consortium members.
type Coordinator struct {
	membership Membership

	// FailFast stops the fan-out at the first member failure instead of
	// continuing and aggregating.
	FailFast bool
}

// NewCoordinator creates a Coordinator over the given membership lookup.
func NewCoordinator(membership Membership) *Coordinator {
	return &Coordinator{membership: membership}
}

// Propagate validates the operation against the record type's support
// matrix, resolves the originating tenant's member list, and invokes fn once
// per member, sequentially in list order, each under that member's execution
// context. An unsupported operation fails before contacting any member.
// Member failures are aggregated into a PropagationError; unless FailFast is
// set, one member's failure does not block the rest. A canceled context stops
// the fan-out between members.
func (c *Coordinator) Propagate(ctx context.Context, tenant string, recordType RecordType, op Operation, fn ReplayFunc) error {
	if !supported[recordType][op] {
		return fmt.Errorf("%s records do not support %s propagation: %w",
			recordType, op, errors.ErrUnsupportedOperation)
	}

	members, err := c.membership.Members(ctx, tenant)
	if err != nil {
		return errors.NewIntegrationError("consortia", "", 1, err)
	}
	if len(members) == 0 {
		// Not in a consortium; nothing to replay.
		return nil
	}

	log := logging.Ctx(ctx)
	var succeeded []string
	var failures []errors.TenantFailure
	for _, member := range members {
		if ctx.Err() != nil {
			return fmt.Errorf("propagation of %s %s after %d of %d members: %w",
				op, recordType, len(succeeded)+len(failures), len(members), errors.ErrCanceled)
		}
		memberCtx := logging.WithTenant(ctx, member)
		if err := fn(memberCtx, member); err != nil {
			log.Error().
				Err(err).
				Str("member", member).
				Str("operation", string(op)).
				Msg("Member replay failed")
			failures = append(failures, errors.TenantFailure{Tenant: member, Err: err})
			if c.FailFast {
				break
			}
			continue
		}
		succeeded = append(succeeded, member)
	}

	if len(failures) > 0 {
		return &errors.PropagationError{
			Operation: fmt.Sprintf("%s %s", op, recordType),
			Succeeded: succeeded,
			Failures:  failures,
		}
	}
	return nil
}
