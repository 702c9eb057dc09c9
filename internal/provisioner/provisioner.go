package provisioner

import (
	"context"

	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
)

// Operation is a provider-side long-running operation that has already been
// accepted. Wait blocks until it finishes and returns the terminal outcome.
type Operation interface {
	Wait(ctx context.Context) error
}

// OperationFunc adapts a plain function to the Operation interface.
type OperationFunc func(ctx context.Context) error

func (f OperationFunc) Wait(ctx context.Context) error { return f(ctx) }

// Provisioner is the outbound account-lifecycle port. Create and delete
// return once the provider has accepted the operation; completion is
// observed by waiting on the returned Operation.
type Provisioner interface {
	CreateAccount(ctx context.Context, req domain.AccountRequest) (Operation, error)
	AccountExists(ctx context.Context, accountName string) (bool, error)
	DeleteAccount(ctx context.Context, accountName string) (Operation, error)
}
