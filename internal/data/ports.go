package data

import (
	"context"

	"famfin/internal/api"
	"famfin/internal/replay"
)

// Remote ports mirror the REST client API groups so tests can stand in fakes.
type (
	RemoteMembers interface {
		GetAll(ctx context.Context) ([]api.Member, error)
		Create(ctx context.Context, name, role string) (api.Member, error)
		Update(ctx context.Context, id int64, name, role string) (api.Member, error)
		Delete(ctx context.Context, id int64) error
	}

	RemoteTransactions interface {
		GetAll(ctx context.Context) ([]api.Transaction, error)
		GetByID(ctx context.Context, id int64) (api.Transaction, error)
		Create(ctx context.Context, in api.TransactionInput) (api.Transaction, error)
		Update(ctx context.Context, id int64, in api.TransactionInput) (api.Transaction, error)
		Delete(ctx context.Context, id int64) error
	}

	RemoteCategories interface {
		Update(ctx context.Context, id int64, name string) (api.Category, error)
		Delete(ctx context.Context, id int64) error
	}

	CategoryResolver interface {
		ResolveID(ctx context.Context, name string) (int64, error)
		ResolveName(ctx context.Context, id int64) string
		All(ctx context.Context) ([]api.Category, error)
	}

	Prober interface {
		CheckAvailability(ctx context.Context) bool
	}

	PendingQueue interface {
		Enqueue(ctx context.Context, op replay.Op) (replay.Op, error)
	}
)
