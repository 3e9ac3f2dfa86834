package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"famfin/internal/api"
)

type RemoteMembers interface {
	Create(ctx context.Context, name, role string) (api.Member, error)
	Update(ctx context.Context, id int64, name, role string) (api.Member, error)
	Delete(ctx context.Context, id int64) error
}

type RemoteTransactions interface {
	Create(ctx context.Context, in api.TransactionInput) (api.Transaction, error)
	Update(ctx context.Context, id int64, in api.TransactionInput) (api.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryResolver interface {
	ResolveID(ctx context.Context, name string) (int64, error)
}

type Prober interface {
	CheckAvailability(ctx context.Context) bool
}

// Worker drains the pending queue against the remote API whenever the API is
// reachable. It wakes on a fixed interval and on Notify, which message
// consumers call when a pending op is announced out of band.
type Worker struct {
	queue        *Queue
	members      RemoteMembers
	transactions RemoteTransactions
	categories   CategoryResolver
	prober       Prober
	interval     time.Duration

	wake chan struct{}
}

func NewWorker(queue *Queue, members RemoteMembers, transactions RemoteTransactions, categories CategoryResolver, prober Prober, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		queue:        queue,
		members:      members,
		transactions: transactions,
		categories:   categories,
		prober:       prober,
		interval:     interval,
		wake:         make(chan struct{}, 1),
	}
}

// Notify asks the worker to attempt a drain soon. Safe to call from any
// goroutine; a pending wake is never queued twice.
func (w *Worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-w.wake:
		}
		if err := w.ProcessPending(ctx); err != nil {
			slog.WarnContext(ctx, "Replay pass failed", "error", err)
		}
	}
}

// ProcessPending replays queued ops in order. It stops at the first remote
// failure and leaves the failed op queued for the next pass. Ops that can
// never be replayed, such as a transaction whose member only ever existed
// locally, are dropped with a warning.
func (w *Worker) ProcessPending(ctx context.Context) error {
	ops, err := w.queue.All(ctx)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}
	if !w.prober.CheckAvailability(ctx) {
		return nil
	}

	for _, op := range ops {
		replayable, err := w.replay(ctx, op)
		if notFound(err) {
			// The record never made it to the remote API, typically an
			// update or delete of a row that only ever existed locally.
			replayable = false
			err = nil
		}
		if err != nil {
			return fmt.Errorf("replay op %s: %w", op.ID, err)
		}
		if !replayable {
			slog.WarnContext(ctx, "Dropping op that cannot be replayed",
				"id", op.ID, "entity", op.Entity, "action", op.Action)
		}
		if err := w.queue.Remove(ctx, op.ID); err != nil {
			return err
		}
		if replayable {
			slog.InfoContext(ctx, "Replayed pending op",
				"id", op.ID, "entity", op.Entity, "action", op.Action)
		}
	}
	return nil
}

// replay performs one op remotely. The boolean is false when the op is
// malformed or refers to ids the remote API never issued; such ops are
// skipped rather than retried forever.
func (w *Worker) replay(ctx context.Context, op Op) (bool, error) {
	switch {
	case op.Entity == EntityMember && op.Action == ActionCreate:
		if op.Member == nil {
			return false, nil
		}
		_, err := w.members.Create(ctx, op.Member.Name, op.Member.Role)
		return true, err

	case op.Entity == EntityMember && op.Action == ActionUpdate:
		id, ok := remoteID(op.TargetID)
		if !ok || op.Member == nil {
			return false, nil
		}
		_, err := w.members.Update(ctx, id, op.Member.Name, op.Member.Role)
		return true, err

	case op.Entity == EntityMember && op.Action == ActionDelete:
		id, ok := remoteID(op.TargetID)
		if !ok {
			return false, nil
		}
		return true, w.members.Delete(ctx, id)

	case op.Entity == EntityTransaction && op.Action == ActionCreate:
		in, ok, err := w.transactionInput(ctx, op)
		if err != nil || !ok {
			return ok, err
		}
		_, err = w.transactions.Create(ctx, in)
		return true, err

	case op.Entity == EntityTransaction && op.Action == ActionUpdate:
		id, ok := remoteID(op.TargetID)
		if !ok {
			return false, nil
		}
		in, ok, err := w.transactionInput(ctx, op)
		if err != nil || !ok {
			return ok, err
		}
		_, err = w.transactions.Update(ctx, id, in)
		return true, err

	case op.Entity == EntityTransaction && op.Action == ActionDelete:
		id, ok := remoteID(op.TargetID)
		if !ok {
			return false, nil
		}
		return true, w.transactions.Delete(ctx, id)
	}
	return false, nil
}

func (w *Worker) transactionInput(ctx context.Context, op Op) (api.TransactionInput, bool, error) {
	if op.Transaction == nil {
		return api.TransactionInput{}, false, nil
	}
	t := op.Transaction
	memberID, ok := remoteID(t.MemberID)
	if !ok {
		return api.TransactionInput{}, false, nil
	}
	categoryID, err := w.categories.ResolveID(ctx, t.Category)
	if err != nil {
		return api.TransactionInput{}, true, err
	}
	return api.TransactionInput{
		Amount:          t.Amount,
		Description:     t.Description,
		Date:            t.Date,
		TransactionType: api.WireType(t.Type),
		MemberID:        memberID,
		CategoryID:      categoryID,
	}, true, nil
}

func notFound(err error) bool {
	var se *api.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// remoteID reports whether the id can address a remote record at all. The
// remote API only understands positive integers; ids that refer to rows it
// never issued come back as not found and are dropped above.
func remoteID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
