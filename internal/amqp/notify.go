package amqp

import (
	"context"
	"log/slog"

	"famfin/internal/replay"
)

// NotifyingQueue decorates the pending queue so every enqueued op is also
// announced over AMQP. Publish failures are logged and swallowed; the op is
// already durable in the queue and the worker's ticker will pick it up.
type NotifyingQueue struct {
	Queue  *replay.Queue
	Client *Client
}

func (n *NotifyingQueue) Enqueue(ctx context.Context, op replay.Op) (replay.Op, error) {
	queued, err := n.Queue.Enqueue(ctx, op)
	if err != nil {
		return replay.Op{}, err
	}
	if n.Client != nil {
		if err := n.Client.PublishPendingOp(ctx, queued.ID, string(queued.Entity), string(queued.Action)); err != nil {
			slog.WarnContext(ctx, "Could not announce pending op", "op_id", queued.ID, "error", err)
		}
	}
	return queued, nil
}
