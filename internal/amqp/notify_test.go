package amqp

import (
	"context"
	"path/filepath"
	"testing"

	"famfin/internal/core"
	"famfin/internal/localstore"
	"famfin/internal/replay"
)

func TestNotifyingQueueWithoutClient(t *testing.T) {
	store, err := localstore.Open(filepath.Join(t.TempDir(), "famfin.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	queue := replay.NewQueue(store)
	n := &NotifyingQueue{Queue: queue}
	ctx := context.Background()

	queued, err := n.Enqueue(ctx, replay.Op{
		Entity: replay.EntityMember,
		Action: replay.ActionCreate,
		Member: &core.Member{Name: "Ana"},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if queued.ID == "" {
		t.Error("expected assigned id")
	}

	ops, err := queue.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(ops) != 1 || ops[0].ID != queued.ID {
		t.Errorf("op not durable: %+v", ops)
	}
}

func TestPendingOpMessageRoundTrip(t *testing.T) {
	msg := NewPendingOpMessage("1700000000000000000", "member", "create")
	blob, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := PendingOpMessageFromJSON(blob)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.OpID != msg.OpID || got.Entity != "member" || got.Action != "create" {
		t.Errorf("round trip lost fields: %+v", got)
	}

	if _, err := PendingOpMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for malformed message")
	}
}
