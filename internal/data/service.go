package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"famfin/internal/api"
	"famfin/internal/core"
	"famfin/internal/localstore"
	"famfin/internal/replay"
)

// Mode names the storage backend currently serving reads and writes.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// FailurePolicy decides what happens when a remote-mode operation fails.
type FailurePolicy int

const (
	// FallbackToLocal performs the same logical operation against the local
	// store and queues it for later replay against the remote API.
	FallbackToLocal FailurePolicy = iota
	// Propagate returns the remote error to the caller unchanged.
	Propagate
)

// ErrRemoteOnly is returned for operations that have no local counterpart.
var ErrRemoteOnly = errors.New("operation requires the remote API")

// Config wires a Service. Local is required; the remote ports may be nil for
// a local-only deployment, in which case the mode never leaves ModeLocal.
type Config struct {
	Members       RemoteMembers
	Transactions  RemoteTransactions
	CategoryAdmin RemoteCategories
	Categories    CategoryResolver
	Prober        Prober
	Local         *localstore.Store
	Queue         PendingQueue
	Policy        FailurePolicy
}

// Service is the single data access surface for the application. It owns the
// remote/local mode decision and hides the split from callers: every
// operation takes and returns UI shapes regardless of which backend served
// it.
type Service struct {
	members       RemoteMembers
	transactions  RemoteTransactions
	categoryAdmin RemoteCategories
	categories    CategoryResolver
	prober        Prober
	local         *localstore.Store
	queue         PendingQueue
	policy        FailurePolicy

	mu      sync.Mutex
	probing bool
	mode    Mode
}

func New(cfg Config) *Service {
	return &Service{
		members:       cfg.Members,
		transactions:  cfg.Transactions,
		categoryAdmin: cfg.CategoryAdmin,
		categories:    cfg.Categories,
		prober:        cfg.Prober,
		local:         cfg.Local,
		queue:         cfg.Queue,
		policy:        cfg.Policy,
		mode:          ModeLocal,
	}
}

// Initialize probes the remote API and selects the mode. A call that arrives
// while another probe is in flight returns the current mode immediately
// instead of starting a second probe. The chosen mode is written to the local
// store as an advisory flag; it is never read back to skip the probe.
func (s *Service) Initialize(ctx context.Context) Mode {
	s.mu.Lock()
	if s.probing {
		mode := s.mode
		s.mu.Unlock()
		return mode
	}
	s.probing = true
	s.mu.Unlock()

	mode := ModeLocal
	if s.prober != nil && s.prober.CheckAvailability(ctx) {
		mode = ModeRemote
	}

	s.mu.Lock()
	s.mode = mode
	s.probing = false
	s.mu.Unlock()

	if err := s.local.Put(ctx, localstore.KeyStorageMode, []byte(mode)); err != nil {
		slog.WarnContext(ctx, "Could not persist storage mode", "error", err)
	}
	slog.InfoContext(ctx, "Storage mode selected", "mode", mode)
	return mode
}

// Mode returns the mode selected by the last Initialize.
func (s *Service) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Members lists all family members.
func (s *Service) Members(ctx context.Context) ([]core.Member, error) {
	if s.Mode() == ModeLocal {
		return s.local.Members(ctx)
	}
	wire, err := s.members.GetAll(ctx)
	if err != nil {
		if !s.fallback(ctx, "list members", err) {
			return nil, err
		}
		return s.local.Members(ctx)
	}
	out := make([]core.Member, len(wire))
	for i, m := range wire {
		out[i] = memberToCore(m)
	}
	return out, nil
}

// SaveMember validates and creates a member, returning it with its assigned
// id.
func (s *Service) SaveMember(ctx context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	if s.Mode() == ModeLocal {
		return s.local.SaveMember(ctx, m)
	}
	created, err := s.members.Create(ctx, m.Name, m.Role)
	if err == nil {
		return memberToCore(created), nil
	}
	if !s.fallback(ctx, "create member", err) {
		return core.Member{}, err
	}
	saved, err := s.local.SaveMember(ctx, m)
	if err != nil {
		return core.Member{}, err
	}
	s.enqueue(ctx, replay.Op{Entity: replay.EntityMember, Action: replay.ActionCreate, Member: &saved})
	return saved, nil
}

// UpdateMember applies a partial update. Locally an unknown id is a no-op;
// remotely it surfaces as not found and is handled per the failure policy.
func (s *Service) UpdateMember(ctx context.Context, id string, upd core.MemberUpdate) error {
	if s.Mode() == ModeLocal {
		return s.local.UpdateMember(ctx, id, upd)
	}
	err := s.updateMemberRemote(ctx, id, upd)
	if err == nil {
		return nil
	}
	if !s.fallback(ctx, "update member", err) {
		return err
	}
	if err := s.local.UpdateMember(ctx, id, upd); err != nil {
		return err
	}
	if m, ok := s.localMember(ctx, id); ok {
		s.enqueue(ctx, replay.Op{Entity: replay.EntityMember, Action: replay.ActionUpdate, Member: &m, TargetID: id})
	}
	return nil
}

// DeleteMember removes a member. Deleting an id that no longer exists is not
// an error.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if s.Mode() == ModeLocal {
		return s.local.DeleteMember(ctx, id)
	}
	rid, err := parseRemoteID(id)
	if err == nil {
		err = s.members.Delete(ctx, rid)
	}
	if err == nil {
		return nil
	}
	if !s.fallback(ctx, "delete member", err) {
		return err
	}
	if err := s.local.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.enqueue(ctx, replay.Op{Entity: replay.EntityMember, Action: replay.ActionDelete, TargetID: id})
	return nil
}

// Transactions lists all transactions, newest first with id as tiebreak. The
// remote API returns them in that order; local reads are sorted here so both
// modes look the same to callers.
func (s *Service) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if s.Mode() == ModeLocal {
		return s.localTransactions(ctx)
	}
	wire, err := s.transactions.GetAll(ctx)
	if err != nil {
		if !s.fallback(ctx, "list transactions", err) {
			return nil, err
		}
		return s.localTransactions(ctx)
	}
	out := make([]core.Transaction, len(wire))
	for i, t := range wire {
		out[i] = s.txToCore(ctx, t)
	}
	return out, nil
}

func (s *Service) localTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.local.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	core.SortTransactions(txs)
	return txs, nil
}

// SaveTransaction validates and creates a transaction, returning it with its
// assigned id.
func (s *Service) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if s.Mode() == ModeLocal {
		return s.local.SaveTransaction(ctx, t)
	}
	in, err := s.transactionInput(ctx, t)
	if err == nil {
		var created api.Transaction
		created, err = s.transactions.Create(ctx, in)
		if err == nil {
			return s.txToCore(ctx, created), nil
		}
	}
	if !s.fallback(ctx, "create transaction", err) {
		return core.Transaction{}, err
	}
	saved, err := s.local.SaveTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.enqueue(ctx, replay.Op{Entity: replay.EntityTransaction, Action: replay.ActionCreate, Transaction: &saved})
	return saved, nil
}

// UpdateTransaction applies a partial update, reading the current remote
// record first so unsupplied fields keep their values.
func (s *Service) UpdateTransaction(ctx context.Context, id string, upd core.TransactionUpdate) error {
	if s.Mode() == ModeLocal {
		return s.local.UpdateTransaction(ctx, id, upd)
	}
	err := s.updateTransactionRemote(ctx, id, upd)
	if err == nil {
		return nil
	}
	if !s.fallback(ctx, "update transaction", err) {
		return err
	}
	if err := s.local.UpdateTransaction(ctx, id, upd); err != nil {
		return err
	}
	if t, ok := s.localTransaction(ctx, id); ok {
		s.enqueue(ctx, replay.Op{Entity: replay.EntityTransaction, Action: replay.ActionUpdate, Transaction: &t, TargetID: id})
	}
	return nil
}

// DeleteTransaction removes a transaction. Deleting an id that no longer
// exists is not an error.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if s.Mode() == ModeLocal {
		return s.local.DeleteTransaction(ctx, id)
	}
	rid, err := parseRemoteID(id)
	if err == nil {
		err = s.transactions.Delete(ctx, rid)
	}
	if err == nil {
		return nil
	}
	if !s.fallback(ctx, "delete transaction", err) {
		return err
	}
	if err := s.local.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.enqueue(ctx, replay.Op{Entity: replay.EntityTransaction, Action: replay.ActionDelete, TargetID: id})
	return nil
}

// SaveFuelEntry records a refuelling as an expense transaction with derived
// consumption. An empty description gets the default label.
func (s *Service) SaveFuelEntry(ctx context.Context, liters, kilometers, amount float64, date, memberID, description string) (core.Transaction, error) {
	fd, err := core.NewFuelData(liters, kilometers)
	if err != nil {
		return core.Transaction{}, err
	}
	if description == "" {
		description = fmt.Sprintf("Abastecimento - %.2fL", liters)
	}
	return s.SaveTransaction(ctx, core.Transaction{
		Type:        core.Expense,
		Amount:      amount,
		Category:    "Abastecimento",
		Description: description,
		Date:        date,
		MemberID:    memberID,
		FuelData:    &fd,
	})
}

// Categories lists the categories available to the forms. Remote mode serves
// the live remote list; local mode serves the built-in defaults.
func (s *Service) Categories(ctx context.Context) ([]core.Category, error) {
	if s.Mode() == ModeRemote {
		cats, err := s.categories.All(ctx)
		if err == nil {
			out := make([]core.Category, len(cats))
			for i, c := range cats {
				out[i] = core.Category{ID: c.ID, Name: c.Name}
			}
			return out, nil
		}
		if !s.fallback(ctx, "list categories", err) {
			return nil, err
		}
	}
	return defaultCategories(), nil
}

// RenameCategory changes a category's display name. Categories are managed
// by the remote API only.
func (s *Service) RenameCategory(ctx context.Context, id int64, name string) error {
	if s.Mode() != ModeRemote || s.categoryAdmin == nil {
		return ErrRemoteOnly
	}
	_, err := s.categoryAdmin.Update(ctx, id, name)
	return err
}

// DeleteCategory removes a category remotely.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if s.Mode() != ModeRemote || s.categoryAdmin == nil {
		return ErrRemoteOnly
	}
	return s.categoryAdmin.Delete(ctx, id)
}

// MonthSummary totals the transactions of one calendar month.
func (s *Service) MonthSummary(ctx context.Context, year, month int) (core.Summary, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(core.FilterMonth(txs, year, month)), nil
}

// Summary totals all transactions.
func (s *Service) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

func (s *Service) updateMemberRemote(ctx context.Context, id string, upd core.MemberUpdate) error {
	rid, err := parseRemoteID(id)
	if err != nil {
		return err
	}
	wire, err := s.members.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, m := range wire {
		if m.ID == rid {
			cur := memberToCore(m)
			upd.Apply(&cur)
			_, err := s.members.Update(ctx, rid, cur.Name, cur.Role)
			return err
		}
	}
	return &api.StatusError{StatusCode: http.StatusNotFound, Message: "member " + id + " not found"}
}

func (s *Service) updateTransactionRemote(ctx context.Context, id string, upd core.TransactionUpdate) error {
	rid, err := parseRemoteID(id)
	if err != nil {
		return err
	}
	wire, err := s.transactions.GetByID(ctx, rid)
	if err != nil {
		return err
	}
	cur := s.txToCore(ctx, wire)
	upd.Apply(&cur)
	in, err := s.transactionInput(ctx, cur)
	if err != nil {
		return err
	}
	_, err = s.transactions.Update(ctx, rid, in)
	return err
}

// fallback reports whether the failed remote operation should be retried
// locally, logging the degradation when it should.
func (s *Service) fallback(ctx context.Context, op string, err error) bool {
	if s.policy == Propagate {
		return false
	}
	slog.WarnContext(ctx, "Remote operation failed, falling back to local storage", "op", op, "error", err)
	return true
}

// enqueue records a fallen-back write for later replay. Queue failures are
// logged, never surfaced; the local write already succeeded.
func (s *Service) enqueue(ctx context.Context, op replay.Op) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.Enqueue(ctx, op); err != nil {
		slog.WarnContext(ctx, "Could not queue op for replay",
			"entity", op.Entity, "action", op.Action, "error", err)
	}
}

func (s *Service) localMember(ctx context.Context, id string) (core.Member, bool) {
	members, err := s.local.Members(ctx)
	if err != nil {
		return core.Member{}, false
	}
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return core.Member{}, false
}

func (s *Service) localTransaction(ctx context.Context, id string) (core.Transaction, bool) {
	txs, err := s.local.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, false
	}
	for _, t := range txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

func defaultCategories() []core.Category {
	seen := map[string]bool{}
	var out []core.Category
	for _, name := range append(append([]string{}, core.ExpenseCategories...), core.IncomeCategories...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, core.Category{Name: name})
	}
	return out
}
