package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"famfin/internal/core"

	_ "modernc.org/sqlite"
)

// Fixed keys the application persists under. Each collection is one JSON
// array blob rewritten whole on every mutation.
const (
	KeyMembers      = "financialApp_members"
	KeyTransactions = "financialApp_transactions"
	KeyStorageMode  = "financialApp_storageMode"
	KeyPendingSync  = "financialApp_pendingSync"
)

// Store persists JSON blobs in a SQLite key-value table. It is the offline
// fallback behind the data facade: ids and creation timestamps for new
// records are generated here.
type Store struct {
	db *sql.DB

	// mu serializes read-modify-write cycles on the collection blobs and
	// guards id generation.
	mu     sync.Mutex
	lastID int64
}

// Open opens (creating if needed) the store at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the blob stored under key, or nil when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put stores the blob under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Members returns every stored member, empty when nothing was saved yet.
func (s *Store) Members(ctx context.Context) ([]core.Member, error) {
	return readCollection[core.Member](ctx, s, KeyMembers)
}

// SaveMember stores the member with a generated id and creation timestamp.
func (s *Store) SaveMember(ctx context.Context, m core.Member) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := readCollection[core.Member](ctx, s, KeyMembers)
	if err != nil {
		return core.Member{}, err
	}
	m.ID = s.newID()
	m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	members = append(members, m)
	if err := writeCollection(ctx, s, KeyMembers, members); err != nil {
		return core.Member{}, err
	}

	slog.InfoContext(ctx, "Member saved to local store", "id", m.ID, "name", m.Name)
	return m, nil
}

// UpdateMember applies the supplied fields to the member with the given id.
// An unknown id is a silent no-op.
func (s *Store) UpdateMember(ctx context.Context, id string, upd core.MemberUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := readCollection[core.Member](ctx, s, KeyMembers)
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].ID == id {
			upd.Apply(&members[i])
			return writeCollection(ctx, s, KeyMembers, members)
		}
	}
	return nil
}

// DeleteMember removes the member with the given id, silently doing nothing
// when the id is unknown.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := readCollection[core.Member](ctx, s, KeyMembers)
	if err != nil {
		return err
	}
	kept := members[:0]
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return nil
	}
	return writeCollection(ctx, s, KeyMembers, kept)
}

// Transactions returns every stored transaction, empty when nothing was
// saved yet. No ordering is guaranteed here; callers sort.
func (s *Store) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return readCollection[core.Transaction](ctx, s, KeyTransactions)
}

// SaveTransaction stores the transaction with a generated id.
func (s *Store) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = s.newID()
	txs = append(txs, t)
	if err := writeCollection(ctx, s, KeyTransactions, txs); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved to local store",
		"id", t.ID, "type", t.Type, "amount", t.Amount, "category", t.Category)
	return t, nil
}

// UpdateTransaction applies the supplied fields to the transaction with the
// given id. An unknown id is a silent no-op.
func (s *Store) UpdateTransaction(ctx context.Context, id string, upd core.TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return err
	}
	for i := range txs {
		if txs[i].ID == id {
			upd.Apply(&txs[i])
			return writeCollection(ctx, s, KeyTransactions, txs)
		}
	}
	return nil
}

// DeleteTransaction removes the transaction with the given id, silently
// doing nothing when the id is unknown.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return err
	}
	kept := txs[:0]
	for _, t := range txs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(txs) {
		return nil
	}
	return writeCollection(ctx, s, KeyTransactions, kept)
}

// newID returns a millisecond-timestamp id, bumped when two saves land in
// the same millisecond. Callers must hold mu.
func (s *Store) newID() string {
	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return strconv.FormatInt(now, 10)
}

func readCollection[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	blob, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, s *Store, key string, items []T) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, blob)
}
