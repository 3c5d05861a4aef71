// Package store persists a runtime's global variables in SQLite.
//
// Values are stored in their wire encoding, one row per global. A store
// attached to a runtime follows the global table as it changes; values
// without a wire form are not persisted and any older row for that name is
// dropped so a restore never resurrects a stale value.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/garnet/shared"
	"github.com/chazu/garnet/vm"
	"github.com/chazu/garnet/vm/wire"
)

func logger() commonlog.Logger { return commonlog.GetLogger("garnet.store") }

// ErrNotFound indicates the requested global has no stored row.
var ErrNotFound = errors.New("global not found")

// Entry is a decoded row.
type Entry struct {
	Name  string
	Value vm.Value
}

// Store is a SQLite database of global variables.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the database at path. The special path
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS globals (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	logger().Debugf("opened global store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes v under name, replacing any existing row.
func (s *Store) Save(ctx context.Context, name string, v vm.Value) error {
	data, err := wire.Encode(v)
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO globals (name, data) VALUES (?, ?)",
		vm.GlobalName(name), data,
	); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

// Delete removes the row for name and reports whether one existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM globals WHERE name = ?", vm.GlobalName(name))
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", name, err)
	}
	return n > 0, nil
}

// Load decodes the stored value for name into rt.
func (s *Store) Load(ctx context.Context, rt *vm.Runtime, name string) (vm.Value, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM globals WHERE name = ?", vm.GlobalName(name)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	v, err := wire.Decode(rt, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return v, nil
}

// List returns every stored global, ordered by name, decoded into rt.
func (s *Store) List(ctx context.Context, rt *vm.Runtime) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, data FROM globals ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing globals: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("listing globals: %w", err)
		}
		v, err := wire.Decode(rt, data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		out = append(out, Entry{Name: name, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing globals: %w", err)
	}
	return out, nil
}

// Restore loads every stored global into rt and returns how many were set.
func (s *Store) Restore(ctx context.Context, rt *vm.Runtime) (int, error) {
	entries, err := s.List(ctx, rt)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := rt.SetGlobal(e.Name, e.Value); err != nil {
			return 0, fmt.Errorf("restoring %s: %w", e.Name, err)
		}
	}
	logger().Infof("restored %d globals from %s", len(entries), s.path)
	return len(entries), nil
}

// Attach makes s follow rt's global table: every set is saved and every
// removal deleted. The subscription does not keep s alive; Detach ends it
// early.
func (s *Store) Attach(rt *vm.Runtime) {
	shared.Subscribe(rt.Globals.OnSet, s, func(s *Store, ev shared.EntrySet[string, vm.Value]) {
		s.persist(ev.Key, ev.Value)
	})
	shared.Subscribe(rt.Globals.OnRemove, s, func(s *Store, name string) {
		if _, err := s.Delete(context.Background(), name); err != nil {
			logger().Errorf("%s", err)
		}
	})
}

// Detach stops following rt's global table.
func (s *Store) Detach(rt *vm.Runtime) {
	shared.Unsubscribe(rt.Globals.OnSet, s)
	shared.Unsubscribe(rt.Globals.OnRemove, s)
}

func (s *Store) persist(name string, v vm.Value) {
	ctx := context.Background()
	if !wire.Encodable(v) {
		logger().Debugf("global %s holds %s, not persisted", name, v.Kind())
		if _, err := s.Delete(ctx, name); err != nil {
			logger().Errorf("%s", err)
		}
		return
	}
	if err := s.Save(ctx, name, v); err != nil {
		logger().Errorf("%s", err)
		return
	}
	logger().Debugf("persisted global %s", name)
}
