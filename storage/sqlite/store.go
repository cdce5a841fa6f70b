// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/sqlite/migrations"
)

// maxLookupBatch bounds the number of bound parameters per IN clause.
const maxLookupBatch = 500

// MessageRepository implements storage.MessageRepository on SQLite.
type MessageRepository struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository opens (creating if needed) the SQLite database at dbPath
// and applies pending migrations.
//
// Returns storage.MessageRepository interface to enforce abstraction.
func NewMessageRepository(dbPath string) (storage.MessageRepository, error) {
	return openRepository(dbPath)
}

// openRepository is the internal constructor returning the concrete type.
func openRepository(dbPath string) (*MessageRepository, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty database path", storage.ErrInvalidQuery)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for concurrent readers during a search
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &MessageRepository{
		db:     db,
		path:   dbPath,
		logger: slog.Default().With("component", "sqlite-messages"),
	}

	if err := r.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", storage.ErrMigrationFailed, err)
	}

	return r, nil
}

// Close closes the database connection.
func (r *MessageRepository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *MessageRepository) Path() string {
	return r.path
}

// migrate applies all *.up.sql files newer than the recorded schema version.
func (r *MessageRepository) migrate(fsys fs.FS) error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_messages.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		r.logger.Debug("applied migration", "name", name, "version", version)
	}

	return nil
}

// AddMessages validates and stores messages in a single transaction.
// A message is written to the table matching its kind and removed from the other.
// Messages without an ID get one derived from their content.
func (r *MessageRepository) AddMessages(ctx context.Context, messages ...*core.Message) error {
	for _, m := range messages {
		if err := core.ValidateMessage(m); err != nil {
			return err
		}
		if m.ID == "" {
			m.ID = core.MessageIDFromContent(m.Content)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range messages {
		if m.Kind == core.KindDM {
			if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", m.ID); err != nil {
				return fmt.Errorf("replacing message %s: %w", m.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO direct_messages (id, sender_id, receiver_id, user_name, content, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				m.ID, m.SenderID, m.ReceiverID, m.UserName, m.Content, m.CreatedAt.UnixMicro())
		} else {
			if _, err := tx.ExecContext(ctx, "DELETE FROM direct_messages WHERE id = ?", m.ID); err != nil {
				return fmt.Errorf("replacing message %s: %w", m.ID, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO messages (id, kind, channel_id, user_id, user_name, content, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				m.ID, string(m.Kind), m.ChannelID, m.UserID, m.UserName, m.Content, m.CreatedAt.UnixMicro())
		}
		if err != nil {
			return fmt.Errorf("storing message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing messages: %w", err)
	}
	r.logger.Debug("stored messages", "count", len(messages))
	return nil
}

// DeleteMessages removes ids from both tables in a single transaction.
func (r *MessageRepository) DeleteMessages(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = forEachBatch(ids, func(batch []string) error {
		in, args := inClause(batch)
		for _, table := range []string{"messages", "direct_messages"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id IN ("+in+")", args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletes: %w", err)
	}
	r.logger.Debug("deleted messages", "count", len(ids))
	return nil
}

// GetMessages retrieves messages by ID from both tables.
// Results follow the order of ids; missing IDs are skipped.
func (r *MessageRepository) GetMessages(ctx context.Context, ids ...string) ([]*core.Message, error) {
	found := make(map[string]*core.Message, len(ids))

	err := forEachBatch(ids, func(batch []string) error {
		in, args := inClause(batch)

		rows, err := r.db.QueryContext(ctx,
			"SELECT id, kind, channel_id, user_id, user_name, content, created_at FROM messages WHERE id IN ("+in+")",
			args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var m core.Message
			var kind string
			var createdAt int64
			if err := rows.Scan(&m.ID, &kind, &m.ChannelID, &m.UserID, &m.UserName, &m.Content, &createdAt); err != nil {
				rows.Close()
				return err
			}
			m.Kind = core.Kind(kind)
			m.CreatedAt = time.UnixMicro(createdAt).UTC()
			found[m.ID] = &m
		}
		if err := rows.Close(); err != nil {
			return err
		}

		rows, err = r.db.QueryContext(ctx,
			"SELECT id, sender_id, receiver_id, user_name, content, created_at FROM direct_messages WHERE id IN ("+in+")",
			args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			m := core.Message{Kind: core.KindDM}
			var createdAt int64
			if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.UserName, &m.Content, &createdAt); err != nil {
				return err
			}
			m.UserID = m.SenderID
			m.CreatedAt = time.UnixMicro(createdAt).UTC()
			found[m.ID] = &m
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("getting messages: %w", err)
	}

	messages := make([]*core.Message, 0, len(found))
	for _, id := range ids {
		if m, ok := found[id]; ok {
			messages = append(messages, m)
			delete(found, id)
		}
	}
	return messages, nil
}

// FindChannelMessageIDsAmong returns the subset of ids stored as channel or summary messages.
func (r *MessageRepository) FindChannelMessageIDsAmong(ctx context.Context, ids []string) ([]string, error) {
	var result []string

	err := forEachBatch(ids, func(batch []string) error {
		in, args := inClause(batch)
		rows, err := r.db.QueryContext(ctx, "SELECT id FROM messages WHERE id IN ("+in+")", args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			result = append(result, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("finding channel messages: %w", err)
	}
	return result, nil
}

// FindDirectMessageRecordsAmong returns the direct messages among ids that userID sent or received.
func (r *MessageRepository) FindDirectMessageRecordsAmong(ctx context.Context, ids []string, userID string) ([]core.DirectMessageRecord, error) {
	var result []core.DirectMessageRecord
	if userID == "" {
		return result, nil
	}

	err := forEachBatch(ids, func(batch []string) error {
		in, args := inClause(batch)
		args = append(args, userID, userID)
		rows, err := r.db.QueryContext(ctx,
			"SELECT id, sender_id, receiver_id FROM direct_messages WHERE id IN ("+in+") AND (sender_id = ? OR receiver_id = ?)",
			args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec core.DirectMessageRecord
			if err := rows.Scan(&rec.ID, &rec.SenderID, &rec.ReceiverID); err != nil {
				return err
			}
			result = append(result, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("finding direct messages: %w", err)
	}
	return result, nil
}

// CountMessages returns the number of stored messages of every kind.
func (r *MessageRepository) CountMessages(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM messages) + (SELECT COUNT(*) FROM direct_messages)").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}

// ListMessageIDs pages through message IDs of every kind in ascending order.
func (r *MessageRepository) ListMessageIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM (
			SELECT id FROM messages WHERE id > ?
			UNION ALL
			SELECT id FROM direct_messages WHERE id > ?
		) ORDER BY id LIMIT ?`,
		afterID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listing messages: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// forEachBatch calls fn with consecutive slices of ids no longer than maxLookupBatch.
func forEachBatch(ids []string, fn func(batch []string) error) error {
	for start := 0; start < len(ids); start += maxLookupBatch {
		end := min(start+maxLookupBatch, len(ids))
		if err := fn(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// inClause returns "?, ?, ..." for batch and the matching argument list.
func inClause(batch []string) (string, []any) {
	args := make([]any, len(batch))
	for i, id := range batch {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(batch)), ", "), args
}
