// Package corpus persists named raw text corpora in SQLite so that report
// runs and the HTTP API can reference training text by name. Only the raw
// text is stored; models are always rebuilt in memory from it.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// SetupSchema initializes the corpus table in the provided database. This
// function should be called once on a new database before any other
// operations are performed. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaCorpora = `
CREATE TABLE IF NOT EXISTS corpora (
    corpus_id   INTEGER   PRIMARY KEY,
    corpus_name TEXT      NOT NULL UNIQUE,
    content     TEXT      NOT NULL,
    size_bytes  INTEGER   NOT NULL,
    created_at  TIMESTAMP NOT NULL
);
`

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaCorpora); err != nil {
		return fmt.Errorf("could not create corpora schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Info holds the metadata for a single stored corpus: its row ID, unique
// name, content size in bytes, and creation time.
type Info struct {
	Id        int
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Store is the entry point for the corpus library. It holds the database
// connection and prepared SQL statements for the operations it supports.
type Store struct {
	db          *sql.DB
	stmtInsert  *sql.Stmt
	stmtInfo    *sql.Stmt
	stmtContent *sql.Stmt
	stmtList    *sql.Stmt
	stmtRemove  *sql.Stmt
	logger      *slog.Logger
}

// NewStore creates and returns a new Store over db, pre-compiling all
// necessary SQL statements and returning an error if any preparation fails.
// SetupSchema must have been run on db beforehand.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsert, err := db.Prepare(`INSERT INTO corpora (corpus_name, content, size_bytes, created_at) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtInfo, err := db.Prepare(`SELECT corpus_id, size_bytes, created_at FROM corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtContent, err := db.Prepare(`SELECT content FROM corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtList, err := db.Prepare(`SELECT corpus_id, corpus_name, size_bytes, created_at FROM corpora ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtRemove, err := db.Prepare(`DELETE FROM corpora WHERE corpus_id = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:          db,
		stmtInsert:  stmtInsert,
		stmtInfo:    stmtInfo,
		stmtContent: stmtContent,
		stmtList:    stmtList,
		stmtRemove:  stmtRemove,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It should be
// called when the Store is no longer needed to free up database resources.
func (s *Store) Close() {
	_ = s.stmtInsert.Close()
	_ = s.stmtInfo.Close()
	_ = s.stmtContent.Close()
	_ = s.stmtList.Close()
	_ = s.stmtRemove.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are
// discarded. Providing a `log/slog.Logger` will enable logging for corpus
// additions and removals.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Add reads all of r and stores it as a new corpus under name. The name must
// be unique; adding under an existing name fails with the driver's constraint
// error wrapped.
func (s *Store) Add(ctx context.Context, name string, r io.Reader) (Info, error) {
	if name == "" {
		return Info{}, fmt.Errorf("corpus name must not be empty")
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("could not read corpus content: %w", err)
	}

	createdAt := time.Now().UTC()
	res, err := s.stmtInsert.ExecContext(ctx, name, string(content), int64(len(content)), createdAt)
	if err != nil {
		return Info{}, fmt.Errorf("could not store corpus '%s': %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Info{}, fmt.Errorf("could not read id of stored corpus '%s': %w", name, err)
	}

	info := Info{
		Id:        int(id),
		Name:      name,
		Size:      int64(len(content)),
		CreatedAt: createdAt,
	}

	s.logger.InfoContext(ctx, "Corpus stored",
		slog.String("corpus_name", info.Name),
		slog.Int("corpus_id", info.Id),
		slog.Int64("size_bytes", info.Size),
	)

	return info, nil
}

// Info retrieves the metadata for the corpus stored under name. When no such
// corpus exists, the underlying sql.ErrNoRows passes through for the caller
// to check.
func (s *Store) Info(ctx context.Context, name string) (Info, error) {
	info := Info{Name: name}
	err := s.stmtInfo.QueryRowContext(ctx, name).Scan(&info.Id, &info.Size, &info.CreatedAt)
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// Content returns the raw text of the corpus stored under name. When no such
// corpus exists, the underlying sql.ErrNoRows passes through for the caller
// to check.
func (s *Store) Content(ctx context.Context, name string) (string, error) {
	var content string
	if err := s.stmtContent.QueryRowContext(ctx, name).Scan(&content); err != nil {
		return "", err
	}
	return content, nil
}

// List returns the metadata of every stored corpus, ordered by name.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var infos []Info
	for rows.Next() {
		var info Info
		if err = rows.Scan(&info.Id, &info.Name, &info.Size, &info.CreatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Remove deletes a stored corpus. Removing a corpus that is already gone is
// not an error.
func (s *Store) Remove(ctx context.Context, info Info) error {
	if _, err := s.stmtRemove.ExecContext(ctx, info.Id); err != nil {
		return fmt.Errorf("could not remove corpus '%s': %w", info.Name, err)
	}

	s.logger.InfoContext(ctx, "Corpus removed",
		slog.String("corpus_name", info.Name),
		slog.Int("corpus_id", info.Id),
	)

	return nil
}
