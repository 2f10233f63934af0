package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/logger"
)

// DBTX is the part of pgx used by the store. *pgxpool.Pool, *pgx.Conn and
// pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var ErrDocumentNotFound = errors.New("schema document not found")

type Entry struct {
	Name      string
	Version   string
	Checksum  string
	UpdatedAt time.Time
}

// Store keeps named schema documents in a single Postgres table.
type Store struct {
	db     DBTX
	logger *zap.SugaredLogger
}

func New(db DBTX, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, logger: log}
}

func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, constants.DOCUMENT_TABLE_QUERY); err != nil {
		return fmt.Errorf("failed to create document table: %w", err)
	}
	return nil
}

// Checksum identifies the content of a document. exportedAt and version are
// left out so that re-exporting an unchanged model gives the same value.
func Checksum(doc *document.Document) (string, error) {
	content, err := json.Marshal(struct {
		Collections any `json:"collections"`
		Connections any `json:"connections"`
	}{doc.Collections, doc.Connections})
	if err != nil {
		return "", fmt.Errorf("failed to hash schema document: %w", err)
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

// Save upserts the document under name. It reports false without writing
// when the stored checksum already matches.
func (s *Store) Save(ctx context.Context, name string, doc *document.Document) (bool, error) {
	checksum, err := Checksum(doc)
	if err != nil {
		return false, err
	}

	var existing string
	err = s.db.QueryRow(ctx, constants.FETCH_CHECKSUM, name).Scan(&existing)
	switch {
	case err == nil:
		if existing == checksum {
			s.logger.Debugw("schema document unchanged", "name", name, "checksum", checksum)
			return false, nil
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return false, fmt.Errorf("failed to read checksum of %q: %w", name, err)
	}

	data, err := doc.Encode()
	if err != nil {
		return false, err
	}
	if _, err := s.db.Exec(ctx, constants.UPSERT_DOCUMENT, name, doc.Version, checksum, string(data)); err != nil {
		return false, fmt.Errorf("failed to save schema document %q: %w", name, err)
	}

	s.logger.Debugw("schema document saved", "name", name, "checksum", checksum)
	return true, nil
}

func (s *Store) Load(ctx context.Context, name string) (*document.Document, error) {
	var data, checksum string
	if err := s.db.QueryRow(ctx, constants.FETCH_DOCUMENT, name).Scan(&data, &checksum); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, name)
		}
		return nil, fmt.Errorf("failed to load schema document %q: %w", name, err)
	}

	doc, err := document.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("stored schema document %q is invalid: %w", name, err)
	}

	s.logger.Debugw("schema document loaded", "name", name, "checksum", checksum)
	return doc, nil
}

func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx, constants.FETCH_ALL_DOCUMENTS)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema documents: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Name, &entry.Version, &entry.Checksum, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schema document row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schema documents: %w", err)
	}
	return entries, nil
}

func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := s.db.Exec(ctx, constants.DELETE_DOCUMENT, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete schema document %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DropTable removes every stored document.
func (s *Store) DropTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, constants.DROP_DOCUMENT_TABLE); err != nil {
		return fmt.Errorf("failed to drop document table: %w", err)
	}
	return nil
}
