// Package sqlstore implements the candidate store on top of database/sql.
// Backends (libsql, postgres, mariadb) supply a Dialect and their migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kozaktomas/face-verifier/internal/database"
)

// Dialect captures the differences between SQL engines.
type Dialect struct {
	Name string
	// NumberedPlaceholders selects $1, $2... instead of ?.
	NumberedPlaceholders bool
	// ReturningID selects INSERT ... RETURNING id instead of LastInsertId.
	ReturningID bool
	// MigrationsTableDDL creates the schema_migrations table.
	MigrationsTableDDL string
	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

// Store is a SQL-backed database.CandidateStore.
type Store struct {
	db      *sql.DB
	dialect Dialect

	// writes are serialized so the email check and insert cannot interleave
	writeMu sync.Mutex
}

var _ database.CandidateStore = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.NumberedPlaceholders {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ListCandidates returns every candidate ordered by id.
func (s *Store) ListCandidates(ctx context.Context) ([]database.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, face_encoding FROM candidates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []database.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidateByEmail returns nil when no candidate has the email.
func (s *Store) GetCandidateByEmail(ctx context.Context, email string) (*database.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, name, email, face_encoding FROM candidates WHERE email = ?"), email)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CountCandidates returns the number of stored candidates.
func (s *Store) CountCandidates(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates").Scan(&count); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return count, nil
}

// CreateCandidate inserts a candidate, translating email conflicts to database.ErrDuplicateEmail.
func (s *Store) CreateCandidate(ctx context.Context, name, email string, embedding []float64) (*database.Candidate, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.GetCandidateByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, database.ErrDuplicateEmail
	}

	data := database.EncodeEmbedding(embedding)
	query := "INSERT INTO candidates (name, email, face_encoding) VALUES (?, ?, ?)"

	var id int64
	if s.dialect.ReturningID {
		err = s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), name, email, data).Scan(&id)
	} else {
		var res sql.Result
		res, err = s.db.ExecContext(ctx, s.rebind(query), name, email, data)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert candidate: %w", err)
	}

	return &database.Candidate{ID: id, Name: name, Email: email, Embedding: embedding}, nil
}

// DeleteCandidate removes a candidate by email.
func (s *Store) DeleteCandidate(ctx context.Context, email string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM candidates WHERE email = ?"), email)
	if err != nil {
		return false, fmt.Errorf("delete candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete candidate: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*database.Candidate, error) {
	var c database.Candidate
	var data []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	embedding, err := database.DecodeEmbedding(data)
	if err != nil {
		return nil, fmt.Errorf("candidate %d: %w", c.ID, err)
	}
	c.Embedding = embedding
	return &c, nil
}
