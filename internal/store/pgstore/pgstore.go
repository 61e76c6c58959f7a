// Package pgstore implements the frequency store on a PostgreSQL table. Each
// increment is a single upsert, so concurrent writers never lose updates.
// Ties are ordered by phrase, which makes rank and range queries
// deterministic.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/postgres"
)

// Schema creates the phrase_frequencies table and its ordering index.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS phrase_frequencies (
	    phrase TEXT PRIMARY KEY,
	    count  BIGINT NOT NULL CHECK (count > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS phrase_frequencies_rank_idx ON phrase_frequencies (count, phrase)`,
}

const (
	upsertQuery = `INSERT INTO phrase_frequencies (phrase, count) VALUES ($1, $2)
ON CONFLICT (phrase) DO UPDATE SET count = phrase_frequencies.count + EXCLUDED.count`
	getQuery   = `SELECT count FROM phrase_frequencies WHERE phrase = $1`
	rankQuery  = `SELECT COUNT(*) FROM phrase_frequencies WHERE (count, phrase) < ($1, $2)`
	countQuery = `SELECT COUNT(*) FROM phrase_frequencies`
	rangeQuery = `SELECT phrase FROM phrase_frequencies ORDER BY count, phrase OFFSET $1 LIMIT $2`
	cleanQuery = `DELETE FROM phrase_frequencies WHERE count <= 1`
	resetQuery = `DELETE FROM phrase_frequencies`
)

// Options configures a Store.
type Options struct {
	DefaultScore int64
}

// Store is a PostgreSQL-backed frequency store.
type Store struct {
	db   *postgres.Client
	opts Options
}

// New returns a Store over db. Call Migrate once before first use.
func New(db *postgres.Client, opts Options) *Store {
	return &Store{db: db, opts: opts}
}

// Migrate creates the table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.Exec(ctx, Schema...)
}

func (s *Store) Add(ctx context.Context, phrase string, increment int64) error {
	if err := store.ValidateIncrement(increment); err != nil {
		return err
	}
	if _, err := s.db.DB.ExecContext(ctx, upsertQuery, phrase, increment); err != nil {
		return fmt.Errorf("upserting %q: %w", phrase, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, phrase string) (int64, error) {
	count, ok, err := s.lookup(ctx, phrase)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.opts.DefaultScore, nil
	}
	return count, nil
}

func (s *Store) IndexOf(ctx context.Context, phrase string) (int64, error) {
	count, ok, err := s.lookup(ctx, phrase)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}
	var rank int64
	if err := s.db.DB.QueryRowContext(ctx, rankQuery, count, phrase).Scan(&rank); err != nil {
		return 0, fmt.Errorf("ranking %q: %w", phrase, err)
	}
	return rank, nil
}

func (s *Store) Length(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.DB.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting phrases: %w", err)
	}
	return n, nil
}

// Slice needs the table size to resolve negative indices, so it costs two
// queries. The two are not isolated from concurrent writers.
func (s *Store) Slice(ctx context.Context, start, end int64) ([]string, error) {
	n, err := s.Length(ctx)
	if err != nil {
		return nil, err
	}
	lo, hi := store.Bounds(start, end, n)
	if lo == hi {
		return []string{}, nil
	}
	rows, err := s.db.DB.QueryContext(ctx, rangeQuery, lo, hi-lo)
	if err != nil {
		return nil, fmt.Errorf("ranging [%d, %d): %w", lo, hi, err)
	}
	defer rows.Close()

	phrases := make([]string, 0, hi-lo)
	for rows.Next() {
		var phrase string
		if err := rows.Scan(&phrase); err != nil {
			return nil, fmt.Errorf("scanning phrase row: %w", err)
		}
		phrases = append(phrases, phrase)
	}
	return phrases, rows.Err()
}

func (s *Store) Clean(ctx context.Context) (int64, error) {
	res, err := s.db.DB.ExecContext(ctx, cleanQuery)
	if err != nil {
		return 0, fmt.Errorf("removing rare phrases: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading removed count: %w", err)
	}
	return removed, nil
}

func (s *Store) Reset(ctx context.Context) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, resetQuery); err != nil {
			return fmt.Errorf("clearing phrases: %w", err)
		}
		return nil
	})
}

func (s *Store) lookup(ctx context.Context, phrase string) (int64, bool, error) {
	var count int64
	err := s.db.DB.QueryRowContext(ctx, getQuery, phrase).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading count of %q: %w", phrase, err)
	}
	return count, true, nil
}
