package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/postgres"
)

// SnapshotSchema creates the table SnapshotStore writes to.
const SnapshotSchema = `CREATE TABLE IF NOT EXISTS phrase_snapshots (
    id          BIGSERIAL PRIMARY KEY,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const (
	insertSnapshotQuery = `INSERT INTO phrase_snapshots (data, captured_at) VALUES ($1, $2)`
	latestSnapshotQuery = `SELECT data, captured_at FROM phrase_snapshots ORDER BY captured_at DESC LIMIT 1`
	listSnapshotsQuery  = `SELECT data, captured_at FROM phrase_snapshots ORDER BY captured_at DESC LIMIT $1`
)

// Snapshot is a Stats value captured at a point in time.
type Snapshot struct {
	Stats
	CapturedAt time.Time `json:"captured_at"`
}

// SnapshotStore keeps a history of dictionary stats in PostgreSQL.
type SnapshotStore struct {
	db     *postgres.Client
	now    func() time.Time
	logger *slog.Logger
}

func NewSnapshotStore(db *postgres.Client) *SnapshotStore {
	return &SnapshotStore{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default().With("component", "snapshot-store"),
	}
}

func (s *SnapshotStore) Migrate(ctx context.Context) error {
	return s.db.Exec(ctx, SnapshotSchema)
}

func (s *SnapshotStore) Save(ctx context.Context, stats Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	if _, err := s.db.DB.ExecContext(ctx, insertSnapshotQuery, data, s.now()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	s.logger.Info("snapshot saved", "size", stats.Size, "top", len(stats.Top))
	return nil
}

// Latest returns the newest snapshot, or nil if none was saved yet.
func (s *SnapshotStore) Latest(ctx context.Context) (*Snapshot, error) {
	var (
		data []byte
		at   time.Time
	)
	err := s.db.DB.QueryRowContext(ctx, latestSnapshotQuery).Scan(&data, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	snap := &Snapshot{CapturedAt: at}
	if err := json.Unmarshal(data, &snap.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return snap, nil
}

// List returns up to limit snapshots, newest first. Rows that fail to decode
// are skipped.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.DB.QueryContext(ctx, listSnapshotsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, limit)
	for rows.Next() {
		var (
			data []byte
			snap Snapshot
		)
		if err := rows.Scan(&data, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// StartPeriodicSave snapshots Collect(src, top) every interval until ctx is
// done, then takes one final snapshot.
func (s *SnapshotStore) StartPeriodicSave(ctx context.Context, src Source, top int, interval time.Duration) {
	save := func(ctx context.Context) {
		stats, err := Collect(ctx, src, top)
		if err != nil {
			s.logger.Error("collecting stats for snapshot", "error", err)
			return
		}
		if err := s.Save(ctx, stats); err != nil {
			s.logger.Error("periodic snapshot failed", "error", err)
		}
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				save(ctx)
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				save(shutdownCtx)
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
