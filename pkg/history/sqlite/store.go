package sqlite

import (
	"codeberg.org/miketth/hyprcycle/pkg/history/sqlite/migrations"
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"time"
)

const (
	retainSwitches = 1000
	busyTimeoutMs  = 1000
)

var _ hyprcycle.SwitchRecorder = (*HistoryStore)(nil)

// HistoryStore logs committed switches. Gaps between presses are kept so a
// burst window can be picked from real typing.
type HistoryStore struct {
	db      *sql.DB
	querier *Queries
	retain  int64
}

func NewHistoryStore(filename string, log *zap.SugaredLogger) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d", filename, busyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &HistoryStore{
		db:      db,
		querier: New(db),
		retain:  retainSwitches,
	}, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) RecordSwitch(rec hyprcycle.SwitchRecord) error {
	ctx := context.Background()

	params := InsertSwitchParams{
		Device:    rec.Device,
		Press:     rec.Press.String(),
		FromIndex: int64(rec.FromIndex),
		ToIndex:   int64(rec.ToIndex),
		PressedAt: rec.PressedAt.UnixMilli(),
	}
	if rec.Gap > 0 {
		params.GapMs = sql.NullInt64{Int64: rec.Gap.Milliseconds(), Valid: true}
	}

	if err := s.querier.InsertSwitch(ctx, params); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	if err := s.querier.PruneSwitches(ctx, s.retain); err != nil {
		return fmt.Errorf("sqlite prune: %w", err)
	}

	return nil
}

// Recent returns up to limit switches, newest first. An empty device returns
// switches of all devices.
func (s *HistoryStore) Recent(device string, limit int) ([]hyprcycle.SwitchRecord, error) {
	ctx := context.Background()

	var (
		rows []Switch
		err  error
	)
	if device == "" {
		rows, err = s.querier.RecentSwitches(ctx, int64(limit))
	} else {
		rows, err = s.querier.RecentSwitchesForDevice(ctx, device, int64(limit))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	out := make([]hyprcycle.SwitchRecord, 0, len(rows))
	for _, row := range rows {
		press, err := hyprcycle.ParsePress(row.Press)
		if err != nil {
			return nil, fmt.Errorf("switch %d: %w", row.ID, err)
		}

		rec := hyprcycle.SwitchRecord{
			Device:    row.Device,
			Press:     press,
			FromIndex: int(row.FromIndex),
			ToIndex:   int(row.ToIndex),
			PressedAt: time.UnixMilli(row.PressedAt).UTC(),
		}
		if row.GapMs.Valid {
			rec.Gap = time.Duration(row.GapMs.Int64) * time.Millisecond
		}
		out = append(out, rec)
	}

	return out, nil
}
