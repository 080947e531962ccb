package sqlite

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var firstPress = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "data", "history.db"), zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func press(device string, n int, p hyprcycle.Press, gap time.Duration) hyprcycle.SwitchRecord {
	return hyprcycle.SwitchRecord{
		Device:    device,
		Press:     p,
		FromIndex: n,
		ToIndex:   n + 1,
		PressedAt: firstPress.Add(time.Duration(n) * time.Second),
		Gap:       gap,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	records := []hyprcycle.SwitchRecord{
		press("laptop", 0, hyprcycle.PressFresh, 0),
		press("external", 1, hyprcycle.PressFresh, 0),
		press("laptop", 2, hyprcycle.PressContinuing, 120*time.Millisecond),
	}
	for _, rec := range records {
		require.NoError(t, store.RecordSwitch(rec))
	}

	all, err := store.Recent("", 10)
	require.NoError(t, err)
	assert.Equal(t, []hyprcycle.SwitchRecord{records[2], records[1], records[0]}, all)

	laptop, err := store.Recent("laptop", 10)
	require.NoError(t, err)
	assert.Equal(t, []hyprcycle.SwitchRecord{records[2], records[0]}, laptop)

	limited, err := store.Recent("", 1)
	require.NoError(t, err)
	assert.Equal(t, []hyprcycle.SwitchRecord{records[2]}, limited)
}

func TestRecordPrunesOldSwitches(t *testing.T) {
	store := newTestStore(t)
	store.retain = 3

	for i := 0; i < 6; i++ {
		require.NoError(t, store.RecordSwitch(press("laptop", i, hyprcycle.PressFresh, 0)))
	}

	all, err := store.Recent("", 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 5, all[0].FromIndex)
	assert.Equal(t, 3, all[2].FromIndex)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, store.RecordSwitch(press("laptop", 0, hyprcycle.PressFresh, 0)))
	require.NoError(t, store.Close())

	// second open must find the schema already migrated
	store, err = NewHistoryStore(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer store.Close()

	all, err := store.Recent("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDumpSchema(t *testing.T) {
	store := newTestStore(t)
	q := New(store.db)

	tables, err := q.DumpTables(context.Background())
	require.NoError(t, err)

	var joined []string
	for _, statement := range tables {
		if statement != nil {
			joined = append(joined, *statement)
		}
	}
	// sqlite upper-cases the leading keywords of stored statements
	schema := strings.ToLower(strings.Join(joined, "\n"))
	assert.Contains(t, schema, "create table switches")
	assert.Contains(t, schema, "from_index")

	rest, err := q.DumpRest(context.Background())
	require.NoError(t, err)

	var indexes []string
	for _, statement := range rest {
		if statement != nil {
			indexes = append(indexes, *statement)
		}
	}
	assert.Contains(t, strings.ToLower(strings.Join(indexes, "\n")), "create index switches_device_id")
}
