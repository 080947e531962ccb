package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Switch struct {
	ID        int64
	Device    string
	Press     string
	FromIndex int64
	ToIndex   int64
	PressedAt int64
	GapMs     sql.NullInt64
}

type InsertSwitchParams struct {
	Device    string
	Press     string
	FromIndex int64
	ToIndex   int64
	PressedAt int64
	GapMs     sql.NullInt64
}

const insertSwitch = `
insert into switches (device, press, from_index, to_index, pressed_at, gap_ms)
values (?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertSwitch(ctx context.Context, arg InsertSwitchParams) error {
	_, err := q.db.ExecContext(ctx, insertSwitch,
		arg.Device,
		arg.Press,
		arg.FromIndex,
		arg.ToIndex,
		arg.PressedAt,
		arg.GapMs,
	)
	return err
}

const pruneSwitches = `
delete from switches
where id <= (select id from switches order by id desc limit 1 offset ?)
`

// PruneSwitches keeps the newest keep rows.
func (q *Queries) PruneSwitches(ctx context.Context, keep int64) error {
	_, err := q.db.ExecContext(ctx, pruneSwitches, keep)
	return err
}

const recentSwitches = `
select id, device, press, from_index, to_index, pressed_at, gap_ms
from switches
order by id desc
limit ?
`

func (q *Queries) RecentSwitches(ctx context.Context, limit int64) ([]Switch, error) {
	return q.querySwitches(ctx, recentSwitches, limit)
}

const recentSwitchesForDevice = `
select id, device, press, from_index, to_index, pressed_at, gap_ms
from switches
where device = ?
order by id desc
limit ?
`

func (q *Queries) RecentSwitchesForDevice(ctx context.Context, device string, limit int64) ([]Switch, error) {
	return q.querySwitches(ctx, recentSwitchesForDevice, device, limit)
}

func (q *Queries) querySwitches(ctx context.Context, query string, args ...any) ([]Switch, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Switch
	for rows.Next() {
		var i Switch
		if err := rows.Scan(
			&i.ID,
			&i.Device,
			&i.Press,
			&i.FromIndex,
			&i.ToIndex,
			&i.PressedAt,
			&i.GapMs,
		); err != nil {
			return nil, fmt.Errorf("scan switch: %w", err)
		}
		items = append(items, i)
	}

	return items, rows.Err()
}

const dumpTables = `
select sql from sqlite_master
where type = 'table' and name not like 'sqlite_%'
order by name
`

func (q *Queries) DumpTables(ctx context.Context) ([]*string, error) {
	return q.queryStatements(ctx, dumpTables)
}

const dumpRest = `
select sql from sqlite_master
where type != 'table' and name not like 'sqlite_%'
order by name
`

// DumpRest returns the statements of everything that is not a table:
// indexes, views and triggers.
func (q *Queries) DumpRest(ctx context.Context) ([]*string, error) {
	return q.queryStatements(ctx, dumpRest)
}

func (q *Queries) queryStatements(ctx context.Context, query string) ([]*string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*string
	for rows.Next() {
		var statement sql.NullString
		if err := rows.Scan(&statement); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		if !statement.Valid {
			items = append(items, nil)
			continue
		}
		s := statement.String
		items = append(items, &s)
	}

	return items, rows.Err()
}
