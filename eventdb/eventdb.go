// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "eventdb")

// EventDB archives network events in sqlite.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("event db opened", "path", path, "sqlite", driverVer)
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

func (db *EventDB) Path() string {
	return db.path
}

// Close close the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Insert stores records of one or more blocks. Records of the same block and index are replaced.
func (db *EventDB) Insert(ctx context.Context, records []*Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO event(blockNumber, eventIndex, name, subnet, data) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx, r.BlockNumber, r.Index, r.Name, uint64(r.Subnet), []byte(r.Data)); err != nil {
			return errors.Wrapf(err, "insert event %v/%v", r.BlockNumber, r.Index)
		}
	}
	return tx.Commit()
}

// Truncate deletes records of blocks after blockNumber.
func (db *EventDB) Truncate(ctx context.Context, blockNumber uint32) error {
	_, err := db.db.ExecContext(ctx, "DELETE FROM event WHERE blockNumber > ?", blockNumber)
	return err
}

// NewestBlock returns the highest archived block number, or zero.
func (db *EventDB) NewestBlock(ctx context.Context) (uint32, error) {
	var n sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(blockNumber) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return uint32(n.Int64), nil
}

// Filter returns records matching filter.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Record, error) {
	if filter == nil {
		return db.query(ctx, "SELECT blockNumber, eventIndex, name, subnet, data FROM event ORDER BY blockNumber ASC, eventIndex ASC")
	}

	var (
		args []any
		sb   strings.Builder
	)
	sb.WriteString("SELECT blockNumber, eventIndex, name, subnet, data FROM event WHERE 1")
	if filter.Range != nil {
		sb.WriteString(" AND blockNumber >= ?")
		args = append(args, filter.Range.From)
		if filter.Range.To >= filter.Range.From {
			sb.WriteString(" AND blockNumber <= ?")
			args = append(args, filter.Range.To)
		}
	}
	if filter.Subnet != nil {
		sb.WriteString(" AND subnet = ?")
		args = append(args, uint64(*filter.Subnet))
	}
	if len(filter.Names) > 0 {
		sb.WriteString(" AND name IN (?" + strings.Repeat(", ?", len(filter.Names)-1) + ")")
		for _, name := range filter.Names {
			args = append(args, name)
		}
	}

	if filter.Order == DESC {
		sb.WriteString(" ORDER BY blockNumber DESC, eventIndex DESC")
	} else {
		sb.WriteString(" ORDER BY blockNumber ASC, eventIndex ASC")
	}

	if filter.Options != nil {
		sb.WriteString(" LIMIT ?, ?")
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, sb.String(), args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Record, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			r      Record
			subnet uint64
			data   []byte
		)
		if err := rows.Scan(&r.BlockNumber, &r.Index, &r.Name, &subnet, &data); err != nil {
			return nil, err
		}
		r.Subnet = tensor.SubnetID(subnet)
		r.Data = data
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
