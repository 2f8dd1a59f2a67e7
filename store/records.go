package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cvgateway/audit"
)

// Put appends a record. If the partition already holds a record at or after the
// new sort key, the new record is moved to latest+1 so the write stays current.
func (db *DB) Put(ctx context.Context, rec *audit.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	var latest sql.NullInt64
	if err := tx.QueryRowContext(ctx, db.Q(`SELECT MAX(sort_key) FROM vehicle_records WHERE partition_key=?`), rec.PartitionKey).Scan(&latest); err != nil {
		return fmt.Errorf("latest sort key %s: %w", rec.PartitionKey, err)
	}
	if latest.Valid && rec.SortKey <= latest.Int64 {
		rec.SortKey = latest.Int64 + 1
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = tx.ExecContext(ctx, db.Q(`INSERT INTO vehicle_records (partition_key, sort_key, program, subscriber, vin, status, message, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.PartitionKey, rec.SortKey, rec.Program, rec.Subscriber, rec.VIN, rec.Status.String(), rec.Message, string(data))
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.PartitionKey, err)
	}
	return tx.Commit()
}

// QueryLatest returns the newest record in the partition, optionally bounded by
// sort key. It returns nil, nil when nothing matches.
func (db *DB) QueryLatest(ctx context.Context, partitionKey string, within *audit.Range) (*audit.Record, error) {
	query := `SELECT data FROM vehicle_records WHERE partition_key=?`
	args := []any{partitionKey}
	if within != nil {
		query += ` AND sort_key >= ? AND sort_key <= ?`
		args = append(args, within.From, within.To)
	}
	query += ` ORDER BY sort_key DESC LIMIT 1`

	var data []byte
	err := db.QueryRowContext(ctx, db.Q(query), args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest %s: %w", partitionKey, err)
	}
	return decodeRecord(data)
}

// ListRecords returns up to limit records for the partition, newest first.
func (db *DB) ListRecords(ctx context.Context, partitionKey string, limit int) ([]*audit.Record, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT data FROM vehicle_records WHERE partition_key=? ORDER BY sort_key DESC LIMIT ?`), partitionKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []*audit.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// PutSupplement appends a supplement record.
func (db *DB) PutSupplement(ctx context.Context, sup *audit.Supplement) error {
	data := sup.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO vehicle_supplements (partition_key, sort_key, program, subscriber, data) VALUES (?, ?, ?, ?, ?)`),
		sup.PartitionKey, sup.SortKey, sup.Program, sup.Subscriber, string(data))
	if err != nil {
		return fmt.Errorf("insert supplement %s: %w", sup.PartitionKey, err)
	}
	return nil
}

// CountSupplements returns the number of supplement rows for a partition.
func (db *DB) CountSupplements(ctx context.Context, partitionKey string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(*) FROM vehicle_supplements WHERE partition_key=?`), partitionKey).Scan(&n)
	return n, err
}

func decodeRecord(data []byte) (*audit.Record, error) {
	var rec audit.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
